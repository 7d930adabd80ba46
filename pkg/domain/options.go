package domain

// Method identifies an inference method by its position in the engine's
// discovered registry. The engine reports the order; it is preserved.
type Method int

// DefaultMethod is selected right after a successful initialization.
// It is the third method the engine reports.
const DefaultMethod Method = 2

// Logic selects the semantics used to interpret formulas.
type Logic int

const (
	LogicFirstOrder Logic = iota
	LogicFuzzy
)

var logicNames = []string{"FirstOrderLogic", "FuzzyLogic"}

func (l Logic) String() string {
	if l < 0 || int(l) >= len(logicNames) {
		return "Logic(?)"
	}
	return logicNames[l]
}

// LogicNames returns the display names of all logics, indexed by tag.
func LogicNames() []string {
	return append([]string(nil), logicNames...)
}

// Grammar selects the textual syntax dialect accepted for model files.
type Grammar int

const (
	GrammarStandard Grammar = iota
	GrammarPRAC
)

var grammarNames = []string{"StandardGrammar", "PRACGrammar"}

func (g Grammar) String() string {
	if g < 0 || int(g) >= len(grammarNames) {
		return "Grammar(?)"
	}
	return grammarNames[g]
}

// GrammarNames returns the display names of all grammars, indexed by tag.
func GrammarNames() []string {
	return append([]string(nil), grammarNames...)
}
