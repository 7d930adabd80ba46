package process

import (
	"github.com/aretw0/mln/pkg/domain"
)

// Operation names understood by a bridge.
const (
	OpMethods       = "methods"
	OpInstantiate   = "instantiate"
	OpLoadModel     = "load_model"
	OpLoadDatabase  = "load_database"
	OpParseDatabase = "parse_database"
	OpInfer         = "infer"
)

// Request is the JSON document written to the bridge's stdin.
// Only the fields relevant to Op are set.
type Request struct {
	Op       string       `json:"op"`
	Method   string       `json:"method,omitempty"`
	Model    *ModelRef    `json:"model,omitempty"`
	Database *DatabaseRef `json:"database,omitempty"`
	Path     string       `json:"path,omitempty"`
	Text     *string      `json:"text,omitempty"`
	Settings *Settings    `json:"settings,omitempty"`
}

// ModelRef carries everything a stateless bridge needs to rebuild a model.
type ModelRef struct {
	Text    string `json:"text"`
	Logic   string `json:"logic"`
	Grammar string `json:"grammar"`
}

// DatabaseRef points at one database of a file or of inline evidence.
type DatabaseRef struct {
	Source string `json:"source"`
	IsFile bool   `json:"is_file"`
	Index  int    `json:"index"`
}

// Settings are the inference parameters in the engine's vocabulary.
// Lists are always present, unset numbers are omitted and flags are always sent.
type Settings struct {
	ClosedWorldPredicates []string `json:"cw_preds"`
	Queries               []string `json:"queries"`
	MaxSteps              *int     `json:"maxsteps,omitempty"`
	Chains                *int     `json:"chains,omitempty"`
	MultiCore             bool     `json:"multicore"`
	Verbose               bool     `json:"verbose"`
	MergeDatabases        bool     `json:"mergeDBs"`
}

// NewSettings converts session settings into their wire form.
func NewSettings(s domain.Settings) *Settings {
	out := &Settings{
		ClosedWorldPredicates: append([]string{}, s.ClosedWorldPredicates...),
		Queries:               append([]string{}, s.Queries...),
		MultiCore:             s.UseMultiCore,
		Verbose:               s.Verbose,
		MergeDatabases:        s.MergeDatabases,
	}
	if s.MaxSteps != nil {
		v := *s.MaxSteps
		out.MaxSteps = &v
	}
	if s.NumChains != nil {
		v := *s.NumChains
		out.Chains = &v
	}
	return out
}

// Domain converts wire settings back into session settings.
func (s *Settings) Domain() domain.Settings {
	out := domain.DefaultSettings()
	if s == nil {
		return out
	}
	out.ClosedWorldPredicates = append(out.ClosedWorldPredicates, s.ClosedWorldPredicates...)
	out.Queries = append(out.Queries, s.Queries...)
	out.MaxSteps = s.MaxSteps
	out.NumChains = s.Chains
	out.UseMultiCore = s.MultiCore
	out.Verbose = s.Verbose
	out.MergeDatabases = s.MergeDatabases
	return out
}

// Reply is the JSON document a bridge prints to stdout. A non-empty Error
// fails the call; the remaining fields depend on the operation.
type Reply struct {
	Error       string             `json:"error,omitempty" mapstructure:"error"`
	Methods     []string           `json:"methods,omitempty" mapstructure:"methods"`
	Fingerprint string             `json:"fingerprint,omitempty" mapstructure:"fingerprint"`
	Databases   int                `json:"databases,omitempty" mapstructure:"databases"`
	Results     map[string]float64 `json:"results,omitempty" mapstructure:"results"`
}
