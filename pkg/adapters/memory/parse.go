package memory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SectionSeparator splits inline evidence text into several databases.
const SectionSeparator = "---"

var (
	atomPattern = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(([^()]*)\)$`)
	predPattern = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)
)

// parseModel extracts predicate declarations (name -> arity) and checks that
// every formula only uses declared predicates.
func parseModel(text string) (map[string]int, int, error) {
	preds := make(map[string]int)
	var formulas []string

	for n, line := range strings.Split(text, "\n") {
		line = stripComment(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "=") && !strings.Contains(line, "=>") {
			continue
		}
		if name, args, ok := splitAtom(line); ok {
			if prev, seen := preds[name]; seen && prev != len(args) {
				return nil, 0, fmt.Errorf("line %d: predicate %s redeclared with arity %d (was %d)", n+1, name, len(args), prev)
			}
			preds[name] = len(args)
			continue
		}
		formulas = append(formulas, line)
	}

	if len(preds) == 0 {
		return nil, 0, fmt.Errorf("model declares no predicates")
	}
	for _, f := range formulas {
		used := predPattern.FindAllStringSubmatch(f, -1)
		if len(used) == 0 {
			return nil, 0, fmt.Errorf("formula %q uses no predicates", f)
		}
		for _, m := range used {
			if _, ok := preds[m[1]]; !ok {
				return nil, 0, fmt.Errorf("formula %q uses undeclared predicate %s", f, m[1])
			}
		}
	}
	return preds, len(formulas), nil
}

// evidence is one parsed database: ground atom -> truth degree.
type evidence map[string]float64

// parseEvidence splits text into SectionSeparator delimited databases.
// Empty sections are dropped. Text without any evidence yields a single
// empty database.
func parseEvidence(text string, preds map[string]int) ([]evidence, error) {
	var dbs []evidence
	current := evidence{}

	flush := func() {
		if len(current) > 0 {
			dbs = append(dbs, current)
		}
		current = evidence{}
	}

	for n, line := range strings.Split(text, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}
		if line == SectionSeparator {
			flush()
			continue
		}
		atom, p, err := parseEvidenceLine(line, preds)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		current[atom] = p
	}
	flush()
	if len(dbs) == 0 {
		dbs = append(dbs, evidence{})
	}
	return dbs, nil
}

func parseEvidenceLine(line string, preds map[string]int) (string, float64, error) {
	p := 1.0
	if fields := strings.Fields(line); len(fields) > 1 {
		if w, err := strconv.ParseFloat(fields[0], 64); err == nil {
			if w < 0 || w > 1 {
				return "", 0, fmt.Errorf("soft evidence %v outside [0,1]", w)
			}
			p = w
			line = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		}
	}
	if strings.HasPrefix(line, "!") {
		p = 1 - p
		line = strings.TrimSpace(line[1:])
	}

	name, args, ok := splitAtom(line)
	if !ok {
		return "", 0, fmt.Errorf("malformed ground atom %q", line)
	}
	if err := checkArity(name, len(args), preds); err != nil {
		return "", 0, err
	}
	return canonicalAtom(name, args), p, nil
}

func checkArity(name string, arity int, preds map[string]int) error {
	want, ok := preds[name]
	if !ok {
		return fmt.Errorf("undeclared predicate %s", name)
	}
	if want != arity {
		return fmt.Errorf("predicate %s takes %d arguments, got %d", name, want, arity)
	}
	return nil
}

func splitAtom(s string) (string, []string, bool) {
	m := atomPattern.FindStringSubmatch(s)
	if m == nil {
		return "", nil, false
	}
	var args []string
	for _, a := range strings.Split(m[2], ",") {
		a = strings.TrimSuffix(strings.TrimSpace(a), "!")
		if a == "" {
			return "", nil, false
		}
		args = append(args, a)
	}
	return m[1], args, true
}

func canonicalAtom(name string, args []string) string {
	return name + "(" + strings.Join(args, ",") + ")"
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
