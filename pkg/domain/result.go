package domain

import "sort"

// Result is the outcome of one inference run.
// Atoms is strictly sorted ascending and Probabilities[i] belongs to Atoms[i].
type Result struct {
	Atoms         []string
	Probabilities []float64
}

// Len returns the number of ground atoms in the result.
func (r Result) Len() int {
	return len(r.Atoms)
}

// Probability looks up the probability of a ground atom.
func (r Result) Probability(atom string) (float64, bool) {
	i := sort.SearchStrings(r.Atoms, atom)
	if i < len(r.Atoms) && r.Atoms[i] == atom {
		return r.Probabilities[i], true
	}
	return 0, false
}
