package match

import (
	"sort"
)

// Candidate is a name scored against a target.
type Candidate struct {
	Name string

	// NameScore is the normalized Levenshtein similarity (0-1).
	NameScore float64

	// Metadata for debugging/explanation
	NormalizedName   string
	NormalizedTarget string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every name against target and returns them best first.
func Rank(target string, names []string) CandidateList {
	targetNorm := NormalizeIdent(target)

	candidates := make(CandidateList, 0, len(names))
	for _, name := range names {
		nameNorm := NormalizeIdent(name)
		candidates = append(candidates, Candidate{
			Name:             name,
			NameScore:        LevenshteinNormalized(nameNorm, targetNorm),
			NormalizedName:   nameNorm,
			NormalizedTarget: targetNorm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Closest returns at most n names scoring at least minScore against target.
func Closest(target string, names []string, n int, minScore float64) []string {
	ranked := Rank(target, names).AboveThreshold(minScore).Top(n)

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Name
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].NameScore != c[j].NameScore {
		return c[i].NameScore > c[j].NameScore
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].NameScore-c[1].NameScore < threshold
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.NameScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// HighConfidence returns the best candidate if it clears minScore and leads
// the runner-up by at least minGap. Returns nil if no clear winner exists.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.NameScore < minScore {
		return nil
	}

	if c.IsAmbiguous(minGap) {
		return nil
	}

	return best
}
