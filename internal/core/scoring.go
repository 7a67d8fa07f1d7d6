package core

import (
	"maps"
	"slices"

	"skillpath_quiz/internal/content"
)

// Scores accumulates per-profile points. Order lists profiles in the order
// they were first awarded and is the tie-break key.
type Scores struct {
	Totals map[string]int
	Order  []string
}

// NewScores returns an empty accumulator.
func NewScores() Scores {
	return Scores{Totals: map[string]int{}}
}

// Clone returns a deep copy of s.
func (s Scores) Clone() Scores {
	out := Scores{Totals: make(map[string]int, len(s.Totals))}
	maps.Copy(out.Totals, s.Totals)
	if s.Order != nil {
		out.Order = slices.Clone(s.Order)
	}
	return out
}

// Apply returns s with every weight of opt added. A profile seen for the
// first time enters Order even when its weight is zero. s is not modified.
func (s Scores) Apply(opt content.Option) Scores {
	out := s.Clone()
	for _, pw := range opt.Profiles {
		if _, seen := out.Totals[pw.Name]; !seen {
			out.Order = append(out.Order, pw.Name)
		}
		out.Totals[pw.Name] += pw.Weight
	}
	return out
}

// Get returns the total of profile, zero when it was never awarded.
func (s Scores) Get(profile string) int {
	return s.Totals[profile]
}

// Empty reports whether no profile has been awarded yet.
func (s Scores) Empty() bool {
	return len(s.Order) == 0
}

// Leader returns the profile with the strictly highest total. Equal totals go
// to the profile that was awarded first.
func (s Scores) Leader() (string, int, bool) {
	best, bestScore, found := "", 0, false
	for _, profile := range s.Order {
		total := s.Totals[profile]
		if !found || total > bestScore {
			best, bestScore, found = profile, total, true
		}
	}
	return best, bestScore, found
}
