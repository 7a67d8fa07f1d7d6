package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skillpath_quiz/internal/content"
)

func option(pws ...content.ProfileWeight) content.Option {
	return content.Option{ID: "x", Profiles: pws}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	s := NewScores()
	out := s.Apply(option(content.ProfileWeight{Name: "A", Weight: 2}))

	assert.Empty(t, s.Totals)
	assert.Empty(t, s.Order)
	assert.Equal(t, 2, out.Get("A"))
	assert.Equal(t, []string{"A"}, out.Order)
}

func TestApplyRecordsZeroWeightProfiles(t *testing.T) {
	s := NewScores().Apply(option(
		content.ProfileWeight{Name: "B", Weight: 0},
		content.ProfileWeight{Name: "A", Weight: 1},
	))
	assert.Equal(t, []string{"B", "A"}, s.Order)
	assert.Equal(t, 0, s.Get("B"))
	assert.Equal(t, 0, s.Get("C"))
}

func TestApplyTotalsAreOrderIndependent(t *testing.T) {
	opts := []content.Option{
		option(content.ProfileWeight{Name: "A", Weight: 3}),
		option(content.ProfileWeight{Name: "B", Weight: 1}, content.ProfileWeight{Name: "A", Weight: 1}),
		option(content.ProfileWeight{Name: "C", Weight: 5}),
	}

	forward, backward := NewScores(), NewScores()
	for i := range opts {
		forward = forward.Apply(opts[i])
		backward = backward.Apply(opts[len(opts)-1-i])
	}
	assert.Equal(t, forward.Totals, backward.Totals)
	assert.Equal(t, map[string]int{"A": 4, "B": 1, "C": 5}, forward.Totals)
}

func TestLeader(t *testing.T) {
	_, _, ok := NewScores().Leader()
	assert.False(t, ok)

	s := Scores{Totals: map[string]int{"A": 2, "B": 2, "C": 1}, Order: []string{"B", "A", "C"}}
	profile, score, ok := s.Leader()
	assert.True(t, ok)
	assert.Equal(t, "B", profile, "equal totals go to the first-seen profile")
	assert.Equal(t, 2, score)

	s.Totals["A"] = 3
	profile, _, _ = s.Leader()
	assert.Equal(t, "A", profile)
}

func TestResolveBranchNeedsMapping(t *testing.T) {
	catalog := &content.Catalog{ProfileBranches: map[string]content.BranchKey{"A": "tech"}}

	key, profile, err := ResolveBranch(Scores{Totals: map[string]int{"A": 1}, Order: []string{"A"}}, catalog)
	assert.NoError(t, err)
	assert.Equal(t, content.BranchKey("tech"), key)
	assert.Equal(t, "A", profile)

	_, _, err = ResolveBranch(Scores{Totals: map[string]int{"B": 1}, Order: []string{"B"}}, catalog)
	assert.Error(t, err)

	_, _, err = ResolveBranch(NewScores(), catalog)
	assert.Error(t, err)
}
