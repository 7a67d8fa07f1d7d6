package core

import (
	"fmt"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/quizerr"
)

// ResolveBranch picks the branch of the leading profile.
func ResolveBranch(scores Scores, catalog *content.Catalog) (content.BranchKey, string, error) {
	profile, _, ok := scores.Leader()
	if !ok {
		return "", "", quizerr.New(quizerr.CodeContentIntegrity, "basic phase awarded no profile")
	}
	key, ok := catalog.BranchFor(profile)
	if !ok {
		return "", profile, quizerr.New(quizerr.CodeContentIntegrity,
			fmt.Sprintf("profile %q has no branch mapping", profile))
	}
	return key, profile, nil
}
