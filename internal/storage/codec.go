package storage

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
)

const recordVersion = 2

type sessionRecord struct {
	Version        int            `json:"version"`
	UserID         string         `json:"user_id"`
	Language       string         `json:"language"`
	Gender         string         `json:"gender"`
	Phase          string         `json:"phase"`
	CurrentSceneID int            `json:"current_scene_id"`
	ScoreByProfile map[string]int `json:"score_by_profile"`
	ProfileOrder   []string       `json:"profile_order"`
	ChosenBranch   string         `json:"chosen_branch,omitempty"`
	History        []stepRecord   `json:"history,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type stepRecord struct {
	Branch   string `json:"branch"`
	SceneID  int    `json:"scene_id"`
	OptionID string `json:"option_id"`
}

// EncodeSession serializes a session into its versioned JSON record.
func EncodeSession(s core.Session) ([]byte, error) {
	rec := sessionRecord{
		Version:        recordVersion,
		UserID:         s.UserID,
		Language:       s.Language,
		Gender:         string(s.Gender),
		Phase:          string(s.Phase),
		CurrentSceneID: s.CurrentSceneID,
		ScoreByProfile: s.Scores.Totals,
		ProfileOrder:   s.Scores.Order,
		ChosenBranch:   string(s.ChosenBranch),
		StartedAt:      s.StartedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
	}
	if rec.ScoreByProfile == nil {
		rec.ScoreByProfile = map[string]int{}
	}
	for _, step := range s.History {
		rec.History = append(rec.History, stepRecord{Branch: string(step.Branch), SceneID: step.SceneID, OptionID: step.OptionID})
	}

	data, err := sonic.ConfigStd.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.UserID, err)
	}
	return data, nil
}

// DecodeSession parses and validates a record written by EncodeSession.
func DecodeSession(data []byte) (core.Session, error) {
	var rec sessionRecord
	if err := sonic.ConfigStd.Unmarshal(data, &rec); err != nil {
		return core.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if rec.Version != recordVersion {
		return core.Session{}, fmt.Errorf("decode session: unsupported record version %d", rec.Version)
	}
	if rec.UserID == "" {
		return core.Session{}, fmt.Errorf("decode session: user_id is empty")
	}

	s := core.Session{
		UserID:         rec.UserID,
		Language:       rec.Language,
		Gender:         content.Gender(rec.Gender),
		Phase:          core.Phase(rec.Phase),
		CurrentSceneID: rec.CurrentSceneID,
		Scores:         core.Scores{Totals: rec.ScoreByProfile, Order: rec.ProfileOrder},
		ChosenBranch:   content.BranchKey(rec.ChosenBranch),
		StartedAt:      rec.StartedAt.UTC(),
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}
	if s.Scores.Totals == nil {
		s.Scores.Totals = map[string]int{}
	}
	if len(s.Scores.Order) == 0 {
		s.Scores.Order = nil
	}
	for _, step := range rec.History {
		s.History = append(s.History, core.Step{Branch: content.BranchKey(step.Branch), SceneID: step.SceneID, OptionID: step.OptionID})
	}

	if err := checkSession(s); err != nil {
		return core.Session{}, fmt.Errorf("decode session %s: %w", s.UserID, err)
	}
	return s, nil
}

func checkSession(s core.Session) error {
	if !s.Phase.Valid() {
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	if !s.Gender.Valid() {
		return fmt.Errorf("unknown gender %q", s.Gender)
	}
	if (s.Phase == core.PhaseBasic) != (s.ChosenBranch == "") {
		return fmt.Errorf("phase %s inconsistent with chosen_branch %q", s.Phase, s.ChosenBranch)
	}
	if len(s.Scores.Order) != len(s.Scores.Totals) {
		return fmt.Errorf("profile_order lists %d profiles, score_by_profile has %d", len(s.Scores.Order), len(s.Scores.Totals))
	}
	seen := make(map[string]bool, len(s.Scores.Order))
	for _, p := range s.Scores.Order {
		if _, ok := s.Scores.Totals[p]; !ok || seen[p] {
			return fmt.Errorf("profile_order entry %q does not match score_by_profile", p)
		}
		seen[p] = true
	}
	for i, step := range s.History {
		if step.Branch == "" {
			return fmt.Errorf("history step %d has no branch", i+1)
		}
	}
	return nil
}
