package core

import (
	"slices"
	"time"

	"skillpath_quiz/internal/content"
)

// Phase is the position of a session in the quiz state machine.
type Phase string

const (
	PhaseBasic    Phase = "basic"
	PhasePersonal Phase = "personal"
	PhaseFinished Phase = "finished"
)

// Valid reports whether p is one of the three known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseBasic, PhasePersonal, PhaseFinished:
		return true
	}
	return false
}

// Step is one accepted answer. Branch is the namespace SceneID lives in,
// since basic and branch files number their scenes independently.
type Step struct {
	Branch   content.BranchKey
	SceneID  int
	OptionID string
}

// Session is one user's traversal state between turns. ChosenBranch is empty
// until the basic phase ends.
type Session struct {
	UserID         string
	Language       string
	Gender         content.Gender
	Phase          Phase
	CurrentSceneID int
	Scores         Scores
	ChosenBranch   content.BranchKey
	History        []Step
	StartedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	out.Scores = s.Scores.Clone()
	out.History = slices.Clone(s.History)
	return out
}

// Namespace returns the content namespace the current scene lives in.
func (s Session) Namespace() content.BranchKey {
	if s.ChosenBranch == "" {
		return content.Basic
	}
	return s.ChosenBranch
}

// Choice is a submitted answer. Branch and SceneID identify the scene the
// answer was shown for; an empty Branch means the basic sequence. A zero
// SceneID means "the current scene" and disables duplicate detection.
type Choice struct {
	Branch   content.BranchKey
	SceneID  int
	OptionID string
}

// shown returns the step c claims to answer.
func (c Choice) shown() Step {
	ns := c.Branch
	if ns == "" {
		ns = content.Basic
	}
	return Step{Branch: ns, SceneID: c.SceneID, OptionID: c.OptionID}
}

// PromptOption is one rendered button.
type PromptOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Prompt is a rendered scene: all text is gender-resolved. Branch and SceneID
// are what a Choice answering it must carry.
type Prompt struct {
	Branch   content.BranchKey `json:"branch"`
	SceneID  int               `json:"scene_id"`
	Phase    Phase             `json:"phase"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Options  []PromptOption    `json:"options"`
	Progress content.Progress  `json:"progress"`
}

// Result is the terminal artifact of a completed quiz.
type Result struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	FinishedAt time.Time         `json:"finished_at"`
	Profile    string            `json:"profile"`
	Score      int               `json:"score"`
	Branch     content.BranchKey `json:"branch"`
	Scores     map[string]int    `json:"scores"`
	Details    map[string]string `json:"details,omitempty"`
}

// Transition is the outcome of one Select call.
type Transition struct {
	// Session is the new state to persist. It equals the input on Duplicate.
	Session Session
	// Feedback is the resolved feedback text of the chosen option.
	Feedback string
	// EnteredBranch is set on the turn that ends the basic phase.
	EnteredBranch content.BranchKey
	// Result is set when the quiz finished on this turn.
	Result *Result
	// Duplicate reports a resubmission of the previous answer; nothing changed.
	Duplicate bool
}
