package pkg

import (
	"time"
)

// Chat transport request and response bodies

// StartRequest begins a quiz. Language falls back to the default content
// language when empty or unknown.
type StartRequest struct {
	Language string `json:"language"`
	Gender   string `json:"gender" binding:"required"`
}

// ChoiceRequest submits an answer. Branch and SceneID echo the prompt the
// user answered; a zero SceneID disables duplicate detection.
type ChoiceRequest struct {
	Branch   string `json:"branch"`
	SceneID  int    `json:"scene_id"`
	OptionID string `json:"option_id" binding:"required"`
}

// OptionView is one button of the rendered scene
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ProgressView is the "current / total" indicator
type ProgressView struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// PromptView is a rendered scene
type PromptView struct {
	Branch   string       `json:"branch"`
	SceneID  int          `json:"scene_id"`
	Phase    string       `json:"phase"`
	Title    string       `json:"title"`
	Text     string       `json:"text"`
	Options  []OptionView `json:"options"`
	Progress ProgressView `json:"progress"`
}

// ResultView is a finished quiz
type ResultView struct {
	ID         string            `json:"id"`
	Profile    string            `json:"profile"`
	Score      int               `json:"score"`
	Branch     string            `json:"branch"`
	Scores     map[string]int    `json:"score_breakdown"`
	FinishedAt time.Time         `json:"finished_at"`
	Details    map[string]string `json:"details,omitempty"`
}

// ReplyView answers a submitted choice
type ReplyView struct {
	Feedback      string      `json:"feedback,omitempty"`
	Prompt        *PromptView `json:"prompt,omitempty"`
	Result        *ResultView `json:"result,omitempty"`
	EnteredBranch string      `json:"entered_branch,omitempty"`
	Duplicate     bool        `json:"duplicate,omitempty"`
}

// ResultsView lists finished quizzes, newest first
type ResultsView struct {
	UserID  string       `json:"user_id"`
	Results []ResultView `json:"results"`
}

// APIError is the error body of every failed request
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError. Prompt is set when the user should be asked
// the same scene again.
type ErrorEnvelope struct {
	Error  APIError    `json:"error"`
	Prompt *PromptView `json:"prompt,omitempty"`
}
