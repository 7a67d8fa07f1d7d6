package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/internal/quizerr"
	"skillpath_quiz/pkg"
)

func statusFor(code quizerr.Code) int {
	switch code {
	case quizerr.CodeInvalidArgument:
		return http.StatusBadRequest
	case quizerr.CodeSessionNotFound:
		return http.StatusNotFound
	case quizerr.CodeSessionFinished:
		return http.StatusConflict
	case quizerr.CodeInvalidChoice:
		return http.StatusUnprocessableEntity
	case quizerr.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto the error envelope.
func respondError(c *gin.Context, err error) {
	code := quizerr.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	env := pkg.ErrorEnvelope{Error: pkg.APIError{Message: err.Error(), Code: string(code)}}

	var reprompt *quiz.RepromptError
	if errors.As(err, &reprompt) {
		p := promptView(reprompt.Prompt)
		env.Prompt = &p
	}
	c.JSON(statusFor(code), env)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, pkg.ErrorEnvelope{
		Error: pkg.APIError{Message: err.Error(), Code: string(quizerr.CodeInvalidArgument)},
	})
}

func promptView(p core.Prompt) pkg.PromptView {
	v := pkg.PromptView{
		Branch:   string(p.Branch),
		SceneID:  p.SceneID,
		Phase:    string(p.Phase),
		Title:    p.Title,
		Text:     p.Text,
		Options:  make([]pkg.OptionView, 0, len(p.Options)),
		Progress: pkg.ProgressView{Current: p.Progress.Current, Total: p.Progress.Total},
	}
	for _, opt := range p.Options {
		v.Options = append(v.Options, pkg.OptionView{ID: opt.ID, Text: opt.Text})
	}
	return v
}

func resultView(r core.Result) pkg.ResultView {
	return pkg.ResultView{
		ID:         r.ID,
		Profile:    r.Profile,
		Score:      r.Score,
		Branch:     string(r.Branch),
		Scores:     r.Scores,
		FinishedAt: r.FinishedAt,
		Details:    r.Details,
	}
}

func replyView(r quiz.Reply) pkg.ReplyView {
	v := pkg.ReplyView{
		Feedback:      r.Feedback,
		EnteredBranch: string(r.EnteredBranch),
		Duplicate:     r.Duplicate,
	}
	if r.Prompt != nil {
		p := promptView(*r.Prompt)
		v.Prompt = &p
	}
	if r.Result != nil {
		res := resultView(*r.Result)
		v.Result = &res
	}
	return v
}
