package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/pkg"
)

const maxResults = 100

// QuizHandler exposes the quiz service as a JSON chat transport.
type QuizHandler struct {
	svc *quiz.Service
}

// NewQuizHandler wraps svc.
func NewQuizHandler(svc *quiz.Service) *QuizHandler {
	return &QuizHandler{svc: svc}
}

// POST /v1/quiz/:user_id/start
func (h *QuizHandler) Start(c *gin.Context) {
	var req pkg.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	gender, err := content.ParseGender(req.Gender)
	if err != nil {
		respondError(c, err)
		return
	}

	prompt, err := h.svc.StartQuiz(c.Request.Context(), c.Param("user_id"), req.Language, gender)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promptView(prompt))
}

// POST /v1/quiz/:user_id/choice
func (h *QuizHandler) Choose(c *gin.Context) {
	var req pkg.ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	reply, err := h.svc.SubmitChoice(c.Request.Context(), c.Param("user_id"),
		core.Choice{Branch: content.BranchKey(req.Branch), SceneID: req.SceneID, OptionID: req.OptionID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replyView(reply))
}

// GET /v1/quiz/:user_id
func (h *QuizHandler) Current(c *gin.Context) {
	prompt, err := h.svc.CurrentPrompt(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptView(prompt))
}

// DELETE /v1/quiz/:user_id
func (h *QuizHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/quiz/:user_id/results?limit=
func (h *QuizHandler) Results(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxResults {
			respondBadRequest(c, errLimit)
			return
		}
		limit = n
	}

	userID := c.Param("user_id")
	results, err := h.svc.Results(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	view := pkg.ResultsView{UserID: userID, Results: make([]pkg.ResultView, 0, len(results))}
	for _, r := range results {
		view.Results = append(view.Results, resultView(r))
	}
	c.JSON(http.StatusOK, view)
}

// GET /v1/languages
func (h *QuizHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": h.svc.Languages()})
}
