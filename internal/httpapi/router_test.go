package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillpath_quiz/internal/content/contenttest"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/internal/storage"
	"skillpath_quiz/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc := quiz.NewService(
		core.NewEngine(contenttest.Store(t)),
		storage.NewMemoryProgressStore(),
		storage.NewMemoryResultStore(),
		storage.NewKeyedLocker(),
	)
	return NewRouter(NewQuizHandler(svc))
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestQuizFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/quiz/u1/start", pkg.StartRequest{Language: "ru", Gender: "девочка"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	prompt := decode[pkg.PromptView](t, w)
	assert.Equal(t, "Ты готова начать день?", prompt.Text)
	assert.Equal(t, pkg.ProgressView{Current: 1, Total: 3}, prompt.Progress)
	assert.Equal(t, "basic", prompt.Branch)

	w = do(t, r, http.MethodGet, "/v1/quiz/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, prompt, decode[pkg.PromptView](t, w))

	var reply pkg.ReplyView
	for i, option := range []string{"a", "a", "a", "go"} {
		w = do(t, r, http.MethodPost, "/v1/quiz/u1/choice", pkg.ChoiceRequest{OptionID: option})
		require.Equal(t, http.StatusOK, w.Code, "step %d: %s", i, w.Body.String())
		reply = decode[pkg.ReplyView](t, w)
		if i == 2 {
			assert.Equal(t, "A", reply.EnteredBranch)
		}
	}
	require.NotNil(t, reply.Result)
	assert.Equal(t, "A", reply.Result.Profile)
	assert.Equal(t, map[string]int{"A": 5}, reply.Result.Scores)

	w = do(t, r, http.MethodGet, "/v1/quiz/u1/results?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[pkg.ResultsView](t, w)
	require.Len(t, results.Results, 1)
	assert.Equal(t, reply.Result.ID, results.Results[0].ID)

	w = do(t, r, http.MethodGet, "/v1/quiz/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/quiz/u1/choice", pkg.ChoiceRequest{OptionID: "a"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", decode[pkg.ErrorEnvelope](t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/v1/quiz/u1/start", map[string]string{"language": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "gender is required")

	w = do(t, r, http.MethodPost, "/v1/quiz/u1/start", pkg.StartRequest{Gender: "unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_argument", decode[pkg.ErrorEnvelope](t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/v1/quiz/u1/start", pkg.StartRequest{Gender: "male"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/quiz/u1/choice", pkg.ChoiceRequest{OptionID: "zzz"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode[pkg.ErrorEnvelope](t, w)
	assert.Equal(t, "invalid_choice", env.Error.Code)
	require.NotNil(t, env.Prompt)
	assert.Equal(t, 1, env.Prompt.SceneID)

	w = do(t, r, http.MethodGet, "/v1/quiz/u1/results?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/v1/quiz/u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodDelete, "/v1/quiz/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor("storage"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("content_integrity"))
	assert.Equal(t, http.StatusConflict, statusFor("session_finished"))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

func TestLanguages(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/v1/languages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"languages":["en","ru"]}`, w.Body.String())
}
