package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skillpath_quiz/internal/logger"
)

var errLimit = errors.New("limit must be an integer between 1 and 100")

// NewRouter builds the gin engine serving the quiz API.
func NewRouter(h *QuizHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/languages", h.Languages)

		q := v1.Group("/quiz/:user_id")
		q.POST("/start", h.Start)
		q.POST("/choice", h.Choose)
		q.GET("", h.Current)
		q.DELETE("", h.Cancel)
		q.GET("/results", h.Results)
	}
	return router
}

// requestLogger logs every request through the global zerolog logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("user_id", c.Param("user_id")).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
