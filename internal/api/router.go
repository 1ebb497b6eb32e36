package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface around the injected handler.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.POST("/analyze", h.AnalyzePost)
	r.GET("/trends", h.GetTrends)
	r.GET("/posts", h.GetPosts)
	r.GET("/posts/:id", h.GetPostByID)
	r.GET("/posts/trend/:trend", h.GetPostsByTrend)
	r.GET("/health", h.Health)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("[API] Request handled",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}
