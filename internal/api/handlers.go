package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sentinela-labs/sentinela/internal/cache"
	"github.com/sentinela-labs/sentinela/internal/models"
)

// PostAnalyzer runs one post through the analysis pipeline.
type PostAnalyzer interface {
	ProcessPost(ctx context.Context, post models.PostInput) models.AnalysisResponse
}

// AnalysisReader is the read side of the analysis cache backing the listing
// endpoints.
type AnalysisReader interface {
	GetTrends(ctx context.Context) ([]string, error)
	GetPostsByTrend(ctx context.Context, trend string, limit int) ([]models.CachedAnalysis, error)
	GetPostByID(ctx context.Context, id int64) (*models.CachedAnalysis, error)
	GetPostsPaginated(ctx context.Context, page, limit int) ([]models.CachedAnalysis, int, int, error)
}

// Handler carries the workflow and cache injected at startup. Either may be
// nil when the service started degraded; the affected endpoints answer 503.
type Handler struct {
	workflow PostAnalyzer
	store    AnalysisReader
}

func NewHandler(workflow PostAnalyzer, store AnalysisReader) *Handler {
	return &Handler{workflow: workflow, store: store}
}

// POST /analyze
func (h *Handler) AnalyzePost(c *gin.Context) {
	if h.workflow == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow not initialized"})
		return
	}

	var post models.PostInput
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(post.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post text is required"})
		return
	}

	c.JSON(http.StatusOK, h.workflow.ProcessPost(c.Request.Context(), post))
}

// GET /trends
func (h *Handler) GetTrends(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}

	trends, err := h.store.GetTrends(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trends == nil {
		trends = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// GET /posts/trend/:trend
func (h *Handler) GetPostsByTrend(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}

	limit := intQuery(c, "limit", 100)

	posts, err := h.store.GetPostsByTrend(c.Request.Context(), c.Param("trend"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GET /posts/:id
func (h *Handler) GetPostByID(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	record, err := h.store.GetPostByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GET /posts?page=&limit=
func (h *Handler) GetPosts(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
		return
	}

	page := cache.ClampPage(intQuery(c, "page", 1))
	limit := cache.ClampLimit(intQuery(c, "limit", 20), cache.MaxPageLimit)

	records, total, pages, err := h.store.GetPostsPaginated(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": total,
		"page":  page,
		"limit": limit,
		"pages": pages,
	})
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "sentinela-api",
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}
