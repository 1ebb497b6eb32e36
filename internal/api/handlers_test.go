package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-labs/sentinela/internal/cache"
	"github.com/sentinela-labs/sentinela/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeWorkflow struct {
	lastPost models.PostInput
	resp     models.AnalysisResponse
}

func (f *fakeWorkflow) ProcessPost(_ context.Context, post models.PostInput) models.AnalysisResponse {
	f.lastPost = post
	return f.resp
}

type fakeReader struct {
	trends    []string
	byTrend   []models.CachedAnalysis
	lastTrend string
	lastLimit int
	byID      map[int64]*models.CachedAnalysis
	paginated []models.CachedAnalysis
	total     int
	pages     int
	err       error
}

func (f *fakeReader) GetTrends(_ context.Context) ([]string, error) {
	return f.trends, f.err
}

func (f *fakeReader) GetPostsByTrend(_ context.Context, trend string, limit int) ([]models.CachedAnalysis, error) {
	f.lastTrend = trend
	f.lastLimit = limit
	return f.byTrend, f.err
}

func (f *fakeReader) GetPostByID(_ context.Context, id int64) (*models.CachedAnalysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.byID[id]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return record, nil
}

func (f *fakeReader) GetPostsPaginated(_ context.Context, _, _ int) ([]models.CachedAnalysis, int, int, error) {
	return f.paginated, f.total, f.pages, f.err
}

func serve(h *Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func TestAnalyzePost(t *testing.T) {
	fromCache := false
	wf := &fakeWorkflow{resp: models.AnalysisResponse{
		PostAnalysisOutput: models.PostAnalysisOutput{
			RiskLevel: models.RiskAlto,
			RiskScore: 0.63,
		},
		FromCache: &fromCache,
	}}

	body, _ := json.Marshal(map[string]any{
		"text":           "Vacinas contêm chips.",
		"social_network": "Twitter",
	})
	w := serve(NewHandler(wf, nil), http.MethodPost, "/analyze", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Vacinas contêm chips.", wf.lastPost.Text)
	assert.Equal(t, "Twitter", wf.lastPost.SocialNetwork)

	var resp models.AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RiskAlto, resp.RiskLevel)
	require.NotNil(t, resp.FromCache)
	assert.False(t, *resp.FromCache)
}

func TestAnalyzePostInvalidBody(t *testing.T) {
	w := serve(NewHandler(&fakeWorkflow{}, nil), http.MethodPost, "/analyze", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzePostEmptyText(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"text": "   "})
	w := serve(NewHandler(&fakeWorkflow{}, nil), http.MethodPost, "/analyze", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzePostWithoutWorkflow(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"text": "algo"})
	w := serve(NewHandler(nil, &fakeReader{}), http.MethodPost, "/analyze", body)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetTrends(t *testing.T) {
	store := &fakeReader{trends: []string{"eleicoes", "saude"}}
	w := serve(NewHandler(nil, store), http.MethodGet, "/trends", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"eleicoes", "saude"}, resp["trends"])
}

func TestGetTrendsEmpty(t *testing.T) {
	w := serve(NewHandler(nil, &fakeReader{}), http.MethodGet, "/trends", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"trends":[]}`, w.Body.String())
}

func TestGetPostsByTrend(t *testing.T) {
	store := &fakeReader{byTrend: []models.CachedAnalysis{{ID: 1, Trend: "eleicoes"}}}
	w := serve(NewHandler(nil, store), http.MethodGet, "/posts/trend/eleicoes?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "eleicoes", store.lastTrend)
	assert.Equal(t, 5, store.lastLimit)
}

func TestGetPostsByTrendDefaultLimit(t *testing.T) {
	store := &fakeReader{}
	w := serve(NewHandler(nil, store), http.MethodGet, "/posts/trend/saude", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, store.lastLimit)
}

func TestGetPostByID(t *testing.T) {
	store := &fakeReader{byID: map[int64]*models.CachedAnalysis{
		42: {ID: 42, RiskLevel: models.RiskBaixo},
	}}

	w := serve(NewHandler(nil, store), http.MethodGet, "/posts/42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.CachedAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, int64(42), record.ID)
}

func TestGetPostByIDNotFound(t *testing.T) {
	w := serve(NewHandler(nil, &fakeReader{byID: map[int64]*models.CachedAnalysis{}}),
		http.MethodGet, "/posts/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPostByIDInvalid(t *testing.T) {
	w := serve(NewHandler(nil, &fakeReader{}), http.MethodGet, "/posts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPostsPaginated(t *testing.T) {
	store := &fakeReader{
		paginated: []models.CachedAnalysis{{ID: 1}, {ID: 2}},
		total:     12,
		pages:     6,
	}

	w := serve(NewHandler(nil, store), http.MethodGet, "/posts?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []models.CachedAnalysis `json:"data"`
		Total int                     `json:"total"`
		Page  int                     `json:"page"`
		Limit int                     `json:"limit"`
		Pages int                     `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 6, resp.Pages)
}

func TestGetPostsClampsParams(t *testing.T) {
	store := &fakeReader{}
	w := serve(NewHandler(nil, store), http.MethodGet, "/posts?page=0&limit=9999", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["page"])
	assert.Equal(t, float64(100), resp["limit"])
}

func TestListingEndpointsWithoutStore(t *testing.T) {
	h := NewHandler(&fakeWorkflow{}, nil)
	for _, target := range []string{"/trends", "/posts", "/posts/1", "/posts/trend/x"} {
		w := serve(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}

func TestHealth(t *testing.T) {
	w := serve(NewHandler(nil, nil), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"sentinela-api"}`, w.Body.String())
}
