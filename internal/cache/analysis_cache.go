package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinela-labs/sentinela/internal/clients"
	"github.com/sentinela-labs/sentinela/internal/models"
)

// ErrNotFound is returned by GetPostByID for an unknown identifier.
var ErrNotFound = errors.New("analysis not found")

const (
	hotKeyPrefix = "analysis:"
	hotTTL       = 24 * time.Hour
)

// AnalysisCache persists verdicts in Postgres keyed by the post fingerprint,
// with an optional valkey hot layer in front. GetAnalysis and SaveAnalysis
// never return errors: any storage failure is logged and treated as a miss
// (or an unsuccessful save). The listing methods back the read-only API and
// do surface their errors.
type AnalysisCache struct {
	pool *pgxpool.Pool
	hot  *clients.ValkeyClient
}

func New(pool *pgxpool.Pool, hot *clients.ValkeyClient) *AnalysisCache {
	return &AnalysisCache{pool: pool, hot: hot}
}

// GetAnalysis returns the cached verdict for a post, or (nil, false) on miss.
func (c *AnalysisCache) GetAnalysis(ctx context.Context, post models.PostInput) (*models.PostAnalysisOutput, bool) {
	if c.pool == nil {
		return nil, false
	}

	hash := Fingerprint(post)

	if c.hot != nil {
		if raw, ok := c.hot.Get(ctx, hotKeyPrefix+hash); ok {
			var out models.PostAnalysisOutput
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				slog.Debug("[AnalysisCache] Hot cache hit", slog.String("hash", hash[:8]))
				return &out, true
			}
		}
	}

	row := c.pool.QueryRow(ctx,
		`SELECT risk_level, risk_score, bert_score, confidence,
                reasoning, relevant_sources, factors
         FROM post_analyses
         WHERE post_hash = $1`,
		hash)

	var out models.PostAnalysisOutput
	err := row.Scan(&out.RiskLevel, &out.RiskScore, &out.BertScore, &out.Confidence,
		&out.Reasoning, &out.RelevantSources, &out.Factors)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("[AnalysisCache] Lookup failed, treating as miss",
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	if out.RelevantSources == nil {
		out.RelevantSources = []string{}
	}
	if out.Factors == nil {
		out.Factors = map[string]any{}
	}

	slog.Info("[AnalysisCache] Cache hit", slog.String("hash", hash[:8]))
	c.setHot(ctx, hash, &out)
	return &out, true
}

// SaveAnalysis upserts the verdict for a post. On conflict the verdict
// fields are overwritten and updated_at is bumped. Returns false on failure,
// never an error.
func (c *AnalysisCache) SaveAnalysis(ctx context.Context, post models.PostInput, out models.PostAnalysisOutput) bool {
	if c.pool == nil {
		return false
	}

	hash := Fingerprint(post)

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		slog.Warn("[AnalysisCache] Failed to begin transaction", slog.String("error", err.Error()))
		return false
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO post_analyses (
            post_hash, post_text, post_metadata, image_description,
            social_network, trend, risk_level, risk_score, bert_score,
            confidence, reasoning, relevant_sources, factors
         ) VALUES (
            $1, $2, $3::jsonb, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb
         )
         ON CONFLICT (post_hash)
         DO UPDATE SET
            risk_level = EXCLUDED.risk_level,
            risk_score = EXCLUDED.risk_score,
            bert_score = EXCLUDED.bert_score,
            confidence = EXCLUDED.confidence,
            reasoning = EXCLUDED.reasoning,
            relevant_sources = EXCLUDED.relevant_sources,
            factors = EXCLUDED.factors,
            updated_at = CURRENT_TIMESTAMP`,
		hash,
		post.Text,
		toJSON(post.Metadata),
		nullable(post.ImageDescription),
		nullable(post.SocialNetwork),
		nullable(post.Trend),
		out.RiskLevel,
		out.RiskScore,
		out.BertScore,
		out.Confidence,
		out.Reasoning,
		toJSON(out.RelevantSources),
		toJSON(out.Factors),
	)
	if err != nil {
		slog.Warn("[AnalysisCache] Failed to save analysis", slog.String("error", err.Error()))
		return false
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Warn("[AnalysisCache] Failed to commit analysis", slog.String("error", err.Error()))
		return false
	}

	slog.Info("[AnalysisCache] Analysis saved", slog.String("hash", hash[:8]))
	c.setHot(ctx, hash, &out)
	return true
}

// GetTrends lists the distinct trends present in the cache.
func (c *AnalysisCache) GetTrends(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT DISTINCT trend FROM post_analyses
         WHERE trend IS NOT NULL AND trend <> ''
         ORDER BY trend`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	defer rows.Close()

	var trends []string
	for rows.Next() {
		var trend string
		if err := rows.Scan(&trend); err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}

	return trends, rows.Err()
}

// GetPostsByTrend lists cached analyses for a trend, newest first. The limit
// is clamped to [1, MaxTrendLimit].
func (c *AnalysisCache) GetPostsByTrend(ctx context.Context, trend string, limit int) ([]models.CachedAnalysis, error) {
	limit = ClampLimit(limit, MaxTrendLimit)

	rows, err := c.pool.Query(ctx,
		selectAnalysis+` WHERE trend = $1 ORDER BY created_at DESC LIMIT $2`,
		trend, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by trend: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// GetPostByID fetches a single cached analysis, ErrNotFound when missing.
func (c *AnalysisCache) GetPostByID(ctx context.Context, id int64) (*models.CachedAnalysis, error) {
	row := c.pool.QueryRow(ctx, selectAnalysis+` WHERE id = $1`, id)

	record, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch post %d: %w", id, err)
	}

	return record, nil
}

// GetPostsPaginated pages through all cached analyses newest first. Limit is
// clamped to [1, MaxPageLimit], page to >= 1. Returns the page of records,
// the total row count and the total page count.
func (c *AnalysisCache) GetPostsPaginated(ctx context.Context, page, limit int) ([]models.CachedAnalysis, int, int, error) {
	limit = ClampLimit(limit, MaxPageLimit)
	page = ClampPage(page)

	var total int
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_analyses`).Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	rows, err := c.pool.Query(ctx,
		selectAnalysis+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to page analyses: %w", err)
	}
	defer rows.Close()

	records, err := collectAnalyses(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	return records, total, Pages(total, limit), nil
}

const selectAnalysis = `
    SELECT id, post_hash, post_text, post_metadata, image_description,
           social_network, trend, risk_level, risk_score, bert_score,
           confidence, reasoning, relevant_sources, factors,
           created_at, updated_at
    FROM post_analyses`

func collectAnalyses(rows pgx.Rows) ([]models.CachedAnalysis, error) {
	records := []models.CachedAnalysis{}
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanAnalysis(row pgx.Row) (*models.CachedAnalysis, error) {
	var record models.CachedAnalysis
	var imageDescription, socialNetwork, trend *string

	err := row.Scan(
		&record.ID, &record.PostHash, &record.PostText, &record.PostMetadata,
		&imageDescription, &socialNetwork, &trend,
		&record.RiskLevel, &record.RiskScore, &record.BertScore,
		&record.Confidence, &record.Reasoning, &record.RelevantSources,
		&record.Factors, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ImageDescription = deref(imageDescription)
	record.SocialNetwork = deref(socialNetwork)
	record.Trend = deref(trend)
	if record.RelevantSources == nil {
		record.RelevantSources = []string{}
	}
	if record.Factors == nil {
		record.Factors = map[string]any{}
	}

	return &record, nil
}

func (c *AnalysisCache) setHot(ctx context.Context, hash string, out *models.PostAnalysisOutput) {
	if c.hot == nil {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	c.hot.Set(ctx, hotKeyPrefix+hash, string(data), hotTTL)
}

func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
