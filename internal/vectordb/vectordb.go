package vectordb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sentinela-labs/sentinela/internal/embedding"
	"github.com/sentinela-labs/sentinela/internal/models"
)

// NoResultsContext is returned by GetContext when retrieval finds nothing.
const NoResultsContext = "Nenhuma notícia confiável similar encontrada no banco de dados."

// VectorDB retrieves trusted news documents by cosine similarity over a
// pgvector column. Read operations never return an error: when the embedding
// backend or the database is unavailable they degrade to empty results.
type VectorDB struct {
	pool  *pgxpool.Pool
	embed embedding.Engine
}

func New(pool *pgxpool.Pool, engine embedding.Engine) *VectorDB {
	return &VectorDB{pool: pool, embed: engine}
}

// SearchSimilar embeds the query and returns the k nearest trusted
// documents, most similar first.
func (v *VectorDB) SearchSimilar(ctx context.Context, query string, k int) []models.Document {
	if v.pool == nil || v.embed == nil {
		slog.Warn("[VectorDB] Store not available, returning no documents")
		return nil
	}

	vector, err := v.embed.Embed(ctx, query)
	if err != nil {
		slog.Warn("[VectorDB] Query embedding failed",
			slog.String("engine", v.embed.Name()),
			slog.String("error", err.Error()))
		return nil
	}

	rows, err := v.pool.Query(ctx,
		`SELECT content, metadata
         FROM trusted_documents
         ORDER BY embedding <=> $1
         LIMIT $2`,
		pgvector.NewVector(vector), k)
	if err != nil {
		slog.Warn("[VectorDB] Similarity query failed", slog.String("error", err.Error()))
		return nil
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.PageContent, &doc.Metadata); err != nil {
			slog.Warn("[VectorDB] Failed to scan document row", slog.String("error", err.Error()))
			continue
		}
		docs = append(docs, doc)
	}

	return docs
}

// GetContext returns the retrieved documents formatted as numbered,
// source-attributed blocks for the agent prompt.
func (v *VectorDB) GetContext(ctx context.Context, query string, k int) string {
	return FormatContext(v.SearchSimilar(ctx, query, k))
}

// GetSources returns the deduplicated source names of the retrieved
// documents, preserving first-seen order.
func (v *VectorDB) GetSources(ctx context.Context, query string, k int) []string {
	return SourcesFrom(v.SearchSimilar(ctx, query, k))
}

// AddDocuments embeds and inserts new trusted documents inside a single
// transaction, returning the generated ids. A failure on any document rolls
// the whole batch back.
func (v *VectorDB) AddDocuments(ctx context.Context, docs []models.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if v.pool == nil || v.embed == nil {
		return nil, fmt.Errorf("vector store not available")
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	vectors, err := v.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	tx, err := v.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, len(docs))
	for i, doc := range docs {
		id := uuid.New().String()
		_, err := tx.Exec(ctx,
			`INSERT INTO trusted_documents (id, content, metadata, embedding)
             VALUES ($1, $2, $3, $4)`,
			id, doc.PageContent, doc.Metadata, pgvector.NewVector(vectors[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to insert document: %w", err)
		}
		ids[i] = id
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit documents: %w", err)
	}

	slog.Info("[VectorDB] Inserted trusted documents", slog.Int("count", len(ids)))
	return ids, nil
}

// FormatContext renders documents as "[Fonte N: source]" blocks.
func FormatContext(docs []models.Document) string {
	if len(docs) == 0 {
		return NoResultsContext
	}

	context := ""
	for i, doc := range docs {
		context += fmt.Sprintf("[Fonte %d: %s]\n%s\n\n", i+1, doc.Source(), doc.PageContent)
	}
	return context[:len(context)-1]
}

// SourcesFrom extracts unique source names in first-seen order.
func SourcesFrom(docs []models.Document) []string {
	var sources []string
	seen := make(map[string]struct{})

	for _, doc := range docs {
		source := doc.Source()
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}

	return sources
}
