package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/knights-analytics/hugot"

	"github.com/sentinela-labs/sentinela/config"
	"github.com/sentinela-labs/sentinela/internal/clients"
	"github.com/sentinela-labs/sentinela/internal/embedding"
	"github.com/sentinela-labs/sentinela/internal/logging"
	"github.com/sentinela-labs/sentinela/internal/models"
	"github.com/sentinela-labs/sentinela/internal/vectordb"
)

// ingestLine is one JSONL record of trusted news content. "page_content" is
// accepted as an alias of "content" for compatibility with exported corpora.
type ingestLine struct {
	Content     string         `json:"content"`
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

func main() {
	file := flag.String("file", "", "path to a JSONL file of trusted documents")
	batchSize := flag.Int("batch", 32, "documents embedded and inserted per transaction")
	flag.Parse()

	if *file == "" {
		log.Fatal("[Ingest] -file is required")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.FromEnv()
	ctx := context.Background()

	pg := clients.GetPostgresClient(ctx, cfg.DatabaseURL)
	defer pg.Close()

	store := vectordb.New(pg.DB, buildEmbedder(ctx, cfg))

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("[Ingest] Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	var (
		batch    []models.Document
		inserted int
		skipped  int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line ingestLine
		if err := json.Unmarshal(raw, &line); err != nil {
			slog.Warn("[Ingest] Skipping malformed line", slog.String("error", err.Error()))
			skipped++
			continue
		}

		content := line.Content
		if content == "" {
			content = line.PageContent
		}
		if content == "" {
			skipped++
			continue
		}

		batch = append(batch, models.Document{PageContent: content, Metadata: line.Metadata})
		if len(batch) >= *batchSize {
			inserted += flush(ctx, store, batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("[Ingest] Failed to read %s: %v", *file, err)
	}
	inserted += flush(ctx, store, batch)

	slog.Info("[Ingest] Done",
		slog.Int("inserted", inserted),
		slog.Int("skipped", skipped))
}

func flush(ctx context.Context, store *vectordb.VectorDB, batch []models.Document) int {
	if len(batch) == 0 {
		return 0
	}

	ids, err := store.AddDocuments(ctx, batch)
	if err != nil {
		log.Fatalf("[Ingest] Failed to insert batch of %d: %v", len(batch), err)
	}
	return len(ids)
}

func buildEmbedder(ctx context.Context, cfg config.Config) embedding.Engine {
	if cfg.EmbeddingProvider == "genai" {
		client, err := clients.GetGenAIClient(ctx, cfg.GoogleAPIKey)
		if err != nil {
			log.Fatalf("[Ingest] Failed to initialize Gemini client: %v", err)
		}
		return embedding.NewGenAIEngine(client.Client, cfg.EmbeddingModel)
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		log.Fatalf("[Ingest] Failed to create inference session: %v", err)
	}
	engine, err := embedding.NewHugotEngine(session, cfg.EmbeddingModel, cfg.ModelDir)
	if err != nil {
		log.Fatalf("[Ingest] Failed to initialize embeddings: %v", err)
	}
	return engine
}
