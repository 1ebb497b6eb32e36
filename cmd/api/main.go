package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knights-analytics/hugot"

	"github.com/sentinela-labs/sentinela/config"
	"github.com/sentinela-labs/sentinela/internal/agent"
	"github.com/sentinela-labs/sentinela/internal/api"
	"github.com/sentinela-labs/sentinela/internal/cache"
	"github.com/sentinela-labs/sentinela/internal/classifier"
	"github.com/sentinela-labs/sentinela/internal/clients"
	"github.com/sentinela-labs/sentinela/internal/embedding"
	"github.com/sentinela-labs/sentinela/internal/events"
	"github.com/sentinela-labs/sentinela/internal/logging"
	"github.com/sentinela-labs/sentinela/internal/vectordb"
	"github.com/sentinela-labs/sentinela/internal/workflow"
)

const shutdownTimeout = 30 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg := clients.GetPostgresClient(ctx, cfg.DatabaseURL)
	defer pg.Close()

	session, err := hugot.NewORTSession()
	if err != nil {
		log.Fatalf("[Main] Failed to create inference session: %v", err)
	}
	defer session.Destroy()

	cls, err := classifier.New(session, cfg.ClassifierModel, cfg.ModelDir)
	if err != nil {
		log.Fatalf("[Main] Failed to initialize classifier: %v", err)
	}

	retriever := vectordb.New(pg.DB, buildEmbedder(ctx, cfg, session))
	analysisCache := buildCache(cfg, pg)

	var store workflow.AnalysisStore
	if cfg.EnableCache {
		store = analysisCache
	} else {
		slog.Info("[Main] Analysis cache disabled")
	}

	var publisher workflow.Publisher
	if p := buildPublisher(cfg); p != nil {
		publisher = p
		defer p.Close()
	}

	wf := workflow.New(cls, agent.New(retriever, buildProvider(ctx, cfg)), store, publisher)

	handler := api.NewHandler(wf, analysisCache)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(handler),
	}

	go func() {
		slog.Info("[Main] API listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Main] Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Forced shutdown", slog.String("error", err.Error()))
	}
	clients.CloseValkey()
	slog.Info("[Main] Shutdown complete")
}

// buildEmbedder picks the embedding backend. Local hugot embeddings are the
// default; remote Gemini embeddings trade model downloads for API calls.
func buildEmbedder(ctx context.Context, cfg config.Config, session *hugot.Session) embedding.Engine {
	switch cfg.EmbeddingProvider {
	case "genai":
		client, err := clients.GetGenAIClient(ctx, cfg.GoogleAPIKey)
		if err != nil {
			slog.Warn("[Main] Gemini embeddings unavailable, retrieval disabled",
				slog.String("error", err.Error()))
			return nil
		}
		return embedding.NewGenAIEngine(client.Client, cfg.EmbeddingModel)
	default:
		engine, err := embedding.NewHugotEngine(session, cfg.EmbeddingModel, cfg.ModelDir)
		if err != nil {
			slog.Warn("[Main] Local embeddings unavailable, retrieval disabled",
				slog.String("error", err.Error()))
			return nil
		}
		return engine
	}
}

// buildProvider picks the verdict LLM. A missing or broken provider is not
// fatal: the agent falls back to the score-only heuristic.
func buildProvider(ctx context.Context, cfg config.Config) agent.Provider {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("[Main] OPENAI_API_KEY not set, LLM verdicts disabled")
			return nil
		}
		return agent.NewOpenAIProvider(clients.GetOpenAIClient(cfg.OpenAIAPIKey).Client, cfg.LLMModel)
	default:
		if cfg.GoogleAPIKey == "" {
			slog.Warn("[Main] GOOGLE_API_KEY not set, LLM verdicts disabled")
			return nil
		}
		client, err := clients.GetGenAIClient(ctx, cfg.GoogleAPIKey)
		if err != nil {
			slog.Warn("[Main] Gemini client unavailable, LLM verdicts disabled",
				slog.String("error", err.Error()))
			return nil
		}
		return agent.NewGeminiProvider(client.Client, cfg.LLMModel)
	}
}

// buildCache assembles the Postgres-backed analysis cache with an optional
// Valkey hot layer in front of it. The listing endpoints read through this
// cache even when write-through caching is disabled.
func buildCache(cfg config.Config, pg clients.Postgres) *cache.AnalysisCache {
	var hot *clients.ValkeyClient
	if cfg.EnableHotCache {
		var err error
		hot, err = clients.InitValkey(cfg.ValkeyAddress, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, hot cache disabled",
				slog.String("error", err.Error()))
		}
	}

	return cache.New(pg.DB, hot)
}

func buildPublisher(cfg config.Config) *events.Publisher {
	if cfg.KafkaBroker == "" {
		return nil
	}

	publisher, err := events.NewPublisher(cfg.KafkaBroker)
	if err != nil {
		slog.Warn("[Main] Kafka unavailable, analysis events disabled",
			slog.String("error", err.Error()))
		return nil
	}
	return publisher
}
