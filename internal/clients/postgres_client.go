package clients

import (
	"context"
	"log"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

var (
	postgresInstance Postgres
	postgresOnce     sync.Once
)

type Postgres struct {
	DB *pgxpool.Pool
}

// GetPostgresClient returns the shared connection pool. The pool is bounded
// (min 1 / max 5) and shared by the analysis cache and the vector store;
// pgvector types are registered on every connection so embeddings scan
// directly into pgvector.Vector values.
func GetPostgresClient(ctx context.Context, dsn string) Postgres {
	postgresOnce.Do(func() {
		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			log.Fatalf("[PostgresClient] Invalid DSN: %v", err)
		}
		cfg.MinConns = POOL_MIN_CONNS
		cfg.MaxConns = POOL_MAX_CONNS
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			log.Fatalf("[PostgresClient] Failed to create pool: %v", err)
		}

		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("[PostgresClient] Failed to ping PostgreSQL: %v", err)
		}

		slog.Info("[PostgresClient] Connected to PostgreSQL",
			slog.Int("max_conns", POOL_MAX_CONNS))

		postgresInstance = Postgres{DB: pool}
	})

	return postgresInstance
}

func (p Postgres) Close() {
	if p.DB != nil {
		p.DB.Close()
	}
}
