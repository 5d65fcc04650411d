package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"docforge/internal/domain/repositories"
)

// RepositoryConfig holds shared wiring for the postgres repository.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names (dev_, test_,
// prod_). The prefix is interpolated before the SQL reaches the server,
// so each environment gets its own statements.
type TableNames struct {
	Nodes        string
	Documents    string
	DocVersions  string
	ContentStore string
	Templates    string
	Settings     string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Nodes:        prefix + "nodes",
		Documents:    prefix + "documents",
		DocVersions:  prefix + "doc_versions",
		ContentStore: prefix + "content_store",
		Templates:    prefix + "templates",
		Settings:     prefix + "settings",
	}
}

// CreateConnectionPool creates a pgx pool sized for a single desktop
// client and verifies connectivity before returning.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// One local writer plus concurrent reads; a big pool buys nothing here.
	config.MaxConns = 8
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("database pool ready", "max_conns", config.MaxConns)
	return pool, nil
}

// GetExecutor returns the transaction stored in ctx when present,
// otherwise the pool, so repository methods automatically participate
// in enclosing transactions.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
