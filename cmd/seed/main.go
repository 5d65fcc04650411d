// Command seed prepares a database for local development: schema
// setup, optional table drop, and a small sample tree to click around
// in.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"docforge/internal/config"
	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
	postgresDocstore "docforge/internal/repository/postgres/docstore"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed sample content")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: refusing to drop tables in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required; the in-process backend needs no seeding")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Warn("dropping tables", "prefix", cfg.TablePrefix)
		for _, table := range []string{
			tables.DocVersions, tables.Documents, tables.Nodes,
			tables.ContentStore, tables.Templates, tables.Settings,
		} {
			if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
		}
	}

	repo := postgresDocstore.NewRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}, postgres.NewTransactionManager(pool, logger))

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	logger.Info("schema ready", "prefix", cfg.TablePrefix)

	if *schemaOnly {
		return
	}

	if err := seedSampleTree(ctx, repo); err != nil {
		log.Fatalf("Failed to seed sample content: %v", err)
	}
	logger.Info("sample content seeded")
}

// seedSampleTree creates a small folder with two documents so a fresh
// install has something to show.
func seedSampleTree(ctx context.Context, repo *postgresDocstore.Repository) error {
	folder, err := repo.AddNode(ctx, models.NodeDraft{
		NodeType: models.NodeTypeFolder,
		Title:    "Getting Started",
	})
	if err != nil {
		return err
	}

	_, err = repo.AddNode(ctx, models.NodeDraft{
		ParentID: &folder.ID,
		NodeType: models.NodeTypeDocument,
		Title:    "Welcome.md",
		Content:  "# Welcome\n\nThis folder was created by the seed command.\n",
	})
	if err != nil {
		return err
	}

	_, err = repo.AddNode(ctx, models.NodeDraft{
		ParentID: &folder.ID,
		NodeType: models.NodeTypeDocument,
		Title:    "example.py",
		Content:  "#!/usr/bin/env python3\nprint(\"hello from the seed command\")\n",
	})
	return err
}
