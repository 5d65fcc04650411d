package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"docforge/internal/config"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/handler"
	"docforge/internal/middleware"
	"docforge/internal/repository/memory"
	"docforge/internal/repository/postgres"
	postgresDocstore "docforge/internal/repository/postgres/docstore"
	serviceDocstore "docforge/internal/service/docstore"
)

// maxLogFiles caps the log directory; older runs are pruned on start.
const maxLogFiles = 10

func main() {
	// .env is optional; production sets real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	// Logs go to stdout and a timestamped file; losing the file is not
	// worth refusing to start over.
	logOutput := io.Writer(os.Stdout)
	logFile, err := config.SetupLogFile("logs", maxLogFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	} else {
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend", cfg.Backend(),
	)

	ctx := context.Background()

	repo, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}
	defer repo.Close()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	transferService := serviceDocstore.NewTransferService(repo, logger)

	nodeHandler := handler.NewNodeHandler(repo, logger)
	docHandler := handler.NewDocumentHandler(repo, logger)
	searchHandler := handler.NewSearchHandler(repo, logger)
	transferHandler := handler.NewTransferHandler(transferService, logger)
	templateHandler := handler.NewTemplateHandler(repo, logger)
	settingsHandler := handler.NewSettingsHandler(repo, logger)

	logger.Info("services initialized")

	// Go 1.22+ method patterns
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", nodeHandler.HealthCheck)
	mux.HandleFunc("GET /api/capabilities", nodeHandler.Capabilities)

	mux.HandleFunc("GET /api/tree", nodeHandler.GetTree)
	mux.HandleFunc("POST /api/nodes", nodeHandler.AddNode)
	mux.HandleFunc("PATCH /api/nodes/{id}", nodeHandler.UpdateNode)
	mux.HandleFunc("POST /api/nodes/delete", nodeHandler.DeleteNodes)
	mux.HandleFunc("POST /api/nodes/move", nodeHandler.MoveNodes)
	mux.HandleFunc("POST /api/nodes/duplicate", nodeHandler.DuplicateNodes)

	mux.HandleFunc("GET /api/nodes/{id}/content", docHandler.GetContent)
	mux.HandleFunc("PUT /api/nodes/{id}/content", docHandler.UpdateContent)
	mux.HandleFunc("GET /api/nodes/{id}/versions", docHandler.ListVersions)
	mux.HandleFunc("POST /api/nodes/{id}/versions/delete", docHandler.DeleteVersions)
	mux.HandleFunc("GET /api/versions/{id}/content", docHandler.GetVersionContent)

	mux.HandleFunc("GET /api/search", searchHandler.Search)

	mux.HandleFunc("POST /api/transfer/export", transferHandler.Export)
	mux.HandleFunc("POST /api/transfer/import", transferHandler.Import)

	mux.HandleFunc("GET /api/templates", templateHandler.ListTemplates)
	mux.HandleFunc("PUT /api/templates", templateHandler.SaveTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", templateHandler.DeleteTemplate)

	mux.HandleFunc("GET /api/settings", settingsHandler.GetSettings)
	mux.HandleFunc("PATCH /api/settings", settingsHandler.SaveSettings)

	// Middleware wrap each other in reverse order: CORS outermost so
	// OPTIONS pre-flights never reach the routes.
	var httpHandler http.Handler = mux
	httpHandler = middleware.RequestLogging(logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)
	httpHandler = cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}).Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildRepository selects the backend from configuration: persistent
// when a database URL is set, otherwise in-process with optional
// key-value snapshots.
func buildRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstoreRepo.Repository, error) {
	if cfg.Backend() == config.BackendPostgres {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		txManager := postgres.NewTransactionManager(pool, logger)
		return postgresDocstore.NewRepository(repoConfig, txManager), nil
	}

	var snapshots *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		snapshots = redis.NewClient(opts)
		if err := snapshots.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		logger.Info("snapshot store connected")
	} else {
		logger.Warn("no snapshot store configured, state will not survive restarts")
	}

	return memory.NewRepository(memory.Config{
		Snapshots: snapshots,
		Logger:    logger,
	}), nil
}
