package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/futig/rag-backend/internal/api"
	ragapi "github.com/futig/rag-backend/internal/api/rag"
	"github.com/futig/rag-backend/internal/chunker"
	"github.com/futig/rag-backend/internal/config"
	"github.com/futig/rag-backend/internal/integration/embedding"
	"github.com/futig/rag-backend/internal/integration/llm"
	"github.com/futig/rag-backend/internal/loader"
	"github.com/futig/rag-backend/internal/pkg/validator"
	"github.com/futig/rag-backend/internal/repository"
	indexuc "github.com/futig/rag-backend/internal/usecase/index"
	ingestuc "github.com/futig/rag-backend/internal/usecase/ingest"
	queryuc "github.com/futig/rag-backend/internal/usecase/query"
	"github.com/futig/rag-backend/internal/watcher"
)

// Core bundles the configured use cases for reuse by the HTTP server and
// the CLI.
type Core struct {
	Config   *config.Config
	Logger   *zap.Logger
	QueryUC  *queryuc.Usecase
	IngestUC *ingestuc.Usecase
	IndexUC  *indexuc.Usecase

	db *pgxpool.Pool
}

// Close releases resources held by the core (the database pool, if any).
func (c *Core) Close() {
	if c.db != nil {
		c.db.Close()
	}
	_ = c.Logger.Sync()
}

// BuildCore wires configuration, stores, connectors and use cases.
func BuildCore(environment string) (*Core, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("memory_backend", cfg.MemoryBackend),
	)

	// Conversation memory: in-process by default, Postgres when sessions
	// must survive restarts.
	var (
		db     *pgxpool.Pool
		memory repository.ConversationStore
	)
	if cfg.MemoryBackend == config.MemoryBackendPostgres {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		memory = repository.NewConversationPostgres(db)
	} else {
		memory = repository.NewConversationInMemory(cfg.MemoryMaxTurns, cfg.MemoryTTL)
	}

	indexStore := repository.NewFileIndexStore(cfg.IndexDir)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var embedder indexuc.Embedder
	var generator queryuc.Generator

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		generator = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, logger)
		generator = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	loaders := loader.NewRegistry()

	textChunker, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("create chunker: %w", err)
	}

	indexUC := indexuc.NewUsecase(embedder, indexStore, logger)
	ingestUC := ingestuc.NewUsecase(loaders, textChunker, indexUC, logger)
	queryUC := queryuc.NewUsecase(indexUC, generator, memory, cfg.TopK, cfg.MemoryMaxTurns, logger)
	logger.Info("Use cases initialized")

	return &Core{
		Config:   cfg,
		Logger:   logger,
		QueryUC:  queryUC,
		IngestUC: ingestUC,
		IndexUC:  indexUC,
		db:       db,
	}, nil
}

// Build assembles the full HTTP application.
func Build(environment string) (*App, error) {
	core, err := BuildCore(environment)
	if err != nil {
		return nil, err
	}

	cfg := core.Config
	logger := core.Logger

	// Setup API handlers
	ragHandler := ragapi.NewHandler(core.QueryUC, core.IngestUC, core.IndexUC, validator.NewValidator())
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(ragHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Optional directory watcher
	var dirWatcher *watcher.Watcher
	if cfg.WatchDir != "" {
		dirWatcher = watcher.New(cfg.WatchDir, cfg.WatchDebounce, core.IngestUC, logger)
		logger.Info("Directory watcher configured", zap.String("dir", cfg.WatchDir))
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		watcher: dirWatcher,
		core:    core,
		logger:  logger,
	}, nil
}
