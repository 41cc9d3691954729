package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/cache"
	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/handlers"
	"github.com/Hollando78/airgen-sub002/internal/mirror"
	"github.com/Hollando78/airgen-sub002/internal/observability"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
	"github.com/Hollando78/airgen-sub002/internal/platform/neo4jdb"
	"github.com/Hollando78/airgen-sub002/internal/server"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Neo4j  *neo4jdb.Client
	Graph  *graph.Service
	Router *gin.Engine

	cache        *cache.Invalidator
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()

	otelShutdown := observability.Init(ctx, log, observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init neo4j: %w", err)
	}

	deps := graph.Deps{Client: neo, Log: log}

	// Redis is optional; without it the service just skips eviction.
	invalidator, err := cache.NewFromEnv(log)
	if err != nil {
		log.Warn("cache invalidator disabled", "error", err)
	} else {
		deps.Cache = invalidator
	}

	if cfg.MirrorRoot != "" {
		deps.Mirror = mirror.NewWriter(cfg.MirrorRoot, log)
	}

	svc := graph.NewService(deps)
	svc.EnsureSchema(ctx)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:         cfg.ServiceName,
		AllowOrigins:        cfg.AllowOrigins,
		HierarchyHandler:    handlers.NewHierarchyHandler(log, svc),
		DocumentHandler:     handlers.NewDocumentHandler(log, svc),
		RequirementHandler:  handlers.NewRequirementHandler(log, svc),
		BaselineHandler:     handlers.NewBaselineHandler(log, svc),
		TraceLinkHandler:    handlers.NewTraceLinkHandler(log, svc),
		ArchitectureHandler: handlers.NewArchitectureHandler(log, svc),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Neo4j:        neo,
		Graph:        svc,
		Router:       router,
		cache:        invalidator,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Neo4j != nil {
		if err := a.Neo4j.Close(ctx); err != nil {
			a.Log.Warn("neo4j close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
