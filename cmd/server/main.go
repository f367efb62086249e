package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jharjadi/jdgen/internal/config"
	"github.com/jharjadi/jdgen/internal/db"
	"github.com/jharjadi/jdgen/internal/guides"
	"github.com/jharjadi/jdgen/internal/handler"
	"github.com/jharjadi/jdgen/internal/mcptools"
	"github.com/jharjadi/jdgen/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database with retry
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run startup checks (extension + table)
	if err := db.StartupChecks(ctx, pool); err != nil {
		slog.Error("startup checks failed", "error", err)
		os.Exit(1)
	}

	// Leveling guides
	guideStore, err := loadGuides(cfg)
	if err != nil {
		slog.Error("failed to load leveling guides", "error", err)
		os.Exit(1)
	}
	if cfg.GuidesDir != "" && cfg.GuidesWatch {
		w, err := guides.NewWatcher(cfg.GuidesDir, guideStore, func() (*guides.Repository, error) {
			return guides.Load(os.DirFS(cfg.GuidesDir), cfg.GuideRawFileCap, guides.WithMaxFiles(cfg.GuideMaxFiles))
		}, logger)
		if err != nil {
			slog.Error("failed to create guide watcher", "error", err)
			os.Exit(1)
		}
		if err := w.Start(ctx); err != nil {
			slog.Error("failed to watch guides", "dir", cfg.GuidesDir, "error", err)
			os.Exit(1)
		}
		defer w.Stop()
	}

	// Initialize services
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiryHours, []service.APIKey{
		{Name: "admin-key", Hash: cfg.APIKeyHash, Role: service.RoleAdmin},
		{Name: "reader-key", Hash: cfg.ReadAPIKeyHash, Role: service.RoleReader},
	})
	retrievalSvc := service.NewRetrievalService(pool)
	rerankerSvc := service.NewRerankerService(
		cfg.CohereAPIKey,
		cfg.CohereRerankerModel,
		cfg.RerankTimeout(),
		cfg.RerankMaxDocs,
		cfg.RerankFailOpen,
	)
	var llm service.Generator
	if cfg.LLMEnabled {
		llm = service.NewLLMService(
			cfg.LLMProvider,
			cfg.LLMModel,
			cfg.AnthropicAPIKey,
			cfg.LLMMaxTokens,
		)
	}

	pipeline := service.NewPipeline(cfg, embedder, retrievalSvc, retrievalSvc, rerankerSvc, llm, guideStore)

	mcpServer := mcptools.NewServer(mcptools.NewLocalBackend(pipeline), version)

	router := handler.NewRouter(handler.RouterDeps{
		Service:     pipeline,
		Chunks:      retrievalSvc,
		Guides:      guideStore,
		DB:          retrievalSvc,
		Auth:        authSvc,
		AuthEnabled: cfg.AuthEnabled,
		Version:     version,
		MCP:         server.NewStreamableHTTPServer(mcpServer),
	})

	slog.Info("configuration",
		"auth_enabled", cfg.AuthEnabled,
		"jwt_expiry_hours", cfg.JWTExpiryHours,
		"embed_provider", cfg.EmbedProvider,
		"embed_dimensions", cfg.EmbedDimensions,
		"reranker_enabled", rerankerSvc.Enabled(),
		"llm_enabled", cfg.LLMEnabled,
		"guides", guideStore.Current().Len(),
		"guides_dir", cfg.GuidesDir,
		"guides_watch", cfg.GuidesWatch,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Addr(), "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(cancelCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// loadGuides reads GUIDES_DIR, or the bundled guides when it is unset.
func loadGuides(cfg *config.Config) (*guides.Store, error) {
	var fsys fs.FS = guides.Bundled()
	if cfg.GuidesDir != "" {
		fsys = os.DirFS(cfg.GuidesDir)
	}
	repo, err := guides.Load(fsys, cfg.GuideRawFileCap, guides.WithMaxFiles(cfg.GuideMaxFiles))
	if err != nil {
		return nil, err
	}
	if repo.Len() == 0 {
		slog.Warn("no leveling guides loaded", "guides_dir", cfg.GuidesDir)
	}
	return guides.NewStore(repo), nil
}

func newEmbedder(ctx context.Context, cfg *config.Config) (service.Embedder, error) {
	switch cfg.EmbedProvider {
	case config.EmbedProviderOpenAI:
		return service.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbedModel, cfg.EmbedDimensions), nil
	case config.EmbedProviderSidecar:
		return service.NewSidecarEmbedder(cfg.EmbedEndpoint, cfg.EmbedDimensions), nil
	case config.EmbedProviderGenAI:
		e, err := service.NewGenAIEmbedder(ctx, cfg.GenAIAPIKey, cfg.EmbedModel, cfg.EmbedDimensions)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embed provider %q", cfg.EmbedProvider)
	}
}
