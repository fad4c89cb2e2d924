package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"vulncomics/internal/comic"
	"vulncomics/internal/gateway/config"
	"vulncomics/internal/gateway/handler"
	"vulncomics/internal/gateway/middleware"
	"vulncomics/internal/gateway/server"
	"vulncomics/internal/llm"
	"vulncomics/internal/osv"
	"vulncomics/internal/pipeline"
	"vulncomics/internal/story"
	"vulncomics/internal/storyboard"
)

type App struct {
	server *server.Server
	llm    llm.Client
	stores *gatewayStores
	log    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.Env)
	slog.SetDefault(logger)

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	stores, err := initStores(cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	osvClient := osv.NewClient(
		osv.WithURL(cfg.OSV.URL),
		osv.WithTimeout(cfg.OSV.Timeout),
		osv.WithLogger(logger),
	)
	svc, err := pipeline.New(pipeline.Deps{
		Scanner:  osv.NewScanner(osvClient, cfg.OSV.Concurrency, logger),
		Stories:  story.NewGenerator(client, logger),
		Planner:  storyboard.NewPlanner(client, logger),
		Renderer: comic.NewRenderer(client, stores.pages, cfg.FrontendURL, comic.WithLogger(logger)),
		Index:    stores.index,
		Logger:   logger,
	}, pipeline.Config{
		MaxActive:      cfg.Limits.MaxActiveStories,
		MaxHistorical:  cfg.Limits.MaxHistoricalStories,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
	})
	if err != nil {
		_ = client.Close()
		_ = stores.Close()
		return nil, err
	}

	h := handler.New(svc, handler.Options{
		Version:        cfg.Version,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		FilesDir:       stores.filesDir,
		Logger:         logger,
	})
	mux := middleware.RequestID(middleware.AccessLog(logger, middleware.CORS([]string{cfg.FrontendURL}, h.Routes())))

	logger.Info("app_initialized", "env", cfg.Env, "version", cfg.Version, "llm", client.Name(), "storage", cfg.Storage.Mode)
	return &App{
		server: server.New(cfg.Port, mux, logger),
		llm:    client,
		stores: stores,
		log:    logger,
	}, nil
}

// newLLMClient builds the model client with logging, retry and rate limiting.
// Retry sits outside the limiter so every attempt waits its turn.
func newLLMClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	var inner llm.Client
	if cfg.LLM.Fake {
		logger.Warn("llm_fake_enabled")
		inner = llm.NewFakeClient()
	} else {
		g, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.TextModel, cfg.LLM.ImageModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		inner = g
	}
	return llm.Wrap(inner,
		llm.WithLogging(logger),
		llm.Retry(llm.DefaultPolicy()),
		llm.RateLimit(cfg.LLM.RPM, cfg.LLM.Burst),
	), nil
}

// NewLogger emits JSON outside local development.
func NewLogger(level, env string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(env, "local") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.stores.Close(), a.llm.Close())
}
