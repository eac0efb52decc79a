package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"MarketScanner/internal/aggregator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/infrastructure/content"
	"MarketScanner/internal/infrastructure/llm"
	"MarketScanner/internal/infrastructure/newsfeed"
	"MarketScanner/internal/infrastructure/scheduler"
	"MarketScanner/internal/infrastructure/storage"
	"MarketScanner/internal/logging"
	"MarketScanner/internal/ports"
	"MarketScanner/internal/provider"
	"MarketScanner/internal/reconcile"
	"MarketScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *storage.PostgresStore
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. Only providers with an API key
// configured are registered; a missing OpenAI key disables annotation for the
// whole run instead of failing per article.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	store := storage.NewPostgresStore(db)

	registry := provider.NewRegistry()
	registerProviders(registry, cfg.Providers)
	if registry.Len() == 0 {
		baseLogger.Warn("no news providers configured, refreshes will return nothing")
	}

	var annotator ports.Annotator
	completer, err := llm.NewOpenAICompleter(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.RPM, cfg.OpenAI.Burst)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		baseLogger.Warn("openai api key missing, annotation disabled for this run")
	} else if err != nil {
		db.Close()
		return nil, err
	} else {
		annotator = llm.NewAnnotator(completer, logging.Component(baseLogger, "annotator"))
	}

	var fetcher ports.ContentFetcher
	if cfg.Content.Enabled {
		fetcher = content.NewFetcher(nil, cfg.Content.MaxChars)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Aggregator: aggregator.New(registry, logging.Component(baseLogger, "aggregator")),
		Upserter:   reconcile.New(store),
		Annotator:  annotator,
		Fetcher:    fetcher,
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		store:    store,
		pipeline: pipeline,
	}, nil
}

// Run ensures the schema and refreshes every configured query. With a
// refresh interval configured it keeps running until the context is
// cancelled; otherwise it performs a single pass.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}

	if every := a.cfg.Refresh.IntervalDuration(); every > 0 {
		driver := scheduler.NewInterval(every)
		sched := usecase.NewScheduler(driver, a.pipeline, a.cfg.Refresh.Queries)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return sched.Stop(context.Background())
	}

	for _, query := range a.cfg.Refresh.Queries {
		articles, err := a.pipeline.RefreshArticles(ctx, query)
		if err != nil {
			return err
		}
		a.logger.Info("refresh complete", "query", query, "stored", len(articles))
	}
	return nil
}

func registerProviders(registry *provider.Registry, cfg config.ProviderConfig) {
	ttl := cfg.CacheTTLDuration()
	register := func(p ports.NewsProvider) {
		if ttl > 0 {
			p = provider.NewCached(p, ttl)
		}
		registry.Register(p)
	}

	if cfg.NewsAPI.APIKey != "" {
		register(newsfeed.NewNewsAPIClient(cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey, cfg.PageSize, nil))
	}
	if cfg.MediaStack.APIKey != "" {
		register(newsfeed.NewMediaStackClient(cfg.MediaStack.BaseURL, cfg.MediaStack.APIKey, cfg.PageSize, nil))
	}
	if cfg.Tavily.APIKey != "" {
		register(newsfeed.NewTavilyClient(cfg.Tavily.BaseURL, cfg.Tavily.APIKey, cfg.PageSize, nil))
	}
	if cfg.AlphaVantage.APIKey != "" {
		register(newsfeed.NewAlphaVantageClient(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, cfg.PageSize, nil))
	}
}
