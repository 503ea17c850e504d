package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"FilmCatalog/internal/config"
	"FilmCatalog/internal/infrastructure/httpx"
	"FilmCatalog/internal/infrastructure/kv"
	"FilmCatalog/internal/infrastructure/parser"
	"FilmCatalog/internal/infrastructure/scheduler"
	"FilmCatalog/internal/infrastructure/storage"
	"FilmCatalog/internal/infrastructure/telegram"
	"FilmCatalog/internal/logging"
	"FilmCatalog/internal/playlist"
	"FilmCatalog/internal/ports"
	"FilmCatalog/internal/selection"
	"FilmCatalog/internal/usecase"
)

// Application wires configs to use cases and owns the opened store.
type Application struct {
	cfg       config.Config
	store     ports.KeyValueStore
	catalog   *usecase.Catalog
	menu      *selection.Menu
	refresher *usecase.Refresher
	logger    *slog.Logger
}

// New opens storage, builds the parser chain and initializes the catalog and menu.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := kv.Open(ctx, kv.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	app, err := build(ctx, cfg, store, baseLogger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg config.Config, store ports.KeyValueStore, baseLogger *slog.Logger) (*Application, error) {
	library := storage.NewLibrary(store, storage.Keys{
		Categories: cfg.Storage.CategoriesKey,
		Films:      cfg.Storage.FilmsKey,
	}, baseLogger.With("component", "library"))

	client, err := httpx.NewClient(httpx.Options{
		ProxyURL:  cfg.Parser.ProxyURL,
		Timeout:   cfg.Parser.TimeoutDuration(),
		RetryMax:  cfg.Parser.RetryMax,
		UserAgent: cfg.Parser.UserAgent,
		Logger:    baseLogger.With("component", "httpx"),
	})
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	registry := playlist.NewRegistry()
	registry.Register(parser.NewHTMLParser(client, baseLogger.With("component", "parser.html")))
	registry.Register(parser.NewJSONParser(client, baseLogger.With("component", "parser.json")))
	registry.Register(parser.NewPlaceholderParser(cfg.Parser.PlaceholderCount, cfg.Parser.PlaceholderDelayDuration()))

	if _, err := registry.Resolve(cfg.Parser.Default); err != nil {
		return nil, fmt.Errorf("default parser: %w", err)
	}
	source := parser.NewStrategySource(registry, cfg.Parser.Hosts, cfg.Parser.Default, baseLogger.With("component", "source"))

	catalog := usecase.NewCatalog(usecase.CatalogDeps{
		Library: library,
		Parser:  source,
		Logger:  baseLogger.With("component", "catalog"),
	})
	if err := catalog.Init(ctx); err != nil {
		return nil, err
	}

	menu := selection.NewMenu(store, selection.DefaultKeys(), baseLogger.With("component", "menu"))
	if err := menu.Load(ctx); err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	refresher := usecase.NewRefresher(usecase.RefresherDeps{
		Catalog:  catalog,
		Driver:   scheduler.NewTickerScheduler(cfg.Refresh.IntervalDuration()),
		Notifier: notifier,
		Logger:   baseLogger.With("component", "refresher"),
	})

	return &Application{
		cfg:       cfg,
		store:     store,
		catalog:   catalog,
		menu:      menu,
		refresher: refresher,
		logger:    baseLogger,
	}, nil
}

func (a *Application) Catalog() *usecase.Catalog     { return a.catalog }
func (a *Application) Menu() *selection.Menu         { return a.menu }
func (a *Application) Refresher() *usecase.Refresher { return a.refresher }
func (a *Application) Logger() *slog.Logger          { return a.logger }

// MenuDivergence compares the menu with the catalog's categories.
func (a *Application) MenuDivergence(ctx context.Context) (selection.Divergence, error) {
	categories, err := a.catalog.GetAllCategories(ctx)
	if err != nil {
		return selection.Divergence{}, err
	}
	return selection.Diff(a.menu.Categories(), categories), nil
}

// Watch runs periodic refreshes until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}
	<-ctx.Done()

	stopCtx := context.WithoutCancel(ctx)
	if err := a.refresher.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop refresher: %w", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// Close releases the storage backend.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
