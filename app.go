package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"skillpath_quiz/data"
	"skillpath_quiz/internal/config"
	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/logger"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/internal/storage"
	"skillpath_quiz/internal/storage/sqlite"
)

// app owns the long-lived pieces shared by every command.
type app struct {
	cfg     *config.Config
	content *content.Store
	service *quiz.Service
	closers []func() error
}

// contentFS returns the content root: the embedded bundle, or ContentDir
// laid out the same way.
func contentFS(cfg config.ContentConfig) fs.FS {
	if cfg.ContentDir == "" {
		return data.FS
	}
	return os.DirFS(cfg.ContentDir)
}

func loadContent(ctx context.Context, cfg config.ContentConfig) (*content.Store, error) {
	root := contentFS(cfg)
	catalog, err := config.LoadCatalog(root, cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	scenes, err := fs.Sub(root, data.ScenesDir)
	if err != nil {
		return nil, fmt.Errorf("open scenes directory: %w", err)
	}
	return content.Load(ctx, scenes, catalog)
}

// newApp loads content and connects the configured stores.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := loadContent(ctx, cfg.Content)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, content: store}
	progress, locker, err := a.progressBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	results, err := a.resultsBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = quiz.NewService(core.NewEngine(store), progress, results, locker)
	logger.Info().
		Str("progress", cfg.Progress.Backend).
		Str("results", cfg.Results.Backend).
		Msg("quiz service ready")
	return a, nil
}

func (a *app) progressBackend(ctx context.Context) (storage.ProgressStore, storage.Locker, error) {
	if a.cfg.Progress.Backend != "redis" {
		return storage.NewMemoryProgressStore(), storage.NewKeyedLocker(), nil
	}
	client, err := storage.NewRedisClient(ctx, a.cfg.Progress.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, client.Close)
	return storage.NewRedisProgressStore(client, a.cfg.Progress.SessionTTL),
		storage.NewRedisLocker(client, a.cfg.Progress.LockTTL), nil
}

func (a *app) resultsBackend(ctx context.Context) (storage.ResultStore, error) {
	switch a.cfg.Results.Backend {
	case "file":
		return storage.NewFileResultStore(a.cfg.Results.Dir), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(a.cfg.Results.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		db, err := sqlite.Open(ctx, a.cfg.Results.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return storage.NewMemoryResultStore(), nil
	}
}

// Close releases backend connections in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// setup reads configuration and initializes the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}
