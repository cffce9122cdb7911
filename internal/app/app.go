package app

import (
	"context"
	"fmt"

	"mtengine/internal/archive"
	"mtengine/internal/config"
	"mtengine/internal/logger"
	httpapi "mtengine/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App assembles the process: configuration, archive, engine service and
// HTTP transport.
type App struct {
	cfg  *config.Config
	svc  *Service
	http *httpapi.Server
	arch *archive.Store
}

// NewApp builds the application from its configuration without starting
// anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	arch, err := archive.New(cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("opening archive failed: %w", err)
	}

	svc := NewService(cfg.Engine, arch, nil)

	httpSrv, err := httpapi.NewServer(cfg.Server.Addr, svc)
	if err != nil {
		_ = arch.Close()
		return nil, fmt.Errorf("building http server failed: %w", err)
	}

	return &App{cfg: cfg, svc: svc, http: httpSrv, arch: arch}, nil
}

// Service exposes the engine core, mainly for tests and replay tooling.
func (a *App) Service() *Service {
	if a == nil {
		return nil
	}
	return a.svc
}

// Run starts the engine loop and the HTTP server and blocks until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	logger.Infof("starting engine (addr=%s archive=%s)", a.cfg.Server.Addr, a.cfg.Archive.Path)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.svc.Run(ctx)
	})

	err := group.Wait()
	if cerr := a.arch.Close(); cerr != nil {
		logger.Warnf("closing archive failed: %v", cerr)
	}
	return err
}
