package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"winlame.sourceforge.net/winlame-web/internal/cache"
	"winlame.sourceforge.net/winlame-web/internal/handlers"
	"winlame.sourceforge.net/winlame-web/internal/layout"
	"winlame.sourceforge.net/winlame-web/internal/observability"
	"winlame.sourceforge.net/winlame-web/internal/pages"
	"winlame.sourceforge.net/winlame-web/internal/site"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		logger.Fatal("parse flags", zap.Error(err))
	}

	a, closeApp, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("build site", zap.Error(err))
	}
	defer closeApp()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("web listening", zap.String("addr", cfg.Addr), zap.Bool("dev", cfg.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("web stopped")
}

// buildApp loads site configuration, pages and layout. In dev mode templates
// are reparsed per request and the page cache is off.
func buildApp(cfg config, logger *zap.Logger) (app, func(), error) {
	s, err := site.LoadFile(cfg.SitePath)
	if err != nil {
		return app{}, nil, err
	}
	if cfg.Analytics != nil {
		s.Analytics.Enabled = *cfg.Analytics
	}

	var opts []layout.Option
	if cfg.Dev {
		opts = append(opts, layout.WithTemplateDir(cfg.TemplatesDir))
	}
	renderer, err := layout.New(s, opts...)
	if err != nil {
		return app{}, nil, err
	}
	set, err := pages.Default()
	if err != nil {
		return app{}, nil, err
	}

	var pc *cache.PageCache
	if !cfg.Dev {
		pc, err = cache.New(cfg.CacheCost)
		if err != nil {
			return app{}, nil, err
		}
	}

	a := app{
		pages:  handlers.NewPages(set, renderer, pc),
		legacy: handlers.LegacyRedirects(set),
		logger: logger,
	}
	if cfg.PublicDir != "" {
		if info, err := os.Stat(cfg.PublicDir); err == nil && info.IsDir() {
			a.assets = os.DirFS(cfg.PublicDir)
		} else {
			logger.Warn("public directory not found, assets disabled", zap.String("dir", cfg.PublicDir))
		}
	}
	return a, pc.Close, nil
}
