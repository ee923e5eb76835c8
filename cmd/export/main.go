// Command export renders the site into a directory of static HTML files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"winlame.sourceforge.net/winlame-web/internal/export"
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

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logger.Fatal("parse flags", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	written, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("export", zap.Error(err))
	}
	logger.Info("export complete", zap.String("dir", cfg.Out), zap.Strings("files", written))
}

func run(ctx context.Context, cfg config, logger *zap.Logger) ([]string, error) {
	s, err := site.LoadFile(cfg.SitePath)
	if err != nil {
		return nil, err
	}
	renderer, err := layout.New(s)
	if err != nil {
		return nil, err
	}
	set, err := pages.Default()
	if err != nil {
		return nil, err
	}

	opts := []export.Option{export.WithLogger(logger)}
	if cfg.PublicDir != "" {
		info, err := os.Stat(cfg.PublicDir)
		if err != nil {
			return nil, fmt.Errorf("public directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("public directory: %s is not a directory", cfg.PublicDir)
		}
		opts = append(opts, export.WithAssets(os.DirFS(cfg.PublicDir)))
	}
	return export.New(set, renderer, opts...).Export(ctx, cfg.Out)
}
