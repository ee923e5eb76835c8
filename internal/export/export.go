// Package export writes the site as static HTML files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"winlame.sourceforge.net/winlame-web/internal/layout"
	"winlame.sourceforge.net/winlame-web/internal/pages"
)

// Exporter renders every page of a Set into a directory.
type Exporter struct {
	set      *pages.Set
	renderer *layout.Renderer
	assets   fs.FS
	logger   *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithAssets copies every file of fsys into the output next to the pages.
func WithAssets(fsys fs.FS) Option {
	return func(e *Exporter) { e.assets = fsys }
}

// WithLogger sets the logger used for per-file progress.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(set *pages.Set, renderer *layout.Renderer, opts ...Option) *Exporter {
	e := &Exporter{set: set, renderer: renderer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName is the output name of a page: index.html for the home page and
// <slug>.html for the rest.
func FileName(p pages.Page) string {
	if p.Route == "/" {
		return "index.html"
	}
	return p.Slug + ".html"
}

// Export renders all pages, points their internal links at the exported
// file names and writes them to dir. Every remaining page reference must
// name a written file; nothing is written when one does not.
func (e *Exporter) Export(ctx context.Context, dir string) ([]string, error) {
	type doc struct {
		name string
		body []byte
	}
	all := e.set.All()
	targets := Targets(e.set)
	files := make(map[string]bool, len(all))
	for _, p := range all {
		files[FileName(p)] = true
	}
	var (
		docs   []doc
		broken []error
	)
	for _, p := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := e.renderer.Render(p.Request(""), p.BodyFunc())
		if err != nil {
			return nil, fmt.Errorf("export: render %s: %w", p.Slug, err)
		}
		body, err = RewriteLinks(body, targets)
		if err != nil {
			return nil, fmt.Errorf("export: %s: %w", p.Slug, err)
		}
		if err := CheckLinks(files, p.Slug, body); err != nil {
			broken = append(broken, err)
		}
		docs = append(docs, doc{name: FileName(p), body: body})
	}
	if len(broken) > 0 {
		return nil, errors.Join(broken...)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}
	written := make([]string, 0, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := os.WriteFile(filepath.Join(dir, d.name), d.body, 0o644); err != nil {
			return written, fmt.Errorf("export: write %s: %w", d.name, err)
		}
		e.logger.Debug("wrote page", zap.String("file", d.name), zap.Int("bytes", len(d.body)))
		written = append(written, d.name)
	}
	if e.assets != nil {
		n, err := copyAssets(ctx, e.assets, dir)
		if err != nil {
			return written, err
		}
		e.logger.Debug("copied assets", zap.Int("files", n))
	}
	return written, nil
}

func copyAssets(ctx context.Context, fsys fs.FS, dir string) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(fsys, path, target); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("export: copy assets: %w", err)
	}
	return n, nil
}

func copyFile(fsys fs.FS, path, target string) error {
	src, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
