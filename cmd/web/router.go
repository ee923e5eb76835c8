package main

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"winlame.sourceforge.net/winlame-web/internal/handlers"
	mw "winlame.sourceforge.net/winlame-web/internal/middleware"
)

type app struct {
	pages  *handlers.Pages
	legacy []handlers.Redirect
	assets fs.FS
	logger *zap.Logger
	// tracer nil selects the global otel provider
	tracer trace.TracerProvider
}

var assetRoutes = []string{"/highslide/*", "/screenshots/*", "/note.png", "/favicon.ico"}

func newRouter(a app) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chiMid.RealIP)
	r.Use(mw.Trace(a.tracer))
	r.Use(mw.Logger(a.logger))
	r.Use(chiMid.Recoverer)
	r.Use(mw.SecureHeaders)
	r.Use(chiMid.Compress(5))
	r.Use(chiMid.Timeout(30 * time.Second))

	r.Get("/healthz", handlers.Healthz)

	if a.assets != nil {
		assets := mw.AssetsWithCache(a.assets)
		for _, p := range assetRoutes {
			r.Method(http.MethodGet, p, assets)
			r.Method(http.MethodHead, p, assets)
		}
	}

	for _, route := range a.pages.Routes() {
		r.Method(http.MethodGet, route, a.pages)
		r.Method(http.MethodHead, route, a.pages)
	}
	for _, rd := range a.legacy {
		redirect := handlers.RedirectTo(rd.To)
		r.Method(http.MethodGet, rd.From, redirect)
		r.Method(http.MethodHead, rd.From, redirect)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return r
}
