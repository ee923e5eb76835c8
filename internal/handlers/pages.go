// Package handlers serves the content pages over HTTP.
package handlers

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"winlame.sourceforge.net/winlame-web/internal/cache"
	"winlame.sourceforge.net/winlame-web/internal/layout"
	"winlame.sourceforge.net/winlame-web/internal/observability"
	"winlame.sourceforge.net/winlame-web/internal/pages"
)

// Pages renders pages from a Set through the shared layout. Rendered
// documents are kept in the cache, which may be nil.
type Pages struct {
	set      *pages.Set
	renderer *layout.Renderer
	cache    *cache.PageCache
}

func NewPages(set *pages.Set, renderer *layout.Renderer, c *cache.PageCache) *Pages {
	return &Pages{set: set, renderer: renderer, cache: c}
}

// Routes lists the routes of every page in navigation order.
func (h *Pages) Routes() []string {
	all := h.set.All()
	out := make([]string, 0, len(all))
	for _, p := range all {
		out = append(out, p.Route)
	}
	return out
}

// ServeHTTP serves the page registered at the request path.
func (h *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, err := h.set.Lookup(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	entry, err := h.entry(page)
	if err != nil {
		observability.FromContext(r.Context()).Error("render page",
			zap.String("slug", page.Slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", entry.ETag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == entry.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(entry.Body)
}

func (h *Pages) entry(page pages.Page) (cache.Entry, error) {
	if e, ok := h.cache.Get(page.Route); ok {
		return e, nil
	}
	body, err := h.renderer.Render(page.Request(""), page.BodyFunc())
	if err != nil {
		return cache.Entry{}, err
	}
	e := cache.NewEntry(body)
	h.cache.Set(page.Route, e)
	return e, nil
}

// Redirect is a permanent move from one path to another.
type Redirect struct {
	From string
	To   string
}

// LegacyRedirects returns the old "<slug>.php" URLs sorted by source path.
func LegacyRedirects(set *pages.Set) []Redirect {
	legacy := set.LegacyRoutes()
	out := make([]Redirect, 0, len(legacy))
	for from, to := range legacy {
		out = append(out, Redirect{From: from, To: to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// RedirectTo answers with a 301 to target, keeping the query string.
func RedirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		to := target
		if r.URL.RawQuery != "" {
			to += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, to, http.StatusMovedPermanently)
	}
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
