// Package pages holds the site's content pages. Each page is a file under
// content/ with YAML front matter followed by its body markup.
package pages

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"winlame.sourceforge.net/winlame-web/internal/layout"
)

var (
	// ErrNotFound is returned when no page matches a route or slug.
	ErrNotFound = errors.New("pages: not found")
	// ErrInvalidPage is returned when a content file cannot be loaded.
	ErrInvalidPage = errors.New("pages: invalid page")
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

//go:embed content/*
var embeddedContent embed.FS

// Page is a single content page: its layout parameters and body.
type Page struct {
	Slug        string
	Route       string
	Title       string
	Summary     string
	Format      string
	Order       int
	ExtraAssets bool
	Body        template.HTML
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Route       string `yaml:"route"`
	Order       int    `yaml:"order"`
	Format      string `yaml:"format"`
	Summary     string `yaml:"summary"`
	ExtraAssets bool   `yaml:"extra_assets"`
}

// Request builds the layout request for rendering the page at path.
func (p Page) Request(currentPath string) layout.PageRequest {
	if currentPath == "" {
		currentPath = p.Route
	}
	return layout.PageRequest{
		Title:              p.Title,
		IncludeExtraAssets: p.ExtraAssets,
		Path:               currentPath,
		Description:        p.Description(),
	}
}

// Description returns the summary as plain text for the meta description.
func (p Page) Description() string {
	return plainText(p.Summary)
}

// BodyFunc returns the page body as a layout body producer.
func (p Page) BodyFunc() layout.BodyFunc {
	return layout.HTMLBody(p.Body)
}

// Set is the immutable collection of loaded pages.
type Set struct {
	pages   []Page
	byRoute map[string]int
	bySlug  map[string]int
}

// Default loads the pages compiled into the binary.
func Default() (*Set, error) {
	sub, err := fs.Sub(embeddedContent, "content")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every .html and .md file at the root of fsys. Any malformed
// file or duplicate route fails the whole load.
func Load(fsys fs.FS) (*Set, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("pages: read content: %w", err)
	}
	s := &Set{byRoute: map[string]int{}, bySlug: map[string]int{}}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if ext != ".html" && ext != ".md" {
			continue
		}
		raw, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("pages: read %s: %w", e.Name(), err)
		}
		page, err := parsePage(strings.TrimSuffix(e.Name(), ext), ext, string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPage, e.Name(), err)
		}
		if _, dup := s.bySlug[page.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidPage, page.Slug)
		}
		if _, dup := s.byRoute[page.Route]; dup {
			return nil, fmt.Errorf("%w: duplicate route %q", ErrInvalidPage, page.Route)
		}
		s.bySlug[page.Slug] = len(s.pages)
		s.byRoute[page.Route] = len(s.pages)
		s.pages = append(s.pages, page)
	}
	if len(s.pages) == 0 {
		return nil, fmt.Errorf("%w: no pages found", ErrInvalidPage)
	}
	sort.SliceStable(s.pages, func(i, j int) bool {
		if s.pages[i].Order == s.pages[j].Order {
			return s.pages[i].Slug < s.pages[j].Slug
		}
		return s.pages[i].Order < s.pages[j].Order
	})
	for i, p := range s.pages {
		s.bySlug[p.Slug] = i
		s.byRoute[p.Route] = i
	}
	return s, nil
}

func parsePage(slug, ext, raw string) (Page, error) {
	fm, body := splitFrontMatter(raw)
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("parse front matter: %w", err)
		}
	}
	page := Page{
		Slug:        slug,
		Route:       strings.TrimSpace(front.Route),
		Title:       front.Title,
		Summary:     strings.TrimSpace(front.Summary),
		Format:      strings.ToLower(strings.TrimSpace(front.Format)),
		Order:       front.Order,
		ExtraAssets: front.ExtraAssets,
	}
	if page.Format == "" {
		page.Format = FormatHTML
		if ext == ".md" {
			page.Format = FormatMarkdown
		}
	}
	if page.Route == "" {
		page.Route = defaultRoute(slug)
	}
	if !strings.HasPrefix(page.Route, "/") {
		return Page{}, fmt.Errorf("route %q must be absolute", page.Route)
	}
	if strings.TrimSpace(body) == "" {
		return Page{}, errors.New("empty body")
	}
	switch page.Format {
	case FormatHTML:
		// trusted site content, emitted verbatim
		page.Body = template.HTML(body)
	case FormatMarkdown:
		out, err := markdownToHTML(body)
		if err != nil {
			return Page{}, fmt.Errorf("render markdown: %w", err)
		}
		page.Body = out
	default:
		return Page{}, fmt.Errorf("unknown format %q", page.Format)
	}
	return page, nil
}

func defaultRoute(slug string) string {
	if slug == "index" {
		return "/"
	}
	return "/" + slug
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

// All returns the pages in navigation order.
func (s *Set) All() []Page {
	out := make([]Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Lookup finds the page served at route.
func (s *Set) Lookup(route string) (Page, error) {
	if i, ok := s.byRoute[route]; ok {
		return s.pages[i], nil
	}
	return Page{}, ErrNotFound
}

// BySlug finds a page by its file name without extension.
func (s *Set) BySlug(slug string) (Page, error) {
	if i, ok := s.bySlug[strings.ToLower(strings.TrimSpace(slug))]; ok {
		return s.pages[i], nil
	}
	return Page{}, ErrNotFound
}

// LegacyRoutes maps the historical "<slug>.php" URLs to current routes.
func (s *Set) LegacyRoutes() map[string]string {
	out := make(map[string]string, len(s.pages))
	for _, p := range s.pages {
		out["/"+p.Slug+".php"] = p.Route
	}
	return out
}
