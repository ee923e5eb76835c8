// Package layout renders the shared page frame: a header parameterised by a
// PageRequest, the caller's body and a structural footer.
package layout

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"

	"winlame.sourceforge.net/winlame-web/internal/nav"
	"winlame.sourceforge.net/winlame-web/internal/site"
)

// ErrNoBody is returned when RenderPage is called without a body producer.
var ErrNoBody = errors.New("layout: missing body")

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// PageRequest is the per-render parameter bundle.
type PageRequest struct {
	// Title is the page heading. Empty selects the site default title.
	Title string
	// IncludeExtraAssets emits the lightbox script/stylesheet block.
	IncludeExtraAssets bool
	// Path marks the active navigation item; it changes nothing else.
	Path string
	// Description fills the optional meta description tag.
	Description string
}

// BodyFunc writes a page body between header and footer.
type BodyFunc func(w io.Writer) error

// HTMLBody adapts trusted markup to a BodyFunc.
func HTMLBody(body template.HTML) BodyFunc {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, string(body))
		return err
	}
}

type headerData struct {
	DocumentTitle string
	Heading       string
	Description   string
	Meta          site.Meta
	Nav           []nav.RenderedItem
	Analytics     *site.Analytics
	ExtraAssets   *site.ExtraAssets
}

// Renderer composes pages from the shared header and footer templates.
// It is safe for concurrent use.
type Renderer struct {
	site *site.Site
	tmpl *template.Template
	// dir, when set, is reparsed on every render (dev mode).
	dir string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplateDir loads templates from dir instead of the embedded copies and
// reparses them on every render.
func WithTemplateDir(dir string) Option {
	return func(r *Renderer) {
		r.dir = strings.TrimSpace(dir)
	}
}

// New parses the layout templates. A parse failure or a missing header/footer
// definition is returned here rather than at render time.
func New(s *site.Site, opts ...Option) (*Renderer, error) {
	if s == nil {
		return nil, errors.New("layout: nil site")
	}
	r := &Renderer{site: s}
	for _, opt := range opts {
		opt(r)
	}
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.tmpl = t
	return r, nil
}

// Site returns the configuration the renderer was built with.
func (r *Renderer) Site() *site.Site { return r.site }

func (r *Renderer) parse() (*template.Template, error) {
	var fsys fs.FS = embeddedTemplates
	pattern := "templates/*.tmpl"
	if r.dir != "" {
		fsys = os.DirFS(r.dir)
		pattern = "*.tmpl"
	}
	t, err := template.New("_root").ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("layout: parse templates: %w", err)
	}
	for _, name := range []string{"header", "footer"} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("layout: template %q not defined", name)
		}
	}
	return t, nil
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.dir != "" {
		return r.parse()
	}
	return r.tmpl, nil
}

func (r *Renderer) headerData(req PageRequest) headerData {
	d := headerData{
		DocumentTitle: r.site.DefaultTitle,
		Heading:       r.site.Title(req.Title),
		Description:   req.Description,
		Meta:          r.site.Meta,
		Nav:           nav.Build(r.site.NavItems(), req.Path),
	}
	if r.site.Analytics.Enabled {
		a := r.site.Analytics
		d.Analytics = &a
	}
	if req.IncludeExtraAssets {
		ea := r.site.ExtraAssets
		d.ExtraAssets = &ea
	}
	return d
}

// RenderHeader writes the document preamble through the opening of the
// content band.
func (r *Renderer) RenderHeader(w io.Writer, req PageRequest) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	if err := t.ExecuteTemplate(w, "header", r.headerData(req)); err != nil {
		return fmt.Errorf("layout: header: %w", err)
	}
	return nil
}

// RenderFooter writes the closing markup balancing RenderHeader.
func (r *Renderer) RenderFooter(w io.Writer) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	if err := t.ExecuteTemplate(w, "footer", nil); err != nil {
		return fmt.Errorf("layout: footer: %w", err)
	}
	return nil
}

// RenderPage writes header, body and footer to w.
func (r *Renderer) RenderPage(w io.Writer, req PageRequest, body BodyFunc) error {
	if body == nil {
		return ErrNoBody
	}
	if err := r.RenderHeader(w, req); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return fmt.Errorf("layout: body: %w", err)
	}
	return r.RenderFooter(w)
}

// Render returns the complete document for req and body.
func (r *Renderer) Render(req PageRequest, body BodyFunc) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderPage(&buf, req, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
