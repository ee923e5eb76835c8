// Package site holds the process-wide site constants shared by every page:
// the default title, the navigation bar, head metadata, the lightbox asset
// block and the analytics snippet settings.
//
// A Site is loaded once at startup and must not be modified afterwards.
package site

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"winlame.sourceforge.net/winlame-web/internal/nav"
)

// ErrInvalidSite is returned when the site configuration fails validation.
var ErrInvalidSite = errors.New("site: invalid configuration")

//go:embed site.yaml
var defaultYAML []byte

// Site is the immutable constant table referenced by the layout.
type Site struct {
	DefaultTitle string      `yaml:"default_title"`
	Meta         Meta        `yaml:"meta"`
	Nav          []nav.Item  `yaml:"nav"`
	ExtraAssets  ExtraAssets `yaml:"extra_assets"`
	Analytics    Analytics   `yaml:"analytics"`
}

// Meta carries the document head metadata.
type Meta struct {
	Author   string `yaml:"author"`
	Keywords string `yaml:"keywords"`
	Favicon  string `yaml:"favicon"`
	Logo     string `yaml:"logo"`
}

// ExtraAssets lists the lightbox references emitted when a page asks for them.
type ExtraAssets struct {
	Scripts     []string `yaml:"scripts"`
	Stylesheets []string `yaml:"stylesheets"`
	GraphicsDir string   `yaml:"graphics_dir"`
}

// Analytics configures the optional Piwik tracking snippet.
type Analytics struct {
	Enabled    bool   `yaml:"enabled"`
	PiwikHTTP  string `yaml:"piwik_http"`
	PiwikHTTPS string `yaml:"piwik_https"`
	SiteID     int    `yaml:"site_id"`
}

// Default returns the site configuration compiled into the binary.
func Default() (*Site, error) {
	return Parse(defaultYAML)
}

// LoadFile reads a site configuration from path. An empty path selects the
// embedded default.
func LoadFile(path string) (*Site, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", path, err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("site: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML site configuration.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("site: parse: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Site) normalize() {
	s.DefaultTitle = strings.TrimSpace(s.DefaultTitle)
	for i := range s.Nav {
		s.Nav[i].Label = strings.TrimSpace(s.Nav[i].Label)
		s.Nav[i].Path = strings.TrimSpace(s.Nav[i].Path)
	}
	s.Analytics.PiwikHTTP = strings.TrimSpace(s.Analytics.PiwikHTTP)
	s.Analytics.PiwikHTTPS = strings.TrimSpace(s.Analytics.PiwikHTTPS)
}

// Validate checks the invariants the layout relies on.
func (s *Site) Validate() error {
	var errs []error
	if s.DefaultTitle == "" {
		errs = append(errs, errors.New("default_title is required"))
	}
	if len(s.Nav) == 0 {
		errs = append(errs, errors.New("nav needs at least one item"))
	}
	for i, it := range s.Nav {
		if it.Label == "" || it.Path == "" {
			errs = append(errs, fmt.Errorf("nav[%d] needs label and path", i))
		}
	}
	if len(s.ExtraAssets.Scripts) == 0 || len(s.ExtraAssets.Stylesheets) == 0 {
		errs = append(errs, errors.New("extra_assets needs scripts and stylesheets"))
	}
	if s.Analytics.Enabled && (s.Analytics.PiwikHTTP == "" || s.Analytics.PiwikHTTPS == "") {
		errs = append(errs, errors.New("analytics enabled without piwik base urls"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSite, errors.Join(errs...))
	}
	return nil
}

// Title resolves the heading for a page: empty means the default title.
func (s *Site) Title(requested string) string {
	if requested == "" {
		return s.DefaultTitle
	}
	return requested
}

// NavItems returns a copy of the configured navigation links.
func (s *Site) NavItems() []nav.Item {
	out := make([]nav.Item, len(s.Nav))
	copy(out, s.Nav)
	return out
}
