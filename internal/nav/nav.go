package nav

import (
	"net/url"
	"strings"
)

// Item represents a top-level navigation link.
type Item struct {
	Path  string `yaml:"path"` // e.g. "/download" or an absolute external URL
	Label string `yaml:"label"`
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	Label    string
	Active   bool
	External bool
}

// Build renders navigation items with active state given the current path.
// The order and targets of items are never changed.
func Build(items []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		external := IsExternal(it.Path)
		out = append(out, RenderedItem{
			Href:     it.Path,
			Label:    it.Label,
			Active:   !external && isActive(it.Path, currentPath),
			External: external,
		})
	}
	return out
}

// IsExternal reports whether href points off-site.
func IsExternal(href string) bool {
	if strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/faq" or "/faq/..."
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}
