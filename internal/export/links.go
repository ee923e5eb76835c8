package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"winlame.sourceforge.net/winlame-web/internal/pages"
)

// ErrBrokenLink reports a reference to a page that is not part of the export.
var ErrBrokenLink = errors.New("export: broken link")

var assetExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".css": true, ".js": true, ".zip": true, ".msi": true,
}

// Targets maps every local path that reaches a page (its route and its
// legacy "<slug>.php" URL) to the exported file name.
func Targets(set *pages.Set) map[string]string {
	out := map[string]string{}
	for _, p := range set.All() {
		out[p.Route] = FileName(p)
	}
	for legacy, route := range set.LegacyRoutes() {
		if name, ok := out[route]; ok {
			out[legacy] = name
		}
	}
	return out
}

// RewriteLinks replaces href and src values that reach a page with the
// page's exported file name. Fragments are kept, query strings dropped.
// Everything else in doc is copied byte for byte.
func RewriteLinks(doc []byte, targets map[string]string) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(doc))
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("export: parse: %w", err)
			}
			return out.Bytes(), nil
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			for _, a := range tagRefs(z) {
				p, frag, ok := localPage(a)
				if !ok {
					continue
				}
				name, ok := targets[p]
				if !ok {
					continue
				}
				if frag != "" {
					name += "#" + frag
				}
				raw = replaceAttrValue(raw, a, name)
			}
		}
		out.WriteString(raw)
	}
}

// CheckLinks verifies that every local page reference in doc names one of
// files.
func CheckLinks(files map[string]bool, slug string, doc []byte) error {
	var broken []error
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("export: parse %s: %w", slug, err)
			}
			return errors.Join(broken...)
		case html.StartTagToken, html.SelfClosingTagToken:
			for _, ref := range tagRefs(z) {
				p, _, ok := localPage(ref)
				if ok && !files[strings.TrimPrefix(p, "/")] {
					broken = append(broken, fmt.Errorf("%w: %s -> %s", ErrBrokenLink, slug, ref))
				}
			}
		}
	}
}

func tagRefs(z *html.Tokenizer) []string {
	var refs []string
	for {
		key, val, more := z.TagAttr()
		if k := string(key); k == "href" || k == "src" {
			refs = append(refs, string(val))
		}
		if !more {
			return refs
		}
	}
}

// localPage returns the site path of ref when it points at a page.
func localPage(ref string) (string, string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return "", "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", "", false
	}
	p := u.Path
	if p == "" || assetExt[strings.ToLower(path.Ext(p))] {
		return "", "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p), u.Fragment, true
}

// replaceAttrValue swaps the first quoted occurrence of old in a raw tag.
func replaceAttrValue(raw, old, repl string) string {
	for _, q := range []string{`"`, `'`} {
		needle := "=" + q + old + q
		if strings.Contains(raw, needle) {
			return strings.Replace(raw, needle, "="+q+repl+q, 1)
		}
	}
	return raw
}
