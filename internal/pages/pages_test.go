package pages

import (
	"io/fs"
	"path"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"winlame.sourceforge.net/winlame-web/internal/layout"
	"winlame.sourceforge.net/winlame-web/internal/site"
)

func defaultSet(t *testing.T) *Set {
	t.Helper()

	s, err := Default()
	require.NoError(t, err)
	return s
}

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestDefaultSetHasSixPagesInOrder(t *testing.T) {
	t.Parallel()

	all := defaultSet(t).All()
	type row struct {
		slug, route, title string
		extra              bool
	}
	got := make([]row, 0, len(all))
	for _, p := range all {
		require.Equal(t, FormatHTML, p.Format, p.Slug)
		got = append(got, row{p.Slug, p.Route, p.Title, p.ExtraAssets})
	}
	require.Equal(t, []row{
		{"index", "/", "", false},
		{"archive", "/archive", "", false},
		{"download", "/download", "winLAME download", false},
		{"features", "/features", "winLAME features", false},
		{"faq", "/faq", "winLAME FAQ", false},
		{"screenshots", "/screenshots", "winLAME screenshots", true},
	}, got)
}

func TestDefaultLoadsEveryEmbeddedContentFile(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(embeddedContent, "content/*")
	require.NoError(t, err)
	var slugs []string
	for _, name := range names {
		if ext := path.Ext(name); ext == ".html" || ext == ".md" {
			slugs = append(slugs, strings.TrimSuffix(path.Base(name), ext))
		}
	}
	require.Len(t, slugs, len(defaultSet(t).All()))
	for _, slug := range slugs {
		_, err := defaultSet(t).BySlug(slug)
		require.NoError(t, err, slug)
	}
}

func TestLookupAndBySlug(t *testing.T) {
	t.Parallel()

	s := defaultSet(t)
	p, err := s.Lookup("/faq")
	require.NoError(t, err)
	require.Equal(t, "faq", p.Slug)

	p, err = s.BySlug("Download")
	require.NoError(t, err)
	require.Equal(t, "/download", p.Route)

	_, err = s.Lookup("/missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.BySlug("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHomeBody(t *testing.T) {
	t.Parallel()

	p, err := defaultSet(t).Lookup("/")
	require.NoError(t, err)
	body := string(p.Body)
	require.True(t, strings.HasPrefix(body, "<h2>About winLAME</h2>"))
	require.Contains(t, body, "2011-xx-xx - winLAME 2011 release candidate 1 released")
	require.Contains(t, body, `<a href="archive.php">archive section</a>`)
}

func TestFAQPairsInSourceOrder(t *testing.T) {
	t.Parallel()

	p, err := defaultSet(t).Lookup("/faq")
	require.NoError(t, err)
	body := string(p.Body)

	questions := []string{
		"Q: In the latest winLAME version you can't choose the stereo mode",
		"Q: How can I encode/decode AAC files?",
		"Q: Can I copy a newer lame_enc.dll into winLAME's folder to update the LAME version?",
		"Q: Is there a possibility to encode multiple albums with winLAME?",
		"Q: Where can I file a bug report?",
	}
	require.Equal(t, len(questions), strings.Count(body, "Q:"))
	require.Equal(t, len(questions), strings.Count(body, "A:"))

	prev := -1
	for i, q := range questions {
		at := strings.Index(body, q)
		require.Greater(t, at, prev, "question %d out of order", i)
		answer := strings.Index(body[at:], "A:")
		require.Positive(t, answer, "question %d has no answer", i)
		if i+1 < len(questions) {
			next := strings.Index(body, questions[i+1])
			require.Less(t, at+answer, next, "answer %d must precede the next question", i)
		}
		prev = at
	}
}

func TestScreenshotsBodyKeepsGallery(t *testing.T) {
	t.Parallel()

	p, err := defaultSet(t).Lookup("/screenshots")
	require.NoError(t, err)
	doc := parseHTML(t, string(p.Body))

	links := doc.Find(`a.highslide`)
	require.Equal(t, 6, links.Length(), "commented-out rows are not part of the gallery")
	require.Equal(t, "screenshots/input.png", links.First().AttrOr("href", ""))
	require.Equal(t, "return hs.expand(this)", links.First().AttrOr("onclick", ""))
	require.Contains(t, string(p.Body), "<!--tr>", "source comments are kept verbatim")
}

func TestDownloadLinksVerbatim(t *testing.T) {
	t.Parallel()

	p, err := defaultSet(t).Lookup("/download")
	require.NoError(t, err)
	body := string(p.Body)
	for _, href := range []string{
		"http://prdownloads.sourceforge.net/winlame/winLAME-2010-beta2.msi?download",
		"http://prdownloads.sourceforge.net/winlame/winLAME-2010-beta2-source.zip?download",
		"http://sourceforge.net/project/showfiles.php?group_id=21193",
		"http://winlame.cvs.sourceforge.net/viewvc/winlame/winlame/ChangeLog?view=markup",
	} {
		require.Contains(t, body, `href="`+href+`"`)
	}
}

func TestLegacyRoutes(t *testing.T) {
	t.Parallel()

	require.Equal(t, map[string]string{
		"/index.php":       "/",
		"/archive.php":     "/archive",
		"/download.php":    "/download",
		"/features.php":    "/features",
		"/faq.php":         "/faq",
		"/screenshots.php": "/screenshots",
	}, defaultSet(t).LegacyRoutes())
}

func TestRequestCarriesLayoutParameters(t *testing.T) {
	t.Parallel()

	s := defaultSet(t)
	shots, err := s.Lookup("/screenshots")
	require.NoError(t, err)
	req := shots.Request("")
	require.Equal(t, layout.PageRequest{
		Title:              "winLAME screenshots",
		IncludeExtraAssets: true,
		Path:               "/screenshots",
		Description:        "Screenshots of winLAME.",
	}, req)

	home, err := s.Lookup("/")
	require.NoError(t, err)
	require.Empty(t, home.Request("/").Title)
	require.False(t, home.Request("/").IncludeExtraAssets)
}

func TestAllPagesRenderThroughLayout(t *testing.T) {
	t.Parallel()

	cfg, err := site.Default()
	require.NoError(t, err)
	r, err := layout.New(cfg)
	require.NoError(t, err)

	var navs []string
	for _, p := range defaultSet(t).All() {
		out, err := r.Render(p.Request(""), p.BodyFunc())
		require.NoError(t, err, p.Slug)
		again, err := r.Render(p.Request(""), p.BodyFunc())
		require.NoError(t, err)
		require.Equal(t, out, again, "%s must render identically twice", p.Slug)

		doc := parseHTML(t, string(out))
		require.Equal(t, cfg.Title(p.Title), doc.Find("h1").Text(), p.Slug)
		require.Equal(t, 1, strings.Count(string(out), "<!DOCTYPE"))
		require.Equal(t, 1, strings.Count(string(out), "</html>"))
		require.Equal(t, p.ExtraAssets, strings.Contains(string(out), "highslide.packed.js"), p.Slug)
		require.Equal(t, p.ExtraAssets, strings.Contains(string(out), "highslide.css"), p.Slug)

		var links []string
		doc.Find("body > div > div:nth-of-type(2) a").Each(func(_ int, s *goquery.Selection) {
			links = append(links, s.Text()+"="+s.AttrOr("href", ""))
		})
		navs = append(navs, strings.Join(links, "|"))
	}
	require.Len(t, navs, 6)
	for _, n := range navs[1:] {
		require.Equal(t, navs[0], n)
	}
}

func TestLoadMarkdownPage(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"changelog.md": {Data: []byte(`---
title: winLAME ChangeLog
summary: Changes <em>per</em> release &amp; more
---
# 2010 beta 2

* Fixed renaming output files
<script>alert(1)</script>
`)},
	}
	s, err := Load(fsys)
	require.NoError(t, err)
	p, err := s.Lookup("/changelog")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, p.Format)
	require.Contains(t, string(p.Body), "<h1>2010 beta 2</h1>")
	require.Contains(t, string(p.Body), "<li>Fixed renaming output files</li>")
	require.NotContains(t, string(p.Body), "<script>")
	require.Equal(t, "Changes per release & more", p.Description())
}

func TestLoadRejectsBadContent(t *testing.T) {
	t.Parallel()

	cases := map[string]fstest.MapFS{
		"bad yaml": {
			"a.html": {Data: []byte("---\ntitle: [oops\n---\n<p>x</p>\n")},
		},
		"unknown format": {
			"a.html": {Data: []byte("---\nformat: rst\n---\n<p>x</p>\n")},
		},
		"empty body": {
			"a.html": {Data: []byte("---\ntitle: x\n---\n\n")},
		},
		"relative route": {
			"a.html": {Data: []byte("---\nroute: faq\n---\n<p>x</p>\n")},
		},
		"duplicate route": {
			"a.html": {Data: []byte("---\nroute: /x\n---\n<p>a</p>\n")},
			"b.html": {Data: []byte("---\nroute: /x\n---\n<p>b</p>\n")},
		},
		"no pages": {
			"notes.txt": {Data: []byte("ignored")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fsys)
			require.ErrorIs(t, err, ErrInvalidPage)
		})
	}
}

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	fm, body := splitFrontMatter("---\ntitle: x\n---\n\n<p>body</p>\n")
	require.Equal(t, "title: x", fm)
	require.Equal(t, "<p>body</p>\n", body)

	fm, body = splitFrontMatter("<p>no front matter</p>")
	require.Empty(t, fm)
	require.Equal(t, "<p>no front matter</p>", body)

	fm, body = splitFrontMatter("---\nunterminated")
	require.Empty(t, fm)
	require.Equal(t, "---\nunterminated", body)
}
