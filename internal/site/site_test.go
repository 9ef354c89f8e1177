package site

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/pagination"
)

var testTemplates = map[string]string{
	"partials/head.html": `{{ define "head" }}<title>{{ .Site.Title }}</title><link href="{{ asset "/site.css" }}">{{ end }}`,
	"article.html":       `{{ template "head" . }}<h1>{{ .Record.Title }}</h1>{{ .Record.Body }}<a class="next" href="{{ .Record.NextLink }}">n</a><a class="prev" href="{{ .Record.PrevLink }}">p</a><time>{{ formatDate "2006-01-02" .Record.Time }}</time>`,
	"page.html":          `{{ template "head" . }}page {{ .Page.Number }} of {{ len .Pages }}:{{ range .Page.Records }} {{ .Link }}{{ end }} next={{ .Page.NextLink }} prev={{ .Page.PrevLink }}`,
	"index.html":         `{{ template "head" . }}index:{{ range .Page.Records }} {{ .Link }}{{ end }} {{ absURL "/feed.xml" }}`,
}

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Site: config.SiteConfig{Title: "Test & Blog", BaseURL: "https://blog.example.com", Description: "d"},
	}
	require.NoError(t, config.ApplyDefaults(cfg))
	return cfg
}

func testRecords() []*content.Record {
	newer := &content.Record{
		Basename: "newer", Link: "/articles/newer", Title: "Newer",
		Timestamp: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Body:      "<p>new body</p>", Summary: "new body", Tags: []string{"go"},
	}
	older := &content.Record{
		Basename: "older", Link: "/articles/older", Title: "Older",
		Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Body:      "<p>old body</p>", Summary: "old body",
	}
	recs := []*content.Record{older, newer}
	content.Sort(recs)
	content.Thread(recs)
	return recs
}

func newTestRenderer(t *testing.T, cfg *config.Config, tmplDir string) (*Renderer, string) {
	t.Helper()
	out := t.TempDir()
	r, err := NewRenderer(Options{
		TemplatesDir:  tmplDir,
		Templates:     cfg.Templates,
		OutputDir:     out,
		CollectionDir: cfg.Collection.OutputDir,
		Site:          cfg.Site,
		CacheBuster:   "tok en",
	})
	require.NoError(t, err)
	return r, out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRenderer_EndToEndTwoDocuments(t *testing.T) {
	cfg := testConfig(t)
	r, out := newTestRenderer(t, cfg, writeTemplates(t, testTemplates))
	records := testRecords()
	pages := pagination.Paginate(records, cfg.Collection.PageSize)
	props := NewProps(cfg, records, pages, "tok en", "")
	ctx := context.Background()

	n, err := r.RenderDocuments(ctx, props)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = r.RenderPages(ctx, props)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, r.RenderIndex(ctx, props))

	older := readFile(t, filepath.Join(out, "articles", "older.html"))
	assert.Contains(t, older, `<title>Test &amp; Blog</title>`)
	assert.Contains(t, older, `<link href="/site.css?v=tok&#43;en">`)
	assert.Contains(t, older, "<h1>Older</h1><p>old body</p>")
	assert.Contains(t, older, `class="next" href="/articles/newer"`)
	assert.Contains(t, older, `class="prev" href=""`)
	assert.Contains(t, older, "<time>2020-01-01</time>")

	newer := readFile(t, filepath.Join(out, "articles", "newer.html"))
	assert.Contains(t, newer, `class="prev" href="/articles/older"`)

	page := readFile(t, filepath.Join(out, "pages", "0.html"))
	assert.Contains(t, page, "page 1 of 1: /articles/newer /articles/older next= prev=")

	index := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, "index: /articles/newer /articles/older")
	assert.Contains(t, index, "https://blog.example.com/feed.xml")

	info, err := os.Stat(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRenderer_EmptySiteStillHasIndexAndFirstPage(t *testing.T) {
	cfg := testConfig(t)
	r, out := newTestRenderer(t, cfg, writeTemplates(t, testTemplates))
	props := NewProps(cfg, nil, pagination.Paginate(nil, 5), "", "")

	n, err := r.RenderDocuments(context.Background(), props)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = r.RenderPages(context.Background(), props)
	require.NoError(t, err)
	require.NoError(t, r.RenderIndex(context.Background(), props))

	assert.FileExists(t, filepath.Join(out, "pages", "0.html"))
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.NotEmpty(t, props.CacheBuster)
}

func TestRenderer_ManyPages(t *testing.T) {
	cfg := testConfig(t)
	r, out := newTestRenderer(t, cfg, writeTemplates(t, testTemplates))

	var records []*content.Record
	for i := 0; i < 11; i++ {
		name := "p" + string(rune('a'+i))
		records = append(records, &content.Record{Basename: name, Link: "/articles/" + name, Timestamp: int64(100 - i)})
	}
	content.Thread(records)
	props := NewProps(cfg, records, pagination.Paginate(records, 5), "x", "")

	n, err := r.RenderPages(context.Background(), props)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, readFile(t, filepath.Join(out, "pages", "1.html")), "next=/ prev=/pages/2")
	assert.Contains(t, readFile(t, filepath.Join(out, "pages", "2.html")), "next=/pages/1 prev=")
}

func TestNewRenderer_TemplateErrors(t *testing.T) {
	cfg := testConfig(t)

	t.Run("missing layout", func(t *testing.T) {
		files := map[string]string{"page.html": "p", "index.html": "i"}
		_, err := NewRenderer(Options{TemplatesDir: writeTemplates(t, files), Templates: cfg.Templates})
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	})

	t.Run("syntax error", func(t *testing.T) {
		files := map[string]string{"article.html": "{{ if }}", "page.html": "p", "index.html": "i"}
		_, err := NewRenderer(Options{TemplatesDir: writeTemplates(t, files), Templates: cfg.Templates})
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	})
}

func TestRenderer_ExecutionErrorAborts(t *testing.T) {
	cfg := testConfig(t)
	files := map[string]string{
		"article.html": "{{ .Record.Nope }}",
		"page.html":    "p",
		"index.html":   "i",
	}
	r, _ := newTestRenderer(t, cfg, writeTemplates(t, files))
	records := testRecords()
	props := NewProps(cfg, records, pagination.Paginate(records, 5), "x", "")

	_, err := r.RenderDocuments(context.Background(), props)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
}

func TestRenderer_CanceledContext(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRenderer(t, cfg, writeTemplates(t, testTemplates))
	records := testRecords()
	props := NewProps(cfg, records, pagination.Paginate(records, 5), "x", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderDocuments(ctx, props)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, r.RenderIndex(ctx, props), context.Canceled)
}

func TestRenderFeeds(t *testing.T) {
	cfg := testConfig(t)
	out := t.TempDir()
	records := testRecords()
	records[1].Updated = time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	props := NewProps(cfg, records, pagination.Paginate(records, 5), "x", "")

	require.NoError(t, RenderFeeds(context.Background(), out, props, 1))

	var feed rssXML
	require.NoError(t, xml.Unmarshal([]byte(readFile(t, filepath.Join(out, FeedFile))), &feed))
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "Test & Blog", feed.Channel.Title)
	assert.Equal(t, "https://blog.example.com/", feed.Channel.Link)
	require.Len(t, feed.Channel.Items, 1)
	item := feed.Channel.Items[0]
	assert.Equal(t, "Newer", item.Title)
	assert.Equal(t, "https://blog.example.com/articles/newer", item.Link)
	assert.Equal(t, "new body", item.Description)
	assert.Equal(t, []string{"go"}, item.Categories)
	assert.Equal(t, "Sat, 01 Feb 2020 00:00:00 +0000", item.PubDate)

	sitemapXML := readFile(t, filepath.Join(out, SitemapFile))
	assert.True(t, strings.HasPrefix(sitemapXML, xml.Header))
	var sitemap sitemapURLSet
	require.NoError(t, xml.Unmarshal([]byte(sitemapXML), &sitemap))
	var locs []string
	for _, u := range sitemap.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Equal(t, []string{
		"https://blog.example.com/",
		"https://blog.example.com/pages/0",
		"https://blog.example.com/articles/newer",
		"https://blog.example.com/articles/older",
	}, locs)
	assert.Equal(t, "2020-02-01", sitemap.URLs[2].LastMod)
	assert.Equal(t, "2022-03-04", sitemap.URLs[3].LastMod)
}

func TestRenderFeeds_RequiresBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.BaseURL = ""
	props := NewProps(cfg, nil, pagination.Paginate(nil, 5), "x", "")

	err := RenderFeeds(context.Background(), t.TempDir(), props, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBaseURL)
	assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityWarning))
}

func TestCopyStatic(t *testing.T) {
	src := writeTemplates(t, map[string]string{
		"css/site.css":   "body{}",
		"img/logo.svg":   "<svg/>",
		"robots.txt":     "User-agent: *",
		"deep/a/b/c.txt": "c",
	})
	dst := t.TempDir()

	n, err := CopyStatic(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "body{}", readFile(t, filepath.Join(dst, "css", "site.css")))
	assert.Equal(t, "c", readFile(t, filepath.Join(dst, "deep", "a", "b", "c.txt")))

	n, err = CopyStatic(context.Background(), filepath.Join(src, "missing"), dst)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = CopyStatic(context.Background(), filepath.Join(src, "robots.txt"), dst)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestAbsURL(t *testing.T) {
	cases := []struct{ base, link, want string }{
		{"https://example.com", "/articles/a", "https://example.com/articles/a"},
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com/blog", "/pages/1", "https://example.com/blog/pages/1"},
		{"", "/articles/a", "/articles/a"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AbsURL(c.base, c.link))
	}
}

func TestFuncMap(t *testing.T) {
	funcs := funcMap(config.SiteConfig{BaseURL: "https://example.com"}, "v1")

	asset := funcs["asset"].(func(string) string)
	assert.Equal(t, "/site.css?v=v1", asset("/site.css"))
	assert.Equal(t, "/site.css?x=1&v=v1", asset("/site.css?x=1"))

	attr := funcs["attr"].(func(*content.Record, string) string)
	rec := &content.Record{Attributes: attributes.Attributes{"author": "ann"}}
	assert.Equal(t, "ann", attr(rec, "author"))
	assert.Empty(t, attr(rec, "missing"))
	assert.Empty(t, attr(nil, "author"))

	formatDate := funcs["formatDate"].(func(string, time.Time) string)
	assert.Empty(t, formatDate("2006", time.Time{}))
	assert.Equal(t, "2020", formatDate("2006", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}
