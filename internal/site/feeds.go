package site

import (
	"bytes"
	"context"
	"encoding/xml"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

const (
	FeedFile    = "feed.xml"
	SitemapFile = "sitemap.xml"
	generator   = "blogbuilder"
	sitemapNS   = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

// ErrNoBaseURL means feeds were requested without site.base_url.
var ErrNoBaseURL = ferrors.ValidationError("feeds require site.base_url").Warning().Build()

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	Generator     string    `xml:"generator"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// RenderFeeds writes feed.xml (newest limit records) and sitemap.xml into outDir.
func RenderFeeds(ctx context.Context, outDir string, props Props, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := props.Site.BaseURL
	if base == "" {
		return ErrNoBaseURL
	}

	feed, err := encodeXML(buildRSS(props, limit))
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(outDir, FeedFile), feed); err != nil {
		return err
	}

	sitemap, err := encodeXML(buildSitemap(props))
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(outDir, SitemapFile), sitemap)
}

func buildRSS(props Props, limit int) rssXML {
	base := props.Site.BaseURL
	records := props.Records
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	items := make([]rssItem, 0, len(records))
	for _, rec := range records {
		link := AbsURL(base, rec.Link)
		item := rssItem{
			Title:       rec.Title,
			Link:        link,
			Description: rec.Summary,
			Author:      rec.Attributes.String("author"),
			Categories:  rec.Tags,
			GUID:        link,
		}
		if rec.Timestamp != 0 {
			item.PubDate = rec.Time().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         props.Site.Title,
			Link:          AbsURL(base, "/"),
			Description:   props.Site.Description,
			Language:      props.Site.Language,
			Generator:     generator,
			LastBuildDate: props.BuildTime.Format(time.RFC1123Z),
			Items:         items,
		},
	}
}

func buildSitemap(props Props) sitemapURLSet {
	base := props.Site.BaseURL
	urls := make([]sitemapURL, 0, 1+len(props.Pages)+len(props.Records))
	urls = append(urls, sitemapURL{Loc: AbsURL(base, "/")})
	for _, p := range props.Pages {
		urls = append(urls, sitemapURL{Loc: AbsURL(base, p.Link)})
	}
	for _, rec := range props.Records {
		u := sitemapURL{Loc: AbsURL(base, rec.Link)}
		if rec.Timestamp != 0 || !rec.Updated.IsZero() {
			u.LastMod = rec.LastModified().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return sitemapURLSet{XMLNS: sitemapNS, URLs: urls}
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode xml").Fatal().Build()
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
