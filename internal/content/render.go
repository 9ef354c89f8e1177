package content

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// DocumentData is the context a source document template executes with.
type DocumentData struct {
	Attributes attributes.Attributes
	Basename   string
	Link       string
	Site       config.SiteConfig
}

type executor interface {
	Execute(w io.Writer, data any) error
}

var documentFuncs = map[string]any{
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// documentRenderer compiles one source document and converts it to HTML.
type documentRenderer struct {
	format config.Format
	md     goldmark.Markdown
}

func newDocumentRenderer(format config.Format) *documentRenderer {
	return &documentRenderer{
		format: format,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func (r *documentRenderer) compile(name, src string) (executor, error) {
	if r.format == config.FormatHTML {
		return htmltemplate.New(name).Funcs(htmltemplate.FuncMap(documentFuncs)).Parse(src)
	}
	return texttemplate.New(name).Funcs(texttemplate.FuncMap(documentFuncs)).Parse(src)
}

// render executes src as a template with data and returns HTML.
func (r *documentRenderer) render(name, src string, data DocumentData) (htmltemplate.HTML, error) {
	tmpl, err := r.compile(name, src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	if r.format == config.FormatHTML {
		// #nosec G203 -- output of the author's own template
		return htmltemplate.HTML(out.String()), nil
	}
	var html bytes.Buffer
	if err := r.md.Convert(out.Bytes(), &html); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarkdown, err)
	}
	// #nosec G203 -- goldmark output of the author's own markdown
	return htmltemplate.HTML(html.String()), nil
}
