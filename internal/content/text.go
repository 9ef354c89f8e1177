package content

import (
	"strings"
	"unicode/utf8"

	"github.com/inful/mdfp"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
)

const summaryLimit = 280

// titleFromBasename turns "my-first_post" into "My First Post".
func titleFromBasename(basename string) string {
	words := strings.FieldsFunc(basename, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	// Caser values are not safe for concurrent use.
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// plainText extracts collapsed text from an HTML fragment, truncated at limit runes.
func plainText(fragment string, limit int) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return truncate(strings.Join(strings.Fields(b.String()), " "), limit)
		case html.StartTagToken:
			if name, _ := z.TagName(); isSkipped(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isSkipped(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isSkipped(tag string) bool {
	return tag == "script" || tag == "style"
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit]), " ")
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// fingerprint hashes the attributes (as sorted YAML) together with the document body.
func fingerprint(attrs attributes.Attributes, body string) string {
	front := ""
	if len(attrs) > 0 {
		// yaml.v3 emits map keys in sorted order.
		if out, err := yaml.Marshal(map[string]any(attrs)); err == nil {
			front = strings.TrimSuffix(string(out), "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts(front, body)
}
