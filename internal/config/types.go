package config

import "git.home.luguber.info/inful/blogbuilder/internal/foundation/normalization"

// Format selects how rendered document templates are turned into HTML.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var formatNormalizer = normalization.New(map[string]Format{
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"html":     FormatHTML,
	"htm":      FormatHTML,
})

// NormalizeFormat canonicalizes user input; unknown values yield "".
func NormalizeFormat(raw string) Format {
	return formatNormalizer.Normalize(raw)
}

// Extension returns the source file extension conventionally used by the format.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

// DatePolicy decides what happens to a date attribute that cannot be parsed.
type DatePolicy string

const (
	// DatePolicyError rejects the document.
	DatePolicyError DatePolicy = "error"
	// DatePolicyEpoch keeps the document with timestamp 0 and logs a warning.
	DatePolicyEpoch DatePolicy = "epoch"
)

var datePolicyNormalizer = normalization.New(map[string]DatePolicy{
	"error":  DatePolicyError,
	"strict": DatePolicyError,
	"epoch":  DatePolicyEpoch,
	"zero":   DatePolicyEpoch,
})

// NormalizeDatePolicy canonicalizes user input; unknown values yield "".
func NormalizeDatePolicy(raw string) DatePolicy {
	return datePolicyNormalizer.Normalize(raw)
}

// Collection naming presets.
const (
	PresetArticles = "articles"
	PresetPosts    = "posts"
)

// documentTemplateFor returns the default document layout for a collection name.
func documentTemplateFor(name string) string {
	switch name {
	case PresetArticles:
		return "article.html"
	case PresetPosts:
		return "post.html"
	default:
		return "document.html"
	}
}
