package content

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/attributes"
)

var moreMarker = regexp.MustCompile(`(?m)^[ \t]*//-[ \t]*more[ \t]*\r?$`)

// splitMore cuts src at the first "//- more" line. found is false when there is no marker.
func splitMore(src string) (before, after string, found bool) {
	loc := moreMarker.FindStringIndex(src)
	if loc == nil {
		return src, "", false
	}
	return src[:loc[0]], src[loc[1]:], true
}

// stripMarkerLines drops every "//-" line, including attribute lines and the more marker.
func stripMarkerLines(src string) string {
	lines := strings.SplitAfter(src, "\n")
	var b strings.Builder
	b.Grow(len(src))
	for _, line := range lines {
		if attributes.IsMarkerLine(strings.TrimRight(line, "\r\n")) {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
