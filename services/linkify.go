package services

import (
	"regexp"
)

// urlPattern grabs http(s) tokens up to the next whitespace or quote.
var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// Linkify wraps bare URLs in clickable anchors. The visible text stays
// the original URL, so stripping the markup recovers the input.
func Linkify(text string) string {
	return urlPattern.ReplaceAllString(text,
		`<a href="$0" target="_blank" style="color: #007bff;">$0</a>`)
}
