package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinkify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Bare http URL",
			input:    "see http://example.com now",
			expected: `see <a href="http://example.com" target="_blank" style="color: #007bff;">http://example.com</a> now`,
		},
		{
			name:     "https URL with path and query",
			input:    "https://example.com/a?b=1#c",
			expected: `<a href="https://example.com/a?b=1#c" target="_blank" style="color: #007bff;">https://example.com/a?b=1#c</a>`,
		},
		{
			name:     "URL stops at a quote",
			input:    `"http://example.com" quoted`,
			expected: `"<a href="http://example.com" target="_blank" style="color: #007bff;">http://example.com</a>" quoted`,
		},
		{
			name:     "No URL stays untouched",
			input:    "just words",
			expected: "just words",
		},
		{
			name:     "Two URLs in one message",
			input:    "http://a.example http://b.example",
			expected: `<a href="http://a.example" target="_blank" style="color: #007bff;">http://a.example</a> <a href="http://b.example" target="_blank" style="color: #007bff;">http://b.example</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Linkify(tt.input))
		})
	}
}

// The anchor's visible text must recover the original URL byte for byte.
func TestLinkify_RoundTrip(t *testing.T) {
	req := require.New(t)
	original := "http://example.com"
	linked := Linkify("hello " + original)

	visible := regexp.MustCompile(`>([^<]+)</a>`).FindStringSubmatch(linked)
	req.Len(visible, 2)
	req.Equal(original, visible[1])
}
