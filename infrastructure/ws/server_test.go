package ws

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceFromUserAgent(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", "Windows"},
		{"mac desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15", "Mac"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iPhone"},
		{"android", "Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0", "Android"},
		{"linux desktop", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0", "Linux"},
		{"empty", "", "Other"},
		{"curl", "curl/8.4.0", "Other"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, deviceFromUserAgent(tc.userAgent))
		})
	}
}

func TestClientIP(t *testing.T) {
	t.Run("prefers first forwarded hop", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", clientIP(r))
	})

	t.Run("single forwarded address", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		assert.Equal(t, "203.0.113.9", clientIP(r))
	})

	t.Run("falls back to peer address", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.RemoteAddr = "192.0.2.4:51234"
		assert.Equal(t, "192.0.2.4", clientIP(r))
	})
}
