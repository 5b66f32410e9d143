package moderation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_Scan(t *testing.T) {
	req := require.New(t)
	cache := NewCache(slog.Default())
	req.NoError(cache.Refresh([]string{"badger", "snake"}))

	tests := []struct {
		name  string
		input string
		word  string
		found bool
	}{
		{
			name:  "Word as substring",
			input: "the badgers are out",
			word:  "badger",
			found: true,
		},
		{
			name:  "Leftmost match wins",
			input: "snake before badger",
			word:  "snake",
			found: true,
		},
		{
			name:  "Case sensitive, no match on different case",
			input: "the BADGER is loud",
			found: false,
		},
		{
			name:  "Clean content",
			input: "nothing to see here",
			found: false,
		},
		{
			name:  "Empty content",
			input: "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, found := cache.Scan(tt.input)
			require.Equal(t, tt.found, found)
			require.Equal(t, tt.word, word)
		})
	}
}

func TestCache_RefreshReplacesTheWholeSet(t *testing.T) {
	req := require.New(t)
	cache := NewCache(slog.Default())

	req.NoError(cache.Refresh([]string{"old"}))
	_, found := cache.Scan("an old word")
	req.True(found)

	req.NoError(cache.Refresh([]string{"new"}))
	_, found = cache.Scan("an old word")
	req.False(found)
	_, found = cache.Scan("a new word")
	req.True(found)
	req.Equal(1, cache.Size())
}

func TestCache_EmptySetMatchesNothing(t *testing.T) {
	req := require.New(t)
	cache := NewCache(slog.Default())

	req.NoError(cache.Refresh(nil))
	_, found := cache.Scan("anything at all")
	req.False(found)
}
