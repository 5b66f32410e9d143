// Package moderation holds the sensitive-word machinery: an in-memory
// Aho-Corasick cache read by the message pipeline and the store facade
// used by the admin surface.
package moderation

import (
	"log/slog"
	"sync/atomic"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Cache is the process-wide sensitive-word set. The pipeline reads it on
// every message without touching the store; mutations rebuild the matcher
// and swap it in atomically, so readers never see a half-built set.
type Cache struct {
	log     *slog.Logger
	matcher atomic.Pointer[matcher]
}

type matcher struct {
	machine *goahocorasick.Machine
	words   []string
}

func NewCache(log *slog.Logger) *Cache {
	c := &Cache{log: log}
	c.matcher.Store(&matcher{})
	return c
}

// Refresh rebuilds the matcher from the given word set. Matching is
// case-sensitive on the raw runes: the stored token must appear verbatim.
func (c *Cache) Refresh(words []string) error {
	next := &matcher{words: words}
	if len(words) > 0 {
		patterns := make([][]rune, len(words))
		for i, word := range words {
			patterns[i] = []rune(word)
		}
		machine := new(goahocorasick.Machine)
		if err := machine.Build(patterns); err != nil {
			return err
		}
		next.machine = machine
	}
	c.matcher.Store(next)
	c.log.Debug("Sensitive word cache refreshed", "words", len(words))
	return nil
}

// Scan reports the leftmost sensitive word contained in the content.
func (c *Cache) Scan(content string) (string, bool) {
	m := c.matcher.Load()
	if m.machine == nil {
		return "", false
	}
	terms := m.machine.MultiPatternSearch([]rune(content), false)
	if len(terms) == 0 {
		return "", false
	}
	first := terms[0]
	for _, term := range terms[1:] {
		if term.Pos < first.Pos {
			first = term
		}
	}
	return string(first.Word), true
}

// Size reports how many words the current matcher carries.
func (c *Cache) Size() int {
	return len(c.matcher.Load().words)
}
