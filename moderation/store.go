package moderation

import (
	"chatroom/domain"
	"chatroom/errors"
	"chatroom/repositories"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Store is the moderation facade: sensitive words and the blacklist.
// Every mutation keeps the in-memory cache and the denormalized
// is_blacklisted flag consistent before returning.
type Store struct {
	words      repositories.ISensitiveWordRepository
	identities repositories.IIdentityRepository
	blacklist  repositories.IBlacklistRepository
	cache      *Cache
	log        *slog.Logger
}

func NewStore(
	words repositories.ISensitiveWordRepository,
	identities repositories.IIdentityRepository,
	blacklist repositories.IBlacklistRepository,
	cache *Cache,
	log *slog.Logger,
) *Store {
	return &Store{
		words:      words,
		identities: identities,
		blacklist:  blacklist,
		cache:      cache,
		log:        log,
	}
}

// LoadCache primes the word cache from the store, typically at boot.
func (s *Store) LoadCache() error {
	words, err := s.words.Words()
	if err != nil {
		return err
	}
	return s.cache.Refresh(words)
}

// AddWord persists a new sensitive word and refreshes the cache.
// The exact token must not already exist (case-sensitive).
func (s *Store) AddWord(raw string) (domain.SensitiveWord, error) {
	word := strings.TrimSpace(raw)
	if word == "" {
		return domain.SensitiveWord{}, errors.ErrEmptyWord
	}
	entry := domain.SensitiveWord{
		ID:        uuid.New(),
		Word:      word,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.words.Add(entry); err != nil {
		return domain.SensitiveWord{}, err
	}
	return entry, s.LoadCache()
}

// RemoveWord deletes a word by id and refreshes the cache. Unknown ids
// are a no-op, the cache still gets refreshed.
func (s *Store) RemoveWord(id uuid.UUID) error {
	if err := s.words.Remove(id); err != nil {
		return err
	}
	return s.LoadCache()
}

func (s *Store) ListWords() ([]domain.SensitiveWord, error) {
	return s.words.List()
}

// Blacklist flags the identity and records the durable entry. Both writes
// happen before returning so the flag is never observed out of sync.
func (s *Store) Blacklist(userID uuid.UUID, reason string) (domain.BlacklistEntry, error) {
	if _, err := s.identities.FindByID(userID); err != nil {
		if err == badger.ErrKeyNotFound {
			return domain.BlacklistEntry{}, errors.ErrUnknownIdentity
		}
		return domain.BlacklistEntry{}, err
	}
	if err := s.identities.SetBlacklisted(userID, true); err != nil {
		return domain.BlacklistEntry{}, err
	}
	entry := domain.BlacklistEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.blacklist.Add(entry); err != nil {
		return domain.BlacklistEntry{}, err
	}
	s.log.Info("Identity blacklisted", "user_id", userID, "reason", reason)
	return entry, nil
}

// Unblacklist clears the flag on the referenced identity and deletes the
// entry. An entry whose identity has vanished is still removed.
func (s *Store) Unblacklist(entryID uuid.UUID) error {
	entry, err := s.blacklist.Get(entryID)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err = s.identities.SetBlacklisted(entry.UserID, false); err != nil && err != badger.ErrKeyNotFound {
		return err
	}
	return s.blacklist.Remove(entryID)
}

func (s *Store) ListBlacklist() ([]domain.BlacklistEntry, error) {
	return s.blacklist.List()
}
