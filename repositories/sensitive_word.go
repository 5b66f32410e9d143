//go:generate go run go.uber.org/mock/mockgen -source=sensitive_word.go -destination=../mocks/mock_sensitive_word_repository.go -package=mocks
package repositories

import (
	"chatroom/domain"
	"chatroom/errors"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type ISensitiveWordRepository interface {
	Add(word domain.SensitiveWord) error
	Remove(id uuid.UUID) error
	Words() ([]string, error)
	List() ([]domain.SensitiveWord, error)
}

type SensitiveWordRepository struct {
	db *badger.DB
}

func NewSensitiveWordRepository(db *badger.DB) *SensitiveWordRepository {
	return &SensitiveWordRepository{db: db}
}

// Keys:
//
//	word:{word}        -> sensitive word JSON
//	idx:wordid:{uuid}  -> word
//
// Keying by the word itself gives case-sensitive uniqueness for free;
// the id index exists so the admin surface can delete by id.
func wordKey(word string) []byte {
	return []byte("word:" + word)
}

func wordIDKey(id uuid.UUID) []byte {
	return []byte("idx:wordid:" + id.String())
}

// Add persists a new word. An exact duplicate yields ErrDuplicateWord.
func (r SensitiveWordRepository) Add(word domain.SensitiveWord) error {
	data, err := json.Marshal(word)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(wordKey(word.Word)); err == nil {
			return errors.ErrDuplicateWord
		}
		if err := txn.Set(wordKey(word.Word), data); err != nil {
			return err
		}
		return txn.Set(wordIDKey(word.ID), []byte(word.Word))
	})
}

// Remove deletes the word by id; unknown ids are a no-op.
func (r SensitiveWordRepository) Remove(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(wordIDKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var word []byte
		if err = item.Value(func(val []byte) error {
			word = append([]byte{}, val...)
			return nil
		}); err != nil {
			return err
		}
		if err = txn.Delete(wordKey(string(word))); err != nil {
			return err
		}
		return txn.Delete(wordIDKey(id))
	})
}

// Words returns just the tokens, the shape the in-memory cache consumes.
func (r SensitiveWordRepository) Words() ([]string, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(all))
	for _, w := range all {
		words = append(words, w.Word)
	}
	return words, nil
}

// List returns words newest first for the admin surface.
func (r SensitiveWordRepository) List() ([]domain.SensitiveWord, error) {
	var words []domain.SensitiveWord
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("word:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var word domain.SensitiveWord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &word)
			})
			if err != nil {
				return err
			}
			words = append(words, word)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(words, func(i, j int) bool {
		return words[i].CreatedAt.After(words[j].CreatedAt)
	})
	return words, nil
}
