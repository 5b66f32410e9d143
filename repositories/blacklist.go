//go:generate go run go.uber.org/mock/mockgen -source=blacklist.go -destination=../mocks/mock_blacklist_repository.go -package=mocks
package repositories

import (
	"chatroom/domain"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IBlacklistRepository interface {
	Add(entry domain.BlacklistEntry) error
	Get(id uuid.UUID) (domain.BlacklistEntry, error)
	Remove(id uuid.UUID) error
	List() ([]domain.BlacklistEntry, error)
}

type BlacklistRepository struct {
	db *badger.DB
}

func NewBlacklistRepository(db *badger.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

func blacklistKey(id uuid.UUID) []byte {
	return []byte("black:" + id.String())
}

func (r BlacklistRepository) Add(entry domain.BlacklistEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blacklistKey(entry.ID), data)
	})
}

func (r BlacklistRepository) Get(id uuid.UUID) (domain.BlacklistEntry, error) {
	var entry domain.BlacklistEntry
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blacklistKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	return entry, err
}

// Remove deletes the entry; removing an unknown entry is not an error.
func (r BlacklistRepository) Remove(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(blacklistKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// List returns entries newest first.
func (r BlacklistRepository) List() ([]domain.BlacklistEntry, error) {
	var entries []domain.BlacklistEntry
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("black:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.BlacklistEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
