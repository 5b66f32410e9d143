//go:generate go run go.uber.org/mock/mockgen -source=identity.go -destination=../mocks/mock_identity_repository.go -package=mocks
package repositories

import (
	"chatroom/domain"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IIdentityRepository interface {
	FindByDevice(ip, device string) (domain.Identity, error)
	FindByID(id uuid.UUID) (domain.Identity, error)
	Save(identity domain.Identity) error
	SetOnline(id uuid.UUID, online bool) error
	SetBlacklisted(id uuid.UUID, blacklisted bool) error
	List(limit int) ([]domain.Identity, error)
}

type IdentityRepository struct {
	db *badger.DB
}

func NewIdentityRepository(db *badger.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Keys:
//
//	user:{uuid}              -> identity JSON
//	idx:userdev:{ip}|{device} -> uuid
//
// The secondary index makes re-login from the same (IP, device) pair hit
// the existing record instead of minting a duplicate.
func identityKey(id uuid.UUID) []byte {
	return []byte("user:" + id.String())
}

func deviceKey(ip, device string) []byte {
	return []byte(fmt.Sprintf("idx:userdev:%s|%s", ip, device))
}

// FindByDevice resolves the (IP, device) pair through the secondary index.
// Returns badger.ErrKeyNotFound when the pair has never logged in.
func (r IdentityRepository) FindByDevice(ip, device string) (domain.Identity, error) {
	var identity domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(deviceKey(ip, device))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err = item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}
		identity, err = getIdentity(txn, id)
		return err
	})
	return identity, err
}

func (r IdentityRepository) FindByID(id uuid.UUID) (domain.Identity, error) {
	var identity domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		identity, err = getIdentity(txn, id)
		return err
	})
	return identity, err
}

// Save writes the identity and its device index in a single transaction.
func (r IdentityRepository) Save(identity domain.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(identityKey(identity.ID), data); err != nil {
			return err
		}
		return txn.Set(deviceKey(identity.IP, identity.Device), []byte(identity.ID.String()))
	})
}

func (r IdentityRepository) SetOnline(id uuid.UUID, online bool) error {
	return r.mutate(id, func(identity *domain.Identity) {
		identity.IsOnline = online
	})
}

func (r IdentityRepository) SetBlacklisted(id uuid.UUID, blacklisted bool) error {
	return r.mutate(id, func(identity *domain.Identity) {
		identity.IsBlacklisted = blacklisted
	})
}

// List returns identities up to limit, most recently active first.
func (r IdentityRepository) List(limit int) ([]domain.Identity, error) {
	var identities []domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var identity domain.Identity
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &identity)
			})
			if err != nil {
				return err
			}
			identities = append(identities, identity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByLastActive(identities)
	if limit > 0 && len(identities) > limit {
		identities = identities[:limit]
	}
	return identities, nil
}

func (r IdentityRepository) mutate(id uuid.UUID, apply func(*domain.Identity)) error {
	return r.db.Update(func(txn *badger.Txn) error {
		identity, err := getIdentity(txn, id)
		if err != nil {
			return err
		}
		apply(&identity)
		identity.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(identity)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(identityKey(id), data)
	})
}

func getIdentity(txn *badger.Txn, id uuid.UUID) (domain.Identity, error) {
	var identity domain.Identity
	item, err := txn.Get(identityKey(id))
	if err != nil {
		return domain.Identity{}, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &identity)
	})
	return identity, err
}

func sortByLastActive(identities []domain.Identity) {
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].LastActiveAt.After(identities[j].LastActiveAt)
	})
}
