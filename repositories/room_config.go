//go:generate go run go.uber.org/mock/mockgen -source=room_config.go -destination=../mocks/mock_room_config_repository.go -package=mocks
package repositories

import (
	"chatroom/domain"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type IRoomConfigRepository interface {
	Get() (domain.RoomConfig, error)
	Save(config domain.RoomConfig) error
}

type RoomConfigRepository struct {
	db *badger.DB
}

func NewRoomConfigRepository(db *badger.DB) *RoomConfigRepository {
	return &RoomConfigRepository{db: db}
}

var roomConfigKey = []byte("config:room")

// Get returns the singleton room configuration. A store that was never
// configured reads as an always-open room.
func (r RoomConfigRepository) Get() (domain.RoomConfig, error) {
	config := domain.RoomConfig{Mode: domain.ModeOpen}
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomConfigKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &config)
		})
	})
	return config, err
}

func (r RoomConfigRepository) Save(config domain.RoomConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomConfigKey, data)
	})
}
