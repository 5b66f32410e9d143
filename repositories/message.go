//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chatroom/domain"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	Recent(n int) ([]domain.Message, error)
	LastByUser(userID uuid.UUID) (domain.Message, error)
	List(limit int) ([]domain.Message, error)
	SoftDelete(id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db     *badger.DB
	writer *bluge.Writer
	log    *slog.Logger
}

// NewMessageRepository builds the message store. The bluge writer is
// optional: without it messages are still persisted, only the admin
// full-text search goes dark.
func NewMessageRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, writer: writer, log: log}
}

// Keys:
//
//	msg:{timestamp_padded}:{uuid}         -> message JSON
//	idx:usermsg:{user_uuid}:{timestamp}   -> primary key
//	idx:msgid:{uuid}                      -> primary key
//
// The 19-digit zero padding keeps lexicographical order equal to
// chronological order; the UUID suffix disambiguates two messages landing
// on the same nanosecond. The per-user index serves the rate-limit lookup
// without scanning the whole log.
func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%019d:%s", message.At.UnixNano(), message.ID))
}

func userMessageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("idx:usermsg:%s:%019d", message.UserID, message.At.UnixNano()))
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte("idx:msgid:" + id.String())
}

func (m MessageRepository) Store(message domain.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	primary := messageKey(message)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, data); err != nil {
			return err
		}
		if err := txn.Set(userMessageKey(message), primary); err != nil {
			return err
		}
		return txn.Set(messageIDKey(message.ID), primary)
	})
	if err != nil {
		return err
	}
	m.index(message)
	return nil
}

// Recent returns the latest n non-deleted messages in chronological order,
// the shape a freshly logged-in client expects.
func (m MessageRepository) Recent(n int) ([]domain.Message, error) {
	messages, err := m.scanNewestFirst(n)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(messages), nil
}

// List returns the latest non-deleted messages, newest first, for the
// admin surface.
func (m MessageRepository) List(limit int) ([]domain.Message, error) {
	return m.scanNewestFirst(limit)
}

// LastByUser fetches the sender's most recent non-deleted message via the
// per-user index. Returns badger.ErrKeyNotFound when the user never posted.
func (m MessageRepository) LastByUser(userID uuid.UUID) (domain.Message, error) {
	var message domain.Message
	found := false
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("idx:usermsg:" + userID.String() + ":")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the highest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var primary []byte
			err := it.Item().Value(func(val []byte) error {
				primary = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return err
			}
			msg, err := getMessage(txn, primary)
			if err != nil {
				return err
			}
			if msg.IsDeleted {
				continue
			}
			message = msg
			found = true
			return nil
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	if !found {
		return domain.Message{}, badger.ErrKeyNotFound
	}
	return message, nil
}

// SoftDelete flips is_deleted on the referenced message. Deleting an
// unknown or already deleted message is a no-op.
func (m MessageRepository) SoftDelete(id uuid.UUID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var primary []byte
		if err = item.Value(func(val []byte) error {
			primary = append([]byte{}, val...)
			return nil
		}); err != nil {
			return err
		}
		message, err := getMessage(txn, primary)
		if err != nil {
			return err
		}
		if message.IsDeleted {
			return nil
		}
		message.IsDeleted = true
		data, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(primary, data)
	})
}

// Search runs a full-text query over message content and nicknames.
func (m MessageRepository) Search(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	if m.writer == nil {
		return nil, nil
	}
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query).SetField("content")).
		AddShould(bluge.NewMatchQuery(query).SetField("nickname"))
	q.SetMinShould(1)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var keys [][]byte
	for match, err := iterator.Next(); match != nil; match, err = iterator.Next() {
		if err != nil {
			return nil, err
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "key" {
				keys = append(keys, append([]byte{}, value...))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	var messages []domain.Message
	err = m.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			message, err := getMessage(txn, key)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if message.IsDeleted {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

func (m MessageRepository) scanNewestFirst(limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			var message domain.Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			if message.IsDeleted {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

// index pushes the message into bluge. Indexing is advisory: a failure is
// logged and must not undo the badger write.
func (m MessageRepository) index(message domain.Message) {
	if m.writer == nil {
		return
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content)).
		AddField(bluge.NewTextField("nickname", message.Nickname)).
		AddField(bluge.NewDateTimeField("at", message.At)).
		AddField(bluge.NewStoredOnlyField("key", messageKey(message)))
	if err := m.writer.Update(doc.ID(), doc); err != nil {
		m.log.Warn("Search indexing failed", "message_id", message.ID, "error", err)
	}
}

func getMessage(txn *badger.Txn, key []byte) (domain.Message, error) {
	var message domain.Message
	item, err := txn.Get(key)
	if err != nil {
		return domain.Message{}, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &message)
	})
	return message, err
}
