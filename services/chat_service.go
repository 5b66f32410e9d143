//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chatroom/contract"
	"chatroom/domain"
	"chatroom/domain/event"
	"chatroom/errors"
	"chatroom/moderation"
	"chatroom/presence"
	"chatroom/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Limits gathers the fixed pipeline constants.
type Limits struct {
	RecentMessages int           // messages replayed on login
	MinInterval    time.Duration // per-sender send interval
	MaxContentLen  int           // runes
	NicknameMax    int           // runes
	SweepTimeout   time.Duration // session idle eviction
}

func DefaultLimits() Limits {
	return Limits{
		RecentMessages: 5,
		MinInterval:    10 * time.Second,
		MaxContentLen:  500,
		NicknameMax:    20,
		SweepTimeout:   30 * time.Minute,
	}
}

type LoginRequest struct {
	Nickname string
	IP       string
	Device   string
	Gender   string
}

type LoginReply struct {
	Identity domain.Identity
	Recent   []domain.Message
}

type IChatService interface {
	Login(ctx context.Context, req LoginRequest) (LoginReply, error)
	Logout(ctx context.Context, userID uuid.UUID)
	Heartbeat(userID uuid.UUID)
	SendMessage(ctx context.Context, userID uuid.UUID, rawContent string) (domain.Message, error)
	Status(now time.Time) (domain.RoomStatus, error)
	EvictInactive(ctx context.Context, now time.Time) ([]string, error)
	OnlineCount() int
}

// ChatService drives the whole chat core: session lifecycle, the message
// pipeline, and presence eviction. All durable state goes through the
// repositories; the only in-memory state is the presence registry and the
// sensitive-word cache.
type ChatService struct {
	identities repositories.IIdentityRepository
	messages   repositories.IMessageRepository
	roomConfig repositories.IRoomConfigRepository
	registry   *presence.Registry
	cache      *moderation.Cache
	bus        contract.IBus
	limits     Limits
	clock      monotonicClock
	log        *slog.Logger
}

func NewChatService(
	identities repositories.IIdentityRepository,
	messages repositories.IMessageRepository,
	roomConfig repositories.IRoomConfigRepository,
	registry *presence.Registry,
	cache *moderation.Cache,
	bus contract.IBus,
	limits Limits,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		identities: identities,
		messages:   messages,
		roomConfig: roomConfig,
		registry:   registry,
		cache:      cache,
		bus:        bus,
		limits:     limits,
		log:        log,
	}
}

// Login creates or reuses the identity for the (IP, device) pair, marks
// it online, records the transient session and returns the identity plus
// the most recent persisted messages in chronological order. Logging in
// twice from the same pair hits the same identity.
func (s *ChatService) Login(ctx context.Context, req LoginRequest) (LoginReply, error) {
	nickname := capRunes(strings.TrimSpace(req.Nickname), s.limits.NicknameMax)
	if nickname == "" {
		return LoginReply{}, errors.ErrEmptyNickname
	}

	status, err := s.Status(time.Now())
	if err != nil {
		return LoginReply{}, err
	}
	if !status.IsOpen {
		return LoginReply{}, errors.ErrRoomClosed
	}

	gender := req.Gender
	if gender == "" {
		gender = domain.DefaultGender
	}
	now := time.Now().UTC()

	identity, err := s.identities.FindByDevice(req.IP, req.Device)
	switch {
	case err == badger.ErrKeyNotFound:
		identity = domain.Identity{
			ID:        uuid.New(),
			IP:        req.IP,
			Device:    req.Device,
			CreatedAt: now,
		}
	case err != nil:
		return LoginReply{}, storageErr(err)
	}
	if identity.IsBlacklisted {
		return LoginReply{}, errors.ErrBlacklisted
	}

	identity.Nickname = nickname
	identity.Avatar = domain.RandomAvatar()
	identity.Gender = gender
	identity.IsOnline = true
	identity.LastActiveAt = now
	identity.UpdatedAt = now
	if err = s.identities.Save(identity); err != nil {
		return LoginReply{}, storageErr(err)
	}

	s.registry.Touch(identity.ID, now)

	recent, err := s.messages.Recent(s.limits.RecentMessages)
	if err != nil {
		return LoginReply{}, storageErr(err)
	}

	s.publishOnlineCount(ctx)
	s.log.Info("Chat login", "user_id", identity.ID, "nickname", nickname, "device", identity.Device)
	return LoginReply{Identity: identity, Recent: recent}, nil
}

// Logout drops the transient session. The identity's is_online flag is
// left to the next sweep on purpose: flipping it here would race with a
// re-login from the same pair, and nothing reads the flag in real time.
func (s *ChatService) Logout(ctx context.Context, userID uuid.UUID) {
	s.registry.Remove(userID)
	s.publishOnlineCount(ctx)
	s.log.Info("Chat logout", "user_id", userID)
}

// Heartbeat refreshes the session's last-active timestamp. Unknown
// sessions are a silent no-op to absorb races with eviction.
func (s *ChatService) Heartbeat(userID uuid.UUID) {
	s.registry.Heartbeat(userID, time.Now().UTC())
}

// SendMessage runs the pipeline: presence, blacklist, rate, shape,
// sensitive words, linkify, persist, broadcast. Each step short-circuits;
// the persist in step 7 is the only durable side effect.
func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, rawContent string) (domain.Message, error) {
	// 1. The sender must hold a live session.
	if !s.registry.Contains(userID) {
		return domain.Message{}, errors.ErrNotLoggedIn
	}

	// 2. Always reload the identity: blacklisting happens asynchronously
	// from admin actions and must win over any cached copy.
	identity, err := s.identities.FindByID(userID)
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, errors.ErrNotLoggedIn
	}
	if err != nil {
		return domain.Message{}, storageErr(err)
	}
	if identity.IsBlacklisted {
		s.registry.Remove(userID)
		return domain.Message{}, errors.ErrBlacklisted
	}

	status, err := s.Status(time.Now())
	if err != nil {
		return domain.Message{}, err
	}
	if !status.IsOpen {
		return domain.Message{}, errors.ErrRoomClosed
	}

	// 3. Rate check against the sender's own last persisted message.
	// Check-then-act: two racing sends may both pass, which costs one
	// extra accepted message and corrupts nothing.
	last, err := s.messages.LastByUser(userID)
	if err != nil && err != badger.ErrKeyNotFound {
		return domain.Message{}, storageErr(err)
	}
	if err == nil {
		if elapsed := time.Now().UTC().Sub(last.At); elapsed < s.limits.MinInterval {
			return domain.Message{}, errors.TooFastError{Wait: s.limits.MinInterval - elapsed}
		}
	}

	// 4. Shape checks.
	content := strings.TrimSpace(rawContent)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if len([]rune(content)) > s.limits.MaxContentLen {
		return domain.Message{}, errors.ErrTooLong
	}

	// 5. Sensitive-word scan. Rejected messages leave no record.
	if word, found := s.cache.Scan(content); found {
		info := whatlanggo.Detect(content)
		s.log.Warn("Rejected sensitive message",
			"user_id", userID,
			"word", word,
			"lang", info.Lang.Iso6391(),
			"ip", identity.IP)
		return domain.Message{}, errors.SensitiveWordError{Word: word}
	}

	// 6. Bare URLs become anchors; this form is what gets persisted.
	content = Linkify(content)

	// 7. Persist the snapshot with a server-assigned monotonic timestamp.
	message := domain.Message{
		ID:       uuid.New(),
		UserID:   identity.ID,
		Nickname: identity.Nickname,
		Avatar:   identity.Avatar,
		Gender:   identity.Gender,
		Content:  content,
		At:       s.clock.Now(),
		IP:       identity.IP,
		Device:   identity.Device,
	}
	if err = s.messages.Store(message); err != nil {
		return domain.Message{}, storageErr(err)
	}

	// 8. Fan out, sender included.
	s.bus.Publish(ctx, event.MessagePosted{Message: message})
	return message, nil
}

// Status computes room availability for the given instant.
func (s *ChatService) Status(now time.Time) (domain.RoomStatus, error) {
	config, err := s.roomConfig.Get()
	if err != nil {
		return domain.RoomStatus{}, storageErr(err)
	}
	return config.Status(now), nil
}

// EvictInactive sweeps stale sessions, flips the evicted identities
// offline in the store and republishes the online count.
func (s *ChatService) EvictInactive(ctx context.Context, now time.Time) ([]string, error) {
	evicted := s.registry.Sweep(now, s.limits.SweepTimeout)
	ids := make([]string, 0, len(evicted))
	for _, id := range evicted {
		if err := s.identities.SetOnline(id, false); err != nil && err != badger.ErrKeyNotFound {
			s.log.Error("Failed to mark identity offline", "user_id", id, "error", err)
		}
		ids = append(ids, id.String())
	}
	if len(evicted) > 0 {
		s.publishOnlineCount(ctx)
	}
	return ids, nil
}

func (s *ChatService) OnlineCount() int {
	return s.registry.Count()
}

func (s *ChatService) publishOnlineCount(ctx context.Context) {
	s.bus.Publish(ctx, event.OnlineCount{Count: s.registry.Count()})
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
}

func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
