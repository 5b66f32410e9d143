package httpapi

import (
	"bytes"
	"chatroom/domain"
	"chatroom/moderation"
	"chatroom/repositories"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router   *mux.Router
	messages repositories.MessageRepository
	identity *repositories.IdentityRepository
	roomCfg  *repositories.RoomConfigRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	messages := repositories.NewMessageRepository(db, nil, log)
	identity := repositories.NewIdentityRepository(db)
	roomCfg := repositories.NewRoomConfigRepository(db)
	cache := moderation.NewCache(log)
	store := moderation.NewStore(
		repositories.NewSensitiveWordRepository(db),
		identity,
		repositories.NewBlacklistRepository(db),
		cache,
		log,
	)
	req.NoError(store.LoadCache())

	router := mux.NewRouter()
	NewServer(messages, identity, roomCfg, store, log).Register(router.PathPrefix("/api/chat").Subrouter())
	return fixture{router: router, messages: messages, identity: identity, roomCfg: roomCfg}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func TestSensitiveWordEndpoints(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/chat/sensitive", map[string]string{"word": "spam"})
	req.Equal(http.StatusCreated, resp.Code)

	var created domain.SensitiveWord
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &created))
	req.Equal("spam", created.Word)

	resp = f.do(t, http.MethodPost, "/api/chat/sensitive", map[string]string{"word": "spam"})
	req.Equal(http.StatusConflict, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/chat/sensitive", map[string]string{"word": "   "})
	req.Equal(http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/chat/sensitive", nil)
	req.Equal(http.StatusOK, resp.Code)
	var words []domain.SensitiveWord
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &words))
	req.Len(words, 1)

	resp = f.do(t, http.MethodDelete, "/api/chat/sensitive/"+created.ID.String(), nil)
	req.Equal(http.StatusNoContent, resp.Code)

	resp = f.do(t, http.MethodDelete, "/api/chat/sensitive/not-a-uuid", nil)
	req.Equal(http.StatusBadRequest, resp.Code)
}

func TestBlacklistEndpoints(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/chat/blacklist", map[string]string{
		"user_id": uuid.NewString(),
		"reason":  "spamming",
	})
	req.Equal(http.StatusNotFound, resp.Code)

	user := domain.Identity{
		ID:       uuid.New(),
		Nickname: "troll",
		IP:       "203.0.113.5",
		Device:   "Windows",
	}
	req.NoError(f.identity.Save(user))

	resp = f.do(t, http.MethodPost, "/api/chat/blacklist", map[string]string{
		"user_id": user.ID.String(),
		"reason":  "spamming",
	})
	req.Equal(http.StatusCreated, resp.Code)

	var entry domain.BlacklistEntry
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &entry))
	req.Equal(user.ID, entry.UserID)

	flagged, err := f.identity.FindByID(user.ID)
	req.NoError(err)
	req.True(flagged.IsBlacklisted)

	resp = f.do(t, http.MethodDelete, "/api/chat/blacklist/"+entry.ID.String(), nil)
	req.Equal(http.StatusNoContent, resp.Code)

	cleared, err := f.identity.FindByID(user.ID)
	req.NoError(err)
	req.False(cleared.IsBlacklisted)
}

func TestRoomConfigEndpoints(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/chat/config", nil)
	req.Equal(http.StatusOK, resp.Code)
	var config domain.RoomConfig
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &config))
	req.Equal(domain.ModeOpen, config.Mode)

	resp = f.do(t, http.MethodPost, "/api/chat/config", map[string]any{
		"mode":      2,
		"open_time": "8 o'clock",
	})
	req.Equal(http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/chat/config", map[string]any{"mode": 2})
	req.Equal(http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/chat/config", map[string]any{
		"mode":       2,
		"open_time":  "08:00",
		"close_time": "20:00",
	})
	req.Equal(http.StatusOK, resp.Code)

	saved, err := f.roomCfg.Get()
	req.NoError(err)
	req.Equal(domain.ModeWindowed, saved.Mode)
	req.Equal("08:00", saved.OpenTime)
}

func TestMessageEndpoints(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	message := domain.Message{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Nickname: "alice",
		Content:  "hello there",
		At:       time.Now().UTC(),
	}
	req.NoError(f.messages.Store(message))

	resp := f.do(t, http.MethodGet, "/api/chat/messages", nil)
	req.Equal(http.StatusOK, resp.Code)
	var listed []domain.Message
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &listed))
	req.Len(listed, 1)

	resp = f.do(t, http.MethodDelete, "/api/chat/messages/"+message.ID.String(), nil)
	req.Equal(http.StatusNoContent, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/chat/messages", nil)
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &listed))
	req.Empty(listed)

	resp = f.do(t, http.MethodGet, "/api/chat/messages/search", nil)
	req.Equal(http.StatusBadRequest, resp.Code)
}

func TestListUsersIncludesLastMessage(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	user := domain.Identity{ID: uuid.New(), Nickname: "alice", IP: "203.0.113.9", Device: "Mac"}
	req.NoError(f.identity.Save(user))
	req.NoError(f.messages.Store(domain.Message{
		ID:      uuid.New(),
		UserID:  user.ID,
		Content: "latest words",
		At:      time.Now().UTC(),
	}))

	silent := domain.Identity{ID: uuid.New(), Nickname: "bob", IP: "203.0.113.10", Device: "Linux"}
	req.NoError(f.identity.Save(silent))

	resp := f.do(t, http.MethodGet, "/api/chat/users", nil)
	req.Equal(http.StatusOK, resp.Code)

	var users []userWithLastMessage
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &users))
	req.Len(users, 2)

	byName := map[string]userWithLastMessage{}
	for _, u := range users {
		byName[u.User.Nickname] = u
	}
	req.NotNil(byName["alice"].LastMessage)
	req.Equal("latest words", byName["alice"].LastMessage.Content)
	req.Nil(byName["bob"].LastMessage)
}
