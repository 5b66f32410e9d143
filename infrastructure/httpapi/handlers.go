package httpapi

import (
	"chatroom/domain"
	apperrors "chatroom/errors"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultListLimit  = 100
	defaultSearchSize = 20
)

type wordRequest struct {
	Word string `json:"word" validate:"required"`
}

type blacklistRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Reason string `json:"reason"`
}

type roomConfigRequest struct {
	Mode             int    `json:"mode" validate:"min=0,max=2"`
	OpenTime         string `json:"open_time" validate:"omitempty,datetime=15:04"`
	CloseTime        string `json:"close_time" validate:"omitempty,datetime=15:04"`
	CustomText       string `json:"custom_text"`
	ExpectedOpenTime string `json:"expected_open_time"`
}

type userWithLastMessage struct {
	User        domain.Identity `json:"user"`
	LastMessage *domain.Message `json:"last_message,omitempty"`
}

func (s *Server) listSensitiveWords(w http.ResponseWriter, _ *http.Request) {
	words, err := s.store.ListWords()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list sensitive words")
		return
	}
	s.respond(w, http.StatusOK, words)
}

func (s *Server) addSensitiveWord(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if !s.decode(w, r, &req) {
		return
	}
	word, err := s.store.AddWord(req.Word)
	switch {
	case errors.Is(err, apperrors.ErrEmptyWord):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrDuplicateWord):
		s.respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "failed to add sensitive word")
	default:
		s.respond(w, http.StatusCreated, word)
	}
}

func (s *Server) removeSensitiveWord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.RemoveWord(id); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to remove sensitive word")
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) listBlacklist(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.store.ListBlacklist()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list blacklist")
		return
	}
	s.respond(w, http.StatusOK, entries)
}

func (s *Server) addBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if !s.decode(w, r, &req) {
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	entry, err := s.store.Blacklist(userID, req.Reason)
	switch {
	case errors.Is(err, apperrors.ErrUnknownIdentity):
		s.respondError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "failed to blacklist user")
	default:
		s.respond(w, http.StatusCreated, entry)
	}
}

func (s *Server) removeBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.Unblacklist(id); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to remove blacklist entry")
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) getRoomConfig(w http.ResponseWriter, _ *http.Request) {
	config, err := s.roomCfg.Get()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load room config")
		return
	}
	s.respond(w, http.StatusOK, config)
}

func (s *Server) saveRoomConfig(w http.ResponseWriter, r *http.Request) {
	var req roomConfigRequest
	if !s.decode(w, r, &req) {
		return
	}
	if domain.RoomMode(req.Mode) == domain.ModeWindowed && (req.OpenTime == "" || req.CloseTime == "") {
		s.respondError(w, http.StatusBadRequest, "windowed mode requires open_time and close_time")
		return
	}
	config := domain.RoomConfig{
		Mode:             domain.RoomMode(req.Mode),
		OpenTime:         req.OpenTime,
		CloseTime:        req.CloseTime,
		CustomText:       req.CustomText,
		ExpectedOpenTime: req.ExpectedOpenTime,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.roomCfg.Save(config); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to save room config")
		return
	}
	s.log.Info("Room config updated", "mode", config.Mode, "open", config.OpenTime, "close", config.CloseTime)
	s.respond(w, http.StatusOK, config)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	messages, err := s.messages.List(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	s.respond(w, http.StatusOK, messages)
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.messages.SoftDelete(id); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) searchMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := queryInt(r, "limit", defaultSearchSize)
	messages, err := s.messages.Search(r.Context(), query, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.respond(w, http.StatusOK, messages)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	identities, err := s.identity.List(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	users := make([]userWithLastMessage, 0, len(identities))
	for _, identity := range identities {
		entry := userWithLastMessage{User: identity}
		last, err := s.messages.LastByUser(identity.ID)
		if err == nil {
			entry.LastMessage = &last
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			s.log.Warn("Failed to load last message", "user_id", identity.ID, "error", err)
		}
		users = append(users, entry)
	}
	s.respond(w, http.StatusOK, users)
}

// decode unmarshals and validates a request body, replying 400 on any
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := s.validator.Struct(target); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
