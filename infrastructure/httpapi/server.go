package httpapi

import (
	"chatroom/moderation"
	"chatroom/repositories"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Server exposes the moderation and room administration surface. Callers
// are expected to be authenticated upstream; the handlers only deal with
// chat state.
type Server struct {
	messages  repositories.IMessageRepository
	identity  repositories.IIdentityRepository
	roomCfg   repositories.IRoomConfigRepository
	store     *moderation.Store
	validator *validator.Validate
	log       *slog.Logger
}

func NewServer(
	messages repositories.IMessageRepository,
	identity repositories.IIdentityRepository,
	roomCfg repositories.IRoomConfigRepository,
	store *moderation.Store,
	log *slog.Logger,
) *Server {
	return &Server{
		messages:  messages,
		identity:  identity,
		roomCfg:   roomCfg,
		store:     store,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}
}

// Register mounts every admin route on the given router, typically a
// subrouter already wrapped in the bearer-token middleware.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/sensitive", s.listSensitiveWords).Methods(http.MethodGet)
	router.HandleFunc("/sensitive", s.addSensitiveWord).Methods(http.MethodPost)
	router.HandleFunc("/sensitive/{id}", s.removeSensitiveWord).Methods(http.MethodDelete)

	router.HandleFunc("/blacklist", s.listBlacklist).Methods(http.MethodGet)
	router.HandleFunc("/blacklist", s.addBlacklistEntry).Methods(http.MethodPost)
	router.HandleFunc("/blacklist/{id}", s.removeBlacklistEntry).Methods(http.MethodDelete)

	router.HandleFunc("/config", s.getRoomConfig).Methods(http.MethodGet)
	router.HandleFunc("/config", s.saveRoomConfig).Methods(http.MethodPost)

	router.HandleFunc("/messages/search", s.searchMessages).Methods(http.MethodGet)
	router.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	router.HandleFunc("/messages/{id}", s.deleteMessage).Methods(http.MethodDelete)

	router.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}
