package ws

import (
	"chatroom/contract"
	"chatroom/services"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

const defaultSendBuffer = 64

// Handler upgrades HTTP requests to websocket sessions and wires each
// session into the broadcast bus for its whole lifetime.
type Handler struct {
	service  services.IChatService
	bus      contract.IBus
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHandler(service services.IChatService, bus contract.IBus, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		bus:     bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(conn, h.service, clientIP(r), deviceFromUserAgent(r.UserAgent()), defaultSendBuffer, h.log)

	// Every connected session receives broadcasts, logged in or not.
	h.bus.Subscribe(client.sessionID, client)
	h.log.Info("Websocket session opened", "session", client.sessionID, "ip", client.ip, "device", client.device)

	go client.writePump(r.Context())
	client.readPump(r.Context(), func(c *Client) {
		// Presence is left to the inactivity sweep; only the delivery
		// endpoint goes away with the connection.
		h.bus.Unsubscribe(c.sessionID)
		c.closeSend()
		h.log.Info("Websocket session closed", "session", c.sessionID)
	})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// socket peer address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func deviceFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		return "Mac"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}
