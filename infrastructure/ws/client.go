package ws

import (
	"chatroom/domain/event"
	"chatroom/services"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Client is one websocket connection. It doubles as the session's
// EventSink: bus events land in the buffered send channel and are flushed
// by the write pump. A full channel drops the event rather than blocking
// the bus.
type Client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan Frame
	service   services.IChatService
	ip        string
	device    string
	log       *slog.Logger

	mu     sync.Mutex
	userID uuid.UUID // zero until login succeeds
	closed bool
}

func newClient(conn *websocket.Conn, service services.IChatService, ip, device string, bufferSize int, log *slog.Logger) *Client {
	return &Client{
		sessionID: uuid.NewString(),
		conn:      conn,
		send:      make(chan Frame, bufferSize),
		service:   service,
		ip:        ip,
		device:    device,
		log:       log,
	}
}

// Consume implements contract.EventSink. It must never block: delivery is
// best effort and the store is the durable record.
func (c *Client) Consume(_ context.Context, e event.DomainEvent) error {
	var frame Frame
	var err error
	switch evt := e.(type) {
	case event.MessagePosted:
		frame, err = newFrame(evt.Name(), toMessagePayload(evt.Message, c.viewerID()))
	case event.OnlineCount:
		frame, err = newFrame(evt.Name(), countPayload{Count: evt.Count})
	default:
		return nil
	}
	if err != nil {
		return err
	}
	c.trySend(frame, e.Name())
	return nil
}

// trySend serializes with closeSend so the bus can never write to a
// channel the disconnect path already closed.
func (c *Client) trySend(frame Frame, event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Debug("Send buffer full, dropping frame", "session", c.sessionID, "event", event)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) viewerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == uuid.Nil {
		return ""
	}
	return c.userID.String()
}

func (c *Client) setUserID(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

// readPump drives the session: every inbound frame maps onto one chat
// service call, every failure is reported back to this session only.
func (c *Client) readPump(ctx context.Context, onClose func(*Client)) {
	defer onClose(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("Websocket read failed", "session", c.sessionID, "error", err)
			}
			return
		}
		c.dispatch(ctx, frame)
	}
}

func (c *Client) dispatch(ctx context.Context, frame Frame) {
	switch frame.Event {
	case "login":
		c.handleLogin(ctx, frame.Data)
	case "logout":
		c.handleLogout(ctx)
	case "heartbeat":
		c.handleHeartbeat()
	case "send_message":
		c.handleSend(ctx, frame.Data)
	case "get_status":
		c.handleStatus()
	default:
		c.log.Debug("Unknown event", "session", c.sessionID, "event", frame.Event)
	}
}

func (c *Client) handleLogin(ctx context.Context, data json.RawMessage) {
	var payload loginPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.reply("login_error", errorPayload{Msg: "malformed login payload"})
		return
	}
	reply, err := c.service.Login(ctx, services.LoginRequest{
		Nickname: payload.Nickname,
		IP:       c.ip,
		Device:   c.device,
		Gender:   payload.Gender,
	})
	if err != nil {
		c.reply("login_error", errorPayload{Msg: err.Error()})
		return
	}
	c.setUserID(reply.Identity.ID)

	messages := make([]messagePayload, 0, len(reply.Recent))
	for _, message := range reply.Recent {
		messages = append(messages, toMessagePayload(message, reply.Identity.ID.String()))
	}
	c.reply("login_success", loginSuccessPayload{
		User:     toUserPayload(reply.Identity),
		Messages: messages,
	})
}

func (c *Client) handleLogout(ctx context.Context) {
	c.mu.Lock()
	userID := c.userID
	c.userID = uuid.Nil
	c.mu.Unlock()

	if userID != uuid.Nil {
		c.service.Logout(ctx, userID)
	}
	c.reply("logout_success", struct{}{})
}

func (c *Client) handleHeartbeat() {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID != uuid.Nil {
		c.service.Heartbeat(userID)
	}
}

func (c *Client) handleSend(ctx context.Context, data json.RawMessage) {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()

	var payload sendPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.reply("send_error", errorPayload{Msg: "malformed message payload"})
		return
	}
	// The accepted message comes back through the broadcast like for
	// everyone else; only failures are answered directly.
	if _, err := c.service.SendMessage(ctx, userID, payload.Content); err != nil {
		c.reply("send_error", errorPayload{Msg: err.Error()})
	}
}

func (c *Client) handleStatus() {
	status, err := c.service.Status(time.Now())
	if err != nil {
		c.reply("send_error", errorPayload{Msg: err.Error()})
		return
	}
	c.reply("chat_status", toStatusPayload(status))
}

func (c *Client) reply(event string, payload any) {
	frame, err := newFrame(event, payload)
	if err != nil {
		c.log.Error("Failed to encode reply", "event", event, "error", err)
		return
	}
	c.trySend(frame, event)
}

// writePump flushes the send channel and keeps the connection alive with
// pings. It owns all writes to the connection.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				c.log.Debug("Websocket write failed", "session", c.sessionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
