package event

import (
	"chatroom/domain"
)

// DomainEvent is anything the broadcast bus can fan out to live sessions.
// Name is the wire event name delivered to clients.
type DomainEvent interface {
	Name() string
}

// MessagePosted carries a freshly persisted message to every live session.
type MessagePosted struct {
	Message domain.Message
}

func (MessagePosted) Name() string { return "new_message" }

// OnlineCount is republished whenever the set of live sessions changes.
type OnlineCount struct {
	Count int
}

func (OnlineCount) Name() string { return "online_count" }
