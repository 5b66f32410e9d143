package ws

import (
	"chatroom/domain"
	"encoding/json"
)

const timestampLayout = "2006-01-02 15:04:05"

// Frame is the envelope for every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: data}, nil
}

type loginPayload struct {
	Nickname string `json:"nickname"`
	Gender   string `json:"gender"`
}

type sendPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Msg string `json:"msg"`
}

type userPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Gender   string `json:"gender"`
	IsOnline bool   `json:"is_online"`
}

type messagePayload struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Gender    string `json:"gender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	IsSelf    bool   `json:"is_self"`
}

type loginSuccessPayload struct {
	User     userPayload      `json:"user"`
	Messages []messagePayload `json:"messages"`
}

type countPayload struct {
	Count int `json:"count"`
}

type statusPayload struct {
	Status           int    `json:"status"`
	IsOpen           bool   `json:"is_open"`
	OpenTime         string `json:"open_time"`
	CloseTime        string `json:"close_time"`
	CustomText       string `json:"custom_text"`
	ExpectedOpenTime string `json:"expected_open_time"`
}

func toUserPayload(identity domain.Identity) userPayload {
	return userPayload{
		ID:       identity.ID.String(),
		Nickname: identity.Nickname,
		Avatar:   identity.Avatar,
		Gender:   identity.Gender,
		IsOnline: identity.IsOnline,
	}
}

// toMessagePayload renders a message for one recipient; is_self is a
// per-recipient field, computed at delivery time.
func toMessagePayload(message domain.Message, viewer string) messagePayload {
	return messagePayload{
		ID:        message.ID.String(),
		UserID:    message.UserID.String(),
		Nickname:  message.Nickname,
		Avatar:    message.Avatar,
		Gender:    message.Gender,
		Content:   message.Content,
		Timestamp: message.At.Format(timestampLayout),
		IsSelf:    viewer != "" && message.UserID.String() == viewer,
	}
}

func toStatusPayload(status domain.RoomStatus) statusPayload {
	return statusPayload{
		Status:           int(status.Mode),
		IsOpen:           status.IsOpen,
		OpenTime:         status.OpenTime,
		CloseTime:        status.CloseTime,
		CustomText:       status.CustomText,
		ExpectedOpenTime: status.ExpectedOpenTime,
	}
}
