package domain

import (
	"time"
)

// RoomMode tells whether the room is statically open, statically closed,
// or follows a daily time window. The numeric values are part of the wire
// payload sent to clients.
type RoomMode int

const (
	ModeClosed RoomMode = iota
	ModeOpen
	ModeWindowed
)

func (m RoomMode) String() string {
	switch m {
	case ModeClosed:
		return "closed"
	case ModeOpen:
		return "open"
	case ModeWindowed:
		return "windowed"
	default:
		return "unknown"
	}
}

const wallClockLayout = "15:04"

// RoomConfig is the singleton room availability configuration.
type RoomConfig struct {
	Mode             RoomMode  `json:"mode"`
	OpenTime         string    `json:"open_time"`
	CloseTime        string    `json:"close_time"`
	CustomText       string    `json:"custom_text"`
	ExpectedOpenTime string    `json:"expected_open_time"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RoomStatus is the computed availability for a given instant.
type RoomStatus struct {
	Mode             RoomMode
	IsOpen           bool
	OpenTime         string
	CloseTime        string
	CustomText       string
	ExpectedOpenTime string
}

// Status computes the room availability at the given instant. For windowed
// mode the two wall-clock boundaries are compared minute-wise against now,
// in whatever zone the caller supplied; no timezone conversion happens here.
// A window whose close time precedes its open time (22:00-02:00) is not
// supported and reads as always closed between them.
func (c RoomConfig) Status(now time.Time) RoomStatus {
	s := RoomStatus{
		Mode:             c.Mode,
		OpenTime:         c.OpenTime,
		CloseTime:        c.CloseTime,
		CustomText:       c.CustomText,
		ExpectedOpenTime: c.ExpectedOpenTime,
	}
	switch c.Mode {
	case ModeOpen:
		s.IsOpen = true
	case ModeWindowed:
		s.IsOpen = c.withinWindow(now)
	}
	return s
}

func (c RoomConfig) withinWindow(now time.Time) bool {
	open, err := time.Parse(wallClockLayout, c.OpenTime)
	if err != nil {
		// An unparsable window must not lock everyone out.
		return true
	}
	closeAt, err := time.Parse(wallClockLayout, c.CloseTime)
	if err != nil {
		return true
	}
	minute := now.Hour()*60 + now.Minute()
	start := open.Hour()*60 + open.Minute()
	end := closeAt.Hour()*60 + closeAt.Minute()
	return start <= minute && minute < end
}
