package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func TestRoomConfig_Status(t *testing.T) {
	tests := []struct {
		name   string
		config RoomConfig
		now    time.Time
		isOpen bool
	}{
		{
			name:   "Always open",
			config: RoomConfig{Mode: ModeOpen},
			now:    at(3, 0),
			isOpen: true,
		},
		{
			name:   "Always closed",
			config: RoomConfig{Mode: ModeClosed, CustomText: "under maintenance"},
			now:    at(12, 0),
			isOpen: false,
		},
		{
			name:   "Windowed, inside the window",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "08:00", CloseTime: "20:00"},
			now:    at(9, 0),
			isOpen: true,
		},
		{
			name:   "Windowed, after closing",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "08:00", CloseTime: "20:00"},
			now:    at(21, 0),
			isOpen: false,
		},
		{
			name:   "Windowed, exactly at opening",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "08:00", CloseTime: "20:00"},
			now:    at(8, 0),
			isOpen: true,
		},
		{
			name:   "Windowed, exactly at closing",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "08:00", CloseTime: "20:00"},
			now:    at(20, 0),
			isOpen: false,
		},
		{
			// A cross-midnight window is a known boundary: start <= now < end
			// can never hold when the close time precedes the open time.
			name:   "Windowed, cross-midnight window reads closed",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "22:00", CloseTime: "02:00"},
			now:    at(23, 0),
			isOpen: false,
		},
		{
			name:   "Windowed, unparsable boundary fails open",
			config: RoomConfig{Mode: ModeWindowed, OpenTime: "8 o'clock", CloseTime: "20:00"},
			now:    at(3, 0),
			isOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			status := tt.config.Status(tt.now)
			req.Equal(tt.isOpen, status.IsOpen)
			req.Equal(tt.config.Mode, status.Mode)
			req.Equal(tt.config.CustomText, status.CustomText)
		})
	}
}
