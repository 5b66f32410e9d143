package errors

import (
	"fmt"
	"time"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyNickname      = fmt.Errorf("nickname is empty")
	ErrNotLoggedIn        = fmt.Errorf("not logged in")
	ErrBlacklisted        = fmt.Errorf("identity is blacklisted")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrTooLong            = fmt.Errorf("message content is too long")
	ErrUnknownIdentity    = fmt.Errorf("unknown identity")
	ErrEmptyWord          = fmt.Errorf("sensitive word is empty")
	ErrDuplicateWord      = fmt.Errorf("sensitive word already exists")
	ErrRoomClosed         = fmt.Errorf("room is closed")
	ErrStorageUnavailable = fmt.Errorf("storage unavailable")
)

// TooFastError reports the remaining wait before the sender may post again.
type TooFastError struct {
	Wait time.Duration
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("sending too fast, retry in %s", e.Wait.Round(time.Second))
}

// SensitiveWordError names the first matched forbidden term.
type SensitiveWordError struct {
	Word string
}

func (e SensitiveWordError) Error() string {
	return fmt.Sprintf("message contains sensitive word: %s", e.Word)
}
