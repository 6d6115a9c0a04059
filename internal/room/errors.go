package room

import "errors"

var (
	ErrAdmissionRejected    = errors.New("you are already connected")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrCapacityExceeded     = errors.New("room is full")

	ErrSessionReplaced = errors.New("another connection has taken over your session")
	ErrRoomStopped     = errors.New("room is not running")
)
