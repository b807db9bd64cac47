package domain

import "errors"

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrInvalidEvent           = errors.New("invalid event")
)
