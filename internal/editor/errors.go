package editor

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSection    = errors.New("unknown section")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoTemplate        = errors.New("collection has no item template")
)

// ValidationError blocks an export. Messages are in display order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	switch len(e.Messages) {
	case 0:
		return "guide is invalid"
	case 1:
		return "guide is invalid: " + e.Messages[0]
	}
	return fmt.Sprintf("guide is invalid: %s (and %d more)", e.Messages[0], len(e.Messages)-1)
}
