package loan

import "errors"

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidInput      = errors.New("invalid loan input")
	ErrInvalidStatus     = errors.New("invalid loan status")
	ErrInvalidTransition = errors.New("invalid status transition")
)
