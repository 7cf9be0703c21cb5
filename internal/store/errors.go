package store

import "errors"

var (
	ErrNotSignedIn  = errors.New("no user signed in")
	ErrUnauthorized = errors.New("operation requires administrator role")
)
