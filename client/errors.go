package client

import "github.com/pkg/errors"

var (
	// ErrUnauthenticated is returned by operations that need a credential when none is stored.
	ErrUnauthenticated = errors.New("not authenticated")
	ErrEmptyUsername   = errors.New("username is empty")
	ErrInvalidID       = errors.New("id must be positive")
)
