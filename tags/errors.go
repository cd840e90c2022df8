package tags

import "github.com/pkg/errors"

// ErrNotIssuable is returned when a tag is requested for an operation that does not go over HTTP.
var ErrNotIssuable = errors.New("operation cannot be issued as a request")
