// Package transport is the platform side of the session core: it performs
// network I/O on its own goroutines and hands results back as events the
// session consumes on its tick.
package transport

// Request is one HTTP call relative to the API base URL.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

type EventKind int

const (
	// EventChunk carries part of a response body.
	EventChunk EventKind = iota + 1
	// EventComplete ends a streamed response with its status.
	EventComplete
	// EventResponse is a whole response delivered at once.
	EventResponse
	// EventFailed means the request never produced a response.
	EventFailed
)

// Event is delivered at most once per kind and request, in the order
// chunk, chunk, ..., complete.
type Event struct {
	RequestID string
	Kind      EventKind
	Status    int
	Body      []byte
	Err       error
}
