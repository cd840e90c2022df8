package errors

import (
	"fmt"
	"os"

	"shindensen_client/tags"

	"go.uber.org/zap"
)

// Kind classifies a Failure.
type Kind int

const (
	// ServerError is a non-2xx HTTP status.
	ServerError Kind = iota + 1
	// DecodeError is a body that does not match the expected schema.
	DecodeError
	// EncodingError is a body that is not valid UTF-8.
	EncodingError
	// NetworkError is a transport failure, socket errors included.
	NetworkError
	// Misuse is an operation attempted in the wrong state, e.g. sending without an open socket.
	Misuse
)

func (k Kind) String() string {
	switch k {
	case ServerError:
		return "server_error"
	case DecodeError:
		return "decode_error"
	case EncodingError:
		return "encoding_error"
	case NetworkError:
		return "network_error"
	case Misuse:
		return "error"
	}
	return "unknown"
}

// Failure is every error the session core reports upward. It travels on the
// action bus like any other event.
type Failure struct {
	Kind    Kind
	Op      tags.Operation
	Status  int
	RawBody string
	Cause   error
	Detail  string
}

func (f *Failure) Error() string {
	switch f.Kind {
	case ServerError:
		return fmt.Sprintf("%s: server returned %d", f.Op, f.Status)
	case DecodeError, EncodingError:
		return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Cause)
	}
	return f.Detail
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// ActionName names the failure on the action bus.
func (f *Failure) ActionName() string {
	return "failure/" + f.Kind.String()
}

// NewServerError builds a ServerError for op.
func NewServerError(op tags.Operation, status int, body []byte) *Failure {
	return &Failure{Kind: ServerError, Op: op, Status: status, RawBody: string(body)}
}

// NewDecodeError builds a DecodeError carrying the offending body.
func NewDecodeError(op tags.Operation, body []byte, cause error) *Failure {
	return &Failure{Kind: DecodeError, Op: op, RawBody: string(body), Cause: cause}
}

// NewEncodingError builds an EncodingError. The raw body is kept as quoted bytes.
func NewEncodingError(op tags.Operation, body []byte, cause error) *Failure {
	return &Failure{Kind: EncodingError, Op: op, RawBody: fmt.Sprintf("%q", body), Cause: cause}
}

// NewNetworkError builds a NetworkError.
func NewNetworkError(detail string) *Failure {
	return &Failure{Kind: NetworkError, Detail: detail}
}

// NewMisuse builds the generic Error{text} failure.
func NewMisuse(text string) *Failure {
	return &Failure{Kind: Misuse, Detail: text}
}

// HandleFatalError handles startup errors
func HandleFatalError(log *zap.Logger, err error) {
	if err == nil {
		return
	}
	if log == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Fatal("fatal", zap.Error(err))
}

// HandleBasicError logs err and reports whether there was one
func HandleBasicError(log *zap.Logger, problem string, err error) bool {
	if err != nil {
		log.Error(problem, zap.Error(err))
		return true
	}
	return false
}
