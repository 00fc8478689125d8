package session

import (
	"errors"
	"fmt"

	"github.com/mdreader/llmstream/internal/redact"
)

// ErrorKind classifies fatal stream failures.
type ErrorKind string

const (
	KindCanceled    ErrorKind = "canceled"
	KindIdleTimeout ErrorKind = "idle_timeout"
	KindTransport   ErrorKind = "transport"
	KindDecode      ErrorKind = "decode"
)

// ErrIdleTimeout is installed as the cancel cause when a stream stalls past
// the configured idle timeout.
var ErrIdleTimeout = errors.New("stream idle timeout")

// FatalError ends a session. Its message passes through redaction, so it is
// safe to log and to surface to callers.
type FatalError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	msg := fmt.Sprintf("session %s: %s", e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + redact.String(e.Err.Error())
	}
	return msg
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
