// Package llmstream is the public face of the stream decoding core. It
// re-exports the per-request session, the provider kinds, and the parsed
// result types so that embedding services do not import internal packages.
package llmstream

import (
	"github.com/mdreader/llmstream/internal/decoder"
	"github.com/mdreader/llmstream/internal/provider"
	"github.com/mdreader/llmstream/internal/session"
	"github.com/mdreader/llmstream/internal/streamparse"
)

// Kind identifies a provider stream format.
type Kind = provider.Kind

// Supported provider kinds.
const (
	KindOpenAI = provider.KindOpenAI
	KindClaude = provider.KindClaude
	KindGemini = provider.KindGemini
)

// FromString maps a provider name, including vendor aliases such as
// "anthropic" and "google", to its Kind.
func FromString(s string) Kind {
	return provider.FromString(s)
}

// Kinds lists the supported provider kinds.
func Kinds() []Kind {
	return provider.Kinds()
}

// Core session types.
type (
	Session = session.Session
	Options = session.Options
	Update  = session.Update
	Outcome = session.Outcome
	Event   = session.Event

	FatalError = session.FatalError
	ErrorKind  = session.ErrorKind
)

// Parsed result types.
type (
	Parser  = streamparse.Parser
	Result  = streamparse.Result
	Command = streamparse.Command
	Status  = streamparse.Status
)

// Wire decoding types for callers that drive a decoder directly.
type (
	Decoder      = decoder.Decoder
	TextDelta    = decoder.TextDelta
	Usage        = decoder.Usage
	FinishReason = decoder.FinishReason
)

// Result statuses.
const (
	StatusStreaming = streamparse.StatusStreaming
	StatusComplete  = streamparse.StatusComplete
	StatusError     = streamparse.StatusError
)

// Fatal error kinds carried by FatalError.Kind.
const (
	ErrorCanceled    = session.KindCanceled
	ErrorIdleTimeout = session.KindIdleTimeout
	ErrorTransport   = session.KindTransport
	ErrorDecode      = session.KindDecode
)

// ErrIdleTimeout reports a stream that stalled past its idle timeout.
var ErrIdleTimeout = session.ErrIdleTimeout

// NewSession builds a single-use decoding session for one provider
// response stream.
func NewSession(kind Kind, opts Options) (*Session, error) {
	return session.New(kind, opts)
}

// NewParser returns a response parser for callers that feed decoded text
// themselves.
func NewParser() *Parser {
	return streamparse.New()
}

// NewDecoder builds a wire decoder for kind without session plumbing.
func NewDecoder(kind Kind) (Decoder, error) {
	return decoder.New(kind)
}
