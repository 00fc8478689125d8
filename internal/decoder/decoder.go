// Package decoder turns provider-specific streaming wire formats into an
// ordered sequence of text deltas. Three dialects are supported: SSE lines
// with a terminating sentinel (openai), SSE events with a kind discriminant
// (claude), and an unframed streamed JSON array (gemini).
//
// A Decoder instance owns unshared mutable buffer state for one request and
// must be driven by a single goroutine.
package decoder

// Decoder consumes transport chunks and yields the text deltas they
// complete. Per-frame problems are recovered internally; an error return is
// fatal for the stream.
type Decoder interface {
	// OnChunk appends one transport chunk, in arrival order.
	OnChunk(chunk []byte) ([]TextDelta, error)

	// Finish drains any buffered partial frame once the transport closes.
	Finish() ([]TextDelta, error)

	// Done reports whether the provider's terminal signal has been seen.
	Done() bool

	// Usage returns token accounting once a frame has carried it, else nil.
	Usage() *Usage

	// FinishReason returns the normalized stop reason, if any.
	FinishReason() FinishReason
}
