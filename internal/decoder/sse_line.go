package decoder

import "github.com/mdreader/llmstream/internal/sseutil"

// maxPendingLine caps the unterminated tail an SSE decoder will buffer.
// A single frame larger than this aborts the stream.
const maxPendingLine = 2 << 20

// lineEngine wraps the frame buffer with the one-shot hold used when a
// line's JSON payload fails to parse: the first failure at the tail of a
// batch is pushed back so the next chunk can complete it; a second failure,
// or a failure anywhere else, drops the line.
type lineEngine struct {
	frames  sseutil.LineBuffer
	retried bool
}

func (e *lineEngine) nextLines(chunk []byte) [][]byte {
	return e.frames.Append(chunk)
}

// holdOrDrop decides what to do with a line whose payload did not parse.
// last reports whether the line closed its batch. It returns true when the
// line was pushed back for one retry.
func (e *lineEngine) holdOrDrop(line []byte, last bool) bool {
	if !e.retried && last {
		e.frames.Prepend(line)
		e.retried = true
		return true
	}
	e.retried = false
	return false
}

// parsed clears the retry arm after a payload decodes successfully.
func (e *lineEngine) parsed() {
	e.retried = false
}

// flush returns the final unterminated line, if any.
func (e *lineEngine) flush() ([]byte, bool) {
	return e.frames.Flush()
}

func (e *lineEngine) pending() int {
	return e.frames.Pending()
}
