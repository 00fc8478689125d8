package sseutil

import "bytes"

// LineBuffer reassembles a chunked byte stream into complete lines. A
// trailing fragment without a terminator is carried until more bytes arrive,
// so a line split at any byte offset across appends is still delivered
// exactly once.
type LineBuffer struct {
	rest []byte
}

// Append adds one transport chunk and returns the lines it completes, in
// arrival order, with terminators stripped. Both \n and \r\n are accepted.
// Returned lines are copies and stay valid across later appends.
func (b *LineBuffer) Append(chunk []byte) [][]byte {
	if len(chunk) > 0 {
		b.rest = append(b.rest, chunk...)
	}
	var lines [][]byte
	for {
		i := bytes.IndexByte(b.rest, '\n')
		if i < 0 {
			break
		}
		line := b.rest[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, append([]byte(nil), line...))
		b.rest = b.rest[i+1:]
	}
	if len(b.rest) == 0 {
		b.rest = nil
	}
	return lines
}

// Prepend pushes data back to the front of the buffer so it recombines with
// whatever arrives next. Used by the line decoders to retry a frame that was
// cut inside its JSON payload rather than at a line boundary.
func (b *LineBuffer) Prepend(data []byte) {
	if len(data) == 0 {
		return
	}
	joined := make([]byte, 0, len(data)+len(b.rest))
	joined = append(joined, data...)
	joined = append(joined, b.rest...)
	b.rest = joined
}

// Flush returns the final unterminated line once the stream has closed.
func (b *LineBuffer) Flush() ([]byte, bool) {
	line := b.rest
	b.rest = nil
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) == 0 {
		return nil, false
	}
	return line, true
}

// Pending reports how many buffered bytes await a terminator.
func (b *LineBuffer) Pending() int {
	return len(b.rest)
}
