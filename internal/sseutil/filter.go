// Package sseutil provides the line-level plumbing shared by the SSE-framed
// provider decoders: chunk-to-line reassembly and data-line filtering.
package sseutil

import "bytes"

// Pre-allocated byte slices for zero-copy comparisons
var (
	doneMarker  = []byte("[DONE]")
	dataPrefix  = []byte("data:")
	eventPrefix = []byte("event:")
)

// JSONPayload extracts the JSON payload from an SSE line. Returns nil for
// blank lines, comment/keep-alive lines, event: lines, the [DONE] sentinel,
// and anything that does not open a JSON object once the data: prefix is
// stripped.
func JSONPayload(line []byte) []byte {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil
	}
	if bytes.Equal(trimmed, doneMarker) {
		return nil
	}
	if bytes.HasPrefix(trimmed, eventPrefix) {
		return nil
	}
	if bytes.HasPrefix(trimmed, dataPrefix) {
		trimmed = bytes.TrimSpace(trimmed[len(dataPrefix):])
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return trimmed
}

// IsDoneLine reports whether the line is the stream-terminating sentinel,
// with or without its data: prefix.
func IsDoneLine(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if bytes.HasPrefix(trimmed, dataPrefix) {
		trimmed = bytes.TrimSpace(trimmed[len(dataPrefix):])
	}
	return bytes.Equal(trimmed, doneMarker)
}

// IsEventLine reports whether the line names an SSE event kind rather than
// carrying a payload.
func IsEventLine(line []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(line), eventPrefix)
}
