package streamparse

import "bytes"

// MatcherKind tags which introduction pattern opened the command region.
type MatcherKind uint8

const (
	MatchNone MatcherKind = iota
	// MatchRawJSON is a bare `{"function` marker in the prose.
	MatchRawJSON
	// MatchFenced is a code fence whose body carries the command object.
	MatchFenced
	// MatchEscapedJSON is the marker with escaped quotes, emitted when the
	// model wraps the command in a string literal.
	MatchEscapedJSON
)

func (k MatcherKind) String() string {
	switch k {
	case MatchRawJSON:
		return "raw_json"
	case MatchFenced:
		return "fenced"
	case MatchEscapedJSON:
		return "escaped_json"
	default:
		return "none"
	}
}

var (
	rawMarker     = []byte(`{"function`)
	escapedMarker = []byte(`{\"function`)
	fenceMarker   = []byte("```")
)

type matcher struct {
	kind MatcherKind
	find func(buf []byte) (start int, ok bool)
}

// matchers are tried in order on every chunk until one hits; the first hit
// fixes both the kind and the start index for the rest of the session.
var matchers = []matcher{
	{kind: MatchRawJSON, find: findRawMarker},
	{kind: MatchFenced, find: findFencedCommand},
	{kind: MatchEscapedJSON, find: findEscapedMarker},
}

func findRawMarker(buf []byte) (int, bool) {
	idx := bytes.Index(buf, rawMarker)
	return idx, idx >= 0
}

func findEscapedMarker(buf []byte) (int, bool) {
	idx := bytes.Index(buf, escapedMarker)
	return idx, idx >= 0
}

// findFencedCommand looks for a code fence whose body opens with one of the
// command markers. Fences whose body is still too short to classify defer
// the decision to a later chunk; fences that clearly hold something else
// are skipped.
func findFencedCommand(buf []byte) (int, bool) {
	search := 0
	for {
		rel := bytes.Index(buf[search:], fenceMarker)
		if rel < 0 {
			return 0, false
		}
		idx := search + rel
		bodyStart, ok := fenceBodyStart(buf, idx)
		if !ok {
			return 0, false
		}
		body := bytes.TrimLeft(buf[bodyStart:], " \t\r\n")
		if hasCommandPrefix(body) {
			return idx, true
		}
		if undecidedPrefix(body) {
			return 0, false
		}
		search = idx + len(fenceMarker)
	}
}

// fenceBodyStart returns the offset just past the fence opener's header
// line. It reports false until the header line has fully arrived.
func fenceBodyStart(buf []byte, fenceIdx int) (int, bool) {
	i := fenceIdx + len(fenceMarker)
	nl := bytes.IndexByte(buf[i:], '\n')
	if nl < 0 {
		return 0, false
	}
	return i + nl + 1, true
}

func hasCommandPrefix(body []byte) bool {
	return bytes.HasPrefix(body, rawMarker) || bytes.HasPrefix(body, escapedMarker)
}

// undecidedPrefix reports whether body could still grow into one of the
// command markers.
func undecidedPrefix(body []byte) bool {
	if len(body) >= len(escapedMarker) {
		return false
	}
	return prefixCompatible(body, rawMarker) || prefixCompatible(body, escapedMarker)
}

func prefixCompatible(data, prefix []byte) bool {
	n := len(data)
	if n > len(prefix) {
		n = len(prefix)
	}
	return bytes.Equal(data[:n], prefix[:n])
}
