// Package jsonscan locates balanced JSON objects inside partially received
// text without parsing it. Locate answers "does the object starting here
// close within this buffer"; Incomplete is the normal steady state while a
// stream is still arriving, not an error.
package jsonscan

import "bytes"

// Outcome classifies a scan attempt.
type Outcome uint8

const (
	Incomplete Outcome = iota
	Complete
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Incomplete:
		return "incomplete"
	case Complete:
		return "complete"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result reports where an object candidate begins and ends. Start and End are
// byte offsets into the scanned buffer; End points at the object's closing
// brace, or at the last body byte for a fenced candidate.
type Result struct {
	Outcome Outcome
	Start   int
	End     int
	Reason  string
}

// State carries brace-scan progress across appends so a growing buffer is
// resumed where the previous attempt stopped, never rescanned from the
// object start. Depth changes only apply outside string literals; Escaped is
// true only for the byte immediately following an unescaped backslash.
type State struct {
	Cursor   int
	Start    int
	Depth    int
	InString bool
	Escaped  bool
	Opened   bool

	done bool
	end  int
}

// NewState prepares a resumable scan beginning at start.
func NewState(start int) *State {
	return &State{Cursor: start, Start: start}
}

// Scan consumes buf from the saved cursor and reports whether the object has
// closed. After an Incomplete result it may be called again once buf has
// grown; the already scanned prefix must be unchanged.
func (s *State) Scan(buf []byte) Result {
	if s.done {
		return Result{Outcome: Complete, Start: s.Start, End: s.end}
	}
	if !s.Opened {
		for s.Cursor < len(buf) && isSpace(buf[s.Cursor]) {
			s.Cursor++
		}
		if s.Cursor >= len(buf) {
			return Result{Outcome: Incomplete, Start: s.Start}
		}
		if buf[s.Cursor] != '{' {
			return Result{Outcome: Invalid, Start: s.Cursor, Reason: "not an object start"}
		}
		s.Start = s.Cursor
		s.Opened = true
		s.Depth = 1
		s.Cursor++
	}
	for s.Cursor < len(buf) {
		c := buf[s.Cursor]
		switch {
		case s.Escaped:
			s.Escaped = false
		case c == '\\':
			s.Escaped = true
		case c == '"':
			s.InString = !s.InString
		case s.InString:
			// structural bytes are inert inside strings
		case c == '{':
			s.Depth++
		case c == '}':
			s.Depth--
			if s.Depth == 0 {
				s.done = true
				s.end = s.Cursor
				s.Cursor++
				return Result{Outcome: Complete, Start: s.Start, End: s.end}
			}
		}
		s.Cursor++
	}
	return Result{Outcome: Incomplete, Start: s.Start}
}

// Locate is the one-shot form of Scan. A fenced candidate is recognized
// first: when start points at a triple-backtick fence and the closing fence
// is present, the fenced body is the object, with no brace scanning.
func Locate(buf []byte, start int) Result {
	if start < 0 {
		return Result{Outcome: Invalid, Start: start, Reason: "negative start"}
	}
	if r, ok := locateFenced(buf, start); ok {
		return r
	}
	return NewState(start).Scan(buf)
}

// LocateString is Locate over a string buffer.
func LocateString(s string, start int) Result {
	return Locate([]byte(s), start)
}

var fence = []byte("```")

func locateFenced(buf []byte, start int) (Result, bool) {
	if start >= len(buf) || !bytes.HasPrefix(buf[start:], fence) {
		return Result{}, false
	}
	// The opening fence line (marker plus optional language tag) runs to EOL.
	nl := bytes.IndexByte(buf[start:], '\n')
	if nl < 0 {
		return Result{Outcome: Incomplete, Start: start}, true
	}
	bodyStart := start + nl + 1
	rel := bytes.Index(buf[bodyStart:], fence)
	if rel < 0 {
		return Result{Outcome: Incomplete, Start: bodyStart}, true
	}
	body := buf[bodyStart : bodyStart+rel]
	lo := 0
	for lo < len(body) && isSpace(body[lo]) {
		lo++
	}
	hi := len(body)
	for hi > lo && isSpace(body[hi-1]) {
		hi--
	}
	if lo == hi {
		return Result{Outcome: Invalid, Start: bodyStart, Reason: "empty fenced block"}, true
	}
	return Result{Outcome: Complete, Start: bodyStart + lo, End: bodyStart + hi - 1}, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
