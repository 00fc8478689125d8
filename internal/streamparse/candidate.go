package streamparse

import (
	"bytes"
	"strings"

	"github.com/mdreader/llmstream/internal/json"
	"github.com/mdreader/llmstream/internal/jsonscan"
)

type commandEnvelope struct {
	Function  string          `json:"function"`
	Arguments json.RawMessage `json:"arguments"`
}

// parseCandidate inspects a candidate command region. It reports Pending
// while the region is still growing, Valid once it parses into a complete
// command, and Invalid when it can never become one.
func parseCandidate(raw string) CommandCandidate {
	res := jsonscan.LocateString(raw, 0)
	switch res.Outcome {
	case jsonscan.Incomplete:
		return CommandCandidate{State: CandidatePending, Raw: raw}
	case jsonscan.Invalid:
		return CommandCandidate{State: CandidateInvalid, Raw: raw, Reason: res.Reason}
	}
	object := raw[res.Start : res.End+1]
	var env commandEnvelope
	if err := json.Unmarshal([]byte(object), &env); err != nil {
		return CommandCandidate{State: CandidateInvalid, Raw: object, Reason: "candidate is not valid JSON"}
	}
	if env.Function == "" {
		return CommandCandidate{State: CandidateInvalid, Raw: object, Reason: "missing function name"}
	}
	args := bytes.TrimSpace(env.Arguments)
	if len(args) == 0 || args[0] != '{' {
		return CommandCandidate{State: CandidateInvalid, Raw: object, Reason: "arguments is not an object"}
	}
	var arguments map[string]any
	if err := json.Unmarshal(args, &arguments); err != nil {
		return CommandCandidate{State: CandidateInvalid, Raw: object, Reason: "arguments do not decode"}
	}
	return CommandCandidate{
		State:   CandidateValid,
		Raw:     object,
		Command: &Command{Name: env.Function, Arguments: arguments},
	}
}

// unescapeJSONText undoes one level of string escaping, for command regions
// the model emitted inside a string literal. A trailing lone backslash is
// kept so a cut escape sequence survives until the next chunk.
func unescapeJSONText(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
