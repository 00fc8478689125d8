// Package redact masks credential-shaped tokens and model identifiers in
// text that is about to be logged or surfaced to a caller. Transport errors
// routinely embed request URLs and headers, so everything fatal passes
// through here first.
package redact

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	tokenMask = "[redacted]"
	modelMask = "[model]"
)

var tokenPatterns = []*regexp.Regexp{
	// OpenAI and Anthropic style secret keys.
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`),
	// Google API keys.
	regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{10,}\b`),
	// Bearer credentials in header dumps.
	regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]{8,}`),
	// key=value / key: value credential assignments.
	regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|secret)\s*[=:]\s*[^\s&"']+`),
}

var modelPattern = regexp.MustCompile(`(?i)\b(?:(?:gpt|claude|gemini)-[A-Za-z0-9.-]+|o\d+(?:-[a-z0-9.-]+)?)\b`)

// String masks credential-shaped tokens and model name fragments in s.
func String(s string) string {
	for _, p := range tokenPatterns {
		s = p.ReplaceAllString(s, tokenMask)
	}
	return modelPattern.ReplaceAllString(s, modelMask)
}

var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"access_token":  true,
	"refresh_token": true,
	"secret":        true,
	"token":         true,
}

// JSON masks the values under credential-bearing keys anywhere in doc and
// runs String over the other string values. Invalid documents come back
// unchanged.
func JSON(doc []byte) []byte {
	if !gjson.ValidBytes(doc) {
		return doc
	}
	out := doc
	for _, hit := range collectHits(gjson.ParseBytes(doc), "") {
		if masked, err := sjson.SetBytes(out, hit.path, hit.value); err == nil {
			out = masked
		}
	}
	return out
}

type hit struct {
	path  string
	value string
}

func collectHits(value gjson.Result, prefix string) []hit {
	var hits []hit
	idx := 0
	value.ForEach(func(key, child gjson.Result) bool {
		var name string
		if value.IsArray() {
			name = strconv.Itoa(idx)
		} else {
			name = key.String()
		}
		idx++
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		switch {
		case !value.IsArray() && sensitiveKeys[strings.ToLower(name)]:
			hits = append(hits, hit{path: path, value: tokenMask})
		case child.IsObject() || child.IsArray():
			hits = append(hits, collectHits(child, path)...)
		case child.Type == gjson.String:
			if cleaned := String(child.String()); cleaned != child.String() {
				hits = append(hits, hit{path: path, value: cleaned})
			}
		}
		return true
	})
	return hits
}
