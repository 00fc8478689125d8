// Package provider identifies the upstream LLM providers whose streams this
// module can decode.
package provider

import "strings"

// Kind names a provider wire dialect.
type Kind string

const (
	KindUnknown Kind = ""
	KindOpenAI  Kind = "openai"
	KindClaude  Kind = "claude"
	KindGemini  Kind = "gemini"
)

// FromString normalizes a user-supplied provider name, accepting the common
// vendor aliases.
func FromString(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return KindOpenAI
	case "claude", "anthropic":
		return KindClaude
	case "gemini", "google":
		return KindGemini
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k names a supported provider.
func (k Kind) Valid() bool {
	switch k {
	case KindOpenAI, KindClaude, KindGemini:
		return true
	}
	return false
}

// Kinds lists the supported providers in stable order.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindClaude, KindGemini}
}
