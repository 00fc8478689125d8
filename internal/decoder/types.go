package decoder

import "strings"

// TextDelta is one ordered fragment of assistant output text.
type TextDelta struct {
	Text string
}

// Usage reports token accounting surfaced by terminal frames.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// FinishReason is the normalized stop reason reported by a provider.
type FinishReason string

const (
	FinishReasonNone      FinishReason = ""
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonToolCalls FinishReason = "tool_calls"
)

// normalizeFinish maps the per-provider stop vocabularies onto the shared
// constants. Unknown values pass through lowercased.
func normalizeFinish(s string) FinishReason {
	switch strings.ToLower(s) {
	case "":
		return FinishReasonNone
	case "stop", "end_turn", "stop_sequence":
		return FinishReasonStop
	case "length", "max_tokens":
		return FinishReasonLength
	case "tool_calls", "tool_use", "function_call":
		return FinishReasonToolCalls
	default:
		return FinishReason(strings.ToLower(s))
	}
}
