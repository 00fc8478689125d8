package decoder

import (
	"fmt"

	"github.com/mdreader/llmstream/internal/json"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
	"github.com/mdreader/llmstream/internal/sseutil"
)

func init() {
	Register(provider.KindOpenAI, func() Decoder { return &openAIDecoder{} })
}

// chatCompletionChunk is the subset of an OpenAI-style streaming frame the
// decoder reads.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// chatDeltaText returns the delta text carried by a parsed frame, if any.
func chatDeltaText(frame *chatCompletionChunk) (string, bool) {
	if len(frame.Choices) == 0 {
		return "", false
	}
	text := frame.Choices[0].Delta.Content
	return text, text != ""
}

// openAIDecoder consumes `data: <json>` lines terminated by the [DONE]
// sentinel.
type openAIDecoder struct {
	lines  lineEngine
	done   bool
	usage  *Usage
	finish FinishReason
}

func (d *openAIDecoder) OnChunk(chunk []byte) ([]TextDelta, error) {
	if d.done {
		return nil, nil
	}
	var deltas []TextDelta
	batch := d.lines.nextLines(chunk)
	for i, line := range batch {
		if sseutil.IsDoneLine(line) {
			d.done = true
			break
		}
		payload := sseutil.JSONPayload(line)
		if payload == nil {
			continue
		}
		text, ok := d.consumeFrame(payload)
		if !ok {
			if d.lines.holdOrDrop(line, i == len(batch)-1) {
				break
			}
			log.Debugf("openai decoder: dropping malformed frame (%d bytes)", len(line))
			continue
		}
		d.lines.parsed()
		if text != "" {
			deltas = append(deltas, TextDelta{Text: text})
		}
	}
	if d.lines.pending() > maxPendingLine {
		return deltas, fmt.Errorf("openai decoder: frame exceeds %d bytes", maxPendingLine)
	}
	return deltas, nil
}

func (d *openAIDecoder) Finish() ([]TextDelta, error) {
	tail, ok := d.lines.flush()
	if !ok || d.done {
		return nil, nil
	}
	payload := sseutil.JSONPayload(tail)
	if payload == nil {
		return nil, nil
	}
	text, parsed := d.consumeFrame(payload)
	if !parsed {
		log.Debugf("openai decoder: dropping truncated final frame (%d bytes)", len(tail))
		return nil, nil
	}
	if text != "" {
		return []TextDelta{{Text: text}}, nil
	}
	return nil, nil
}

// consumeFrame parses one frame payload, recording usage and finish reason
// as a side effect. It reports whether the payload decoded at all.
func (d *openAIDecoder) consumeFrame(payload []byte) (string, bool) {
	var frame chatCompletionChunk
	if err := json.Unmarshal(payload, &frame); err != nil {
		return "", false
	}
	if frame.Usage != nil {
		d.usage = &Usage{
			PromptTokens:     frame.Usage.PromptTokens,
			CompletionTokens: frame.Usage.CompletionTokens,
			TotalTokens:      frame.Usage.TotalTokens,
		}
	}
	if len(frame.Choices) > 0 && frame.Choices[0].FinishReason != "" {
		d.finish = normalizeFinish(frame.Choices[0].FinishReason)
	}
	text, _ := chatDeltaText(&frame)
	return text, true
}

func (d *openAIDecoder) Done() bool { return d.done }

func (d *openAIDecoder) Usage() *Usage { return d.usage }

func (d *openAIDecoder) FinishReason() FinishReason { return d.finish }
