package decoder

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/mdreader/llmstream/internal/json"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
	"github.com/mdreader/llmstream/internal/sseutil"
)

func init() {
	Register(provider.KindClaude, func() Decoder { return &claudeDecoder{} })
}

const (
	claudeEventMessageStart = "message_start"
	claudeEventContentDelta = "content_block_delta"
	claudeEventMessageDelta = "message_delta"
	claudeEventMessageStop  = "message_stop"

	claudeDeltaTypeText = "text_delta"
)

// claudeEvent is the subset of an Anthropic-style streaming event the
// decoder reads. The event kind discriminates which other fields are set.
type claudeEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// claudeTextDelta returns the text carried by a content delta event.
func claudeTextDelta(ev *claudeEvent) (string, bool) {
	if ev.Type != claudeEventContentDelta || ev.Delta.Type != claudeDeltaTypeText {
		return "", false
	}
	return ev.Delta.Text, ev.Delta.Text != ""
}

// claudeDecoder consumes SSE event streams where each data line carries a
// typed event. Only content delta events produce text; message_stop is the
// terminal signal.
type claudeDecoder struct {
	lines  lineEngine
	done   bool
	usage  *Usage
	finish FinishReason
}

func (d *claudeDecoder) OnChunk(chunk []byte) ([]TextDelta, error) {
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
		// The event name is repeated as the type field inside the payload,
		// so the event: line itself carries nothing.
		if sseutil.IsEventLine(line) {
			continue
		}
		payload := sseutil.JSONPayload(line)
		if payload == nil {
			continue
		}
		text, ok := d.consumeEvent(payload)
		if !ok {
			if d.lines.holdOrDrop(line, i == len(batch)-1) {
				break
			}
			log.Debugf("claude decoder: dropping malformed event (%d bytes)", len(line))
			continue
		}
		d.lines.parsed()
		if text != "" {
			deltas = append(deltas, TextDelta{Text: text})
		}
		if d.done {
			break
		}
	}
	if d.lines.pending() > maxPendingLine {
		return deltas, fmt.Errorf("claude decoder: event exceeds %d bytes", maxPendingLine)
	}
	return deltas, nil
}

func (d *claudeDecoder) Finish() ([]TextDelta, error) {
	tail, ok := d.lines.flush()
	if !ok || d.done {
		return nil, nil
	}
	payload := sseutil.JSONPayload(tail)
	if payload == nil {
		return nil, nil
	}
	text, parsed := d.consumeEvent(payload)
	if !parsed {
		log.Debugf("claude decoder: dropping truncated final event (%d bytes)", len(tail))
		return nil, nil
	}
	if text != "" {
		return []TextDelta{{Text: text}}, nil
	}
	return nil, nil
}

// consumeEvent parses one event payload and dispatches on its kind. Token
// counts arrive split across message_start and message_delta, so they are
// lifted by path rather than through the typed frame.
func (d *claudeDecoder) consumeEvent(payload []byte) (string, bool) {
	var ev claudeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", false
	}
	switch ev.Type {
	case claudeEventMessageStart:
		if in := gjson.GetBytes(payload, "message.usage.input_tokens"); in.Exists() {
			d.ensureUsage().PromptTokens = in.Int()
		}
	case claudeEventMessageDelta:
		if out := gjson.GetBytes(payload, "usage.output_tokens"); out.Exists() {
			u := d.ensureUsage()
			u.CompletionTokens = out.Int()
			u.TotalTokens = u.PromptTokens + u.CompletionTokens
		}
		if stop := gjson.GetBytes(payload, "delta.stop_reason"); stop.Exists() {
			d.finish = normalizeFinish(stop.String())
		}
	case claudeEventMessageStop:
		d.done = true
	}
	text, _ := claudeTextDelta(&ev)
	return text, true
}

func (d *claudeDecoder) ensureUsage() *Usage {
	if d.usage == nil {
		d.usage = &Usage{}
	}
	return d.usage
}

func (d *claudeDecoder) Done() bool { return d.done }

func (d *claudeDecoder) Usage() *Usage { return d.usage }

func (d *claudeDecoder) FinishReason() FinishReason { return d.finish }
