package decoder

import (
	"bytes"
	"fmt"

	"github.com/mdreader/llmstream/internal/json"
	"github.com/mdreader/llmstream/internal/jsonscan"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
)

func init() {
	Register(provider.KindGemini, func() Decoder { return &geminiDecoder{} })
}

// maxArrayBuffer caps the bytes held while waiting for an array element to
// complete.
const maxArrayBuffer = 8 << 20

// generateContentChunk is the subset of a Gemini-style array element the
// decoder reads.
type generateContentChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// generateContentText returns the text carried by a parsed element, if any.
func generateContentText(chunk *generateContentChunk) (string, bool) {
	if len(chunk.Candidates) == 0 {
		return "", false
	}
	parts := chunk.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", false
	}
	text := parts[0].Text
	return text, text != ""
}

// geminiDecoder consumes an unframed JSON array streamed as arbitrary byte
// chunks. Elements are cut out with the object scanner and the consumed
// prefix is compacted away so the buffer never regrows past the current
// partial element.
type geminiDecoder struct {
	buf    []byte
	usage  *Usage
	finish FinishReason
}

func (d *geminiDecoder) OnChunk(chunk []byte) ([]TextDelta, error) {
	d.buf = append(d.buf, chunk...)
	var deltas []TextDelta
	for {
		start := bytes.IndexByte(d.buf, '{')
		if start < 0 {
			// Only array punctuation so far; nothing to keep.
			d.buf = d.buf[:0]
			break
		}
		res := jsonscan.Locate(d.buf, start)
		if res.Outcome == jsonscan.Incomplete {
			d.compact(start)
			break
		}
		if res.Outcome == jsonscan.Invalid {
			log.Debugf("gemini decoder: skipping unscannable byte at %d: %s", start, res.Reason)
			d.compact(start + 1)
			continue
		}
		if text, ok := d.consumeElement(d.buf[res.Start : res.End+1]); ok && text != "" {
			deltas = append(deltas, TextDelta{Text: text})
		}
		d.compact(res.End + 1)
	}
	if len(d.buf) > maxArrayBuffer {
		return deltas, fmt.Errorf("gemini decoder: element exceeds %d bytes", maxArrayBuffer)
	}
	return deltas, nil
}

// compact discards the consumed prefix while keeping the backing array.
func (d *geminiDecoder) compact(upto int) {
	if upto <= 0 {
		return
	}
	if upto >= len(d.buf) {
		d.buf = d.buf[:0]
		return
	}
	n := copy(d.buf, d.buf[upto:])
	d.buf = d.buf[:n]
}

func (d *geminiDecoder) Finish() ([]TextDelta, error) {
	if rest := bytes.TrimLeft(d.buf, "[], \t\r\n"); len(rest) > 0 {
		log.Debugf("gemini decoder: dropping %d trailing bytes without a complete element", len(rest))
	}
	d.buf = nil
	return nil, nil
}

// consumeElement parses one complete array element, recording usage and
// finish reason as a side effect. Elements that do not decode are dropped.
func (d *geminiDecoder) consumeElement(element []byte) (string, bool) {
	var chunk generateContentChunk
	if err := json.Unmarshal(element, &chunk); err != nil {
		log.Debugf("gemini decoder: dropping malformed element (%d bytes): %v", len(element), err)
		return "", false
	}
	if chunk.UsageMetadata != nil {
		d.usage = &Usage{
			PromptTokens:     chunk.UsageMetadata.PromptTokenCount,
			CompletionTokens: chunk.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      chunk.UsageMetadata.TotalTokenCount,
		}
	}
	if len(chunk.Candidates) > 0 && chunk.Candidates[0].FinishReason != "" {
		d.finish = normalizeFinish(chunk.Candidates[0].FinishReason)
	}
	text, _ := generateContentText(&chunk)
	return text, true
}

func (d *geminiDecoder) Done() bool { return d.finish != FinishReasonNone }

func (d *geminiDecoder) Usage() *Usage { return d.usage }

func (d *geminiDecoder) FinishReason() FinishReason { return d.finish }
