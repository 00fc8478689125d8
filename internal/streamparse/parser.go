// Package streamparse accumulates streamed response text and separates the
// prose from an embedded editor command. Detection fixes the command start
// once per session: the first introduction pattern to hit pins both the
// matcher kind and the byte offset, and only Reset unpins them. The phase
// moves monotonically from no command through command opening to command
// complete, and a completed command is cached and never overwritten.
//
// A Parser serves one response on one goroutine; it has no internal
// locking.
package streamparse

import (
	"bytes"

	"github.com/mdreader/llmstream/internal/jsonscan"
	log "github.com/mdreader/llmstream/internal/logging"
)

type fixState struct {
	kind  MatcherKind
	start int
	fixed bool
}

// Parser is the streaming response parser. The zero value is ready to use.
type Parser struct {
	buf     []byte
	phase   Phase
	fix     fixState
	scan    *jsonscan.State
	command *Command
	raw     string
	reason  string
	final   *Result
}

// New returns a parser for one response session.
func New() *Parser {
	return &Parser{}
}

// ProcessChunk appends streamed text and returns the updated view. The
// buffer is append-only; nothing is discarded until Reset.
func (p *Parser) ProcessChunk(text string) Result {
	p.buf = append(p.buf, text...)
	if !p.fix.fixed {
		p.tryFix()
	}
	if p.fix.fixed && p.phase == PhaseCommandOpening {
		p.tryExtract()
	}
	return p.result(StatusStreaming)
}

// Finalize closes the session once the stream ends. It is idempotent: the
// first call computes the terminal result and later calls return it
// unchanged. The result is StatusComplete exactly when a command was
// extracted; otherwise the status stays StatusStreaming and the caller
// decides what a clean end without a command means.
func (p *Parser) Finalize() Result {
	if p.final != nil {
		return *p.final
	}
	if p.fix.fixed && p.phase != PhaseCommandComplete {
		p.finalExtract()
	}
	status := StatusStreaming
	if p.command != nil {
		status = StatusComplete
	} else if p.fix.fixed {
		reason := p.reason
		if reason == "" {
			reason = "command region never closed"
		}
		log.Debugf("stream parser: %s matcher at %d failed: %s", p.fix.kind, p.fix.start, reason)
	}
	res := p.result(status)
	p.final = &res
	return res
}

// Reset clears all session state. It is the only way the phase moves
// backward.
func (p *Parser) Reset() {
	*p = Parser{}
}

// Phase returns the current detection phase.
func (p *Parser) Phase() Phase {
	return p.phase
}

// Command returns the cached command, if extraction completed.
func (p *Parser) Command() *Command {
	return p.command
}

// CommandRaw returns the raw JSON text the cached command was parsed from.
func (p *Parser) CommandRaw() string {
	return p.raw
}

func (p *Parser) tryFix() {
	for _, m := range matchers {
		start, ok := m.find(p.buf)
		if !ok {
			continue
		}
		p.fix = fixState{kind: m.kind, start: start, fixed: true}
		p.phase = PhaseCommandOpening
		if m.kind == MatchRawJSON {
			p.scan = jsonscan.NewState(start)
		}
		return
	}
}

// tryExtract attempts to close the fixed command region with the bytes
// available so far.
func (p *Parser) tryExtract() {
	switch p.fix.kind {
	case MatchRawJSON:
		res := p.scan.Scan(p.buf)
		if res.Outcome == jsonscan.Complete {
			p.evaluate(string(p.buf[res.Start : res.End+1]))
		}
	case MatchFenced:
		bodyStart, ok := fenceBodyStart(p.buf, p.fix.start)
		if !ok {
			return
		}
		body := p.buf[bodyStart:]
		rel := bytes.Index(body, fenceMarker)
		if rel < 0 {
			return
		}
		p.evaluate(fencedRaw(body[:rel]))
	case MatchEscapedJSON:
		p.evaluate(unescapeJSONText(string(p.buf[p.fix.start:])))
	}
}

// finalExtract relaxes the fenced rule at end of stream: a body whose
// closing fence never arrived is still tried as a bare object.
func (p *Parser) finalExtract() {
	if p.fix.kind != MatchFenced {
		p.tryExtract()
		return
	}
	bodyStart, ok := fenceBodyStart(p.buf, p.fix.start)
	if !ok {
		return
	}
	body := p.buf[bodyStart:]
	if rel := bytes.Index(body, fenceMarker); rel >= 0 {
		body = body[:rel]
	}
	p.evaluate(fencedRaw(body))
}

func fencedRaw(body []byte) string {
	body = bytes.TrimSpace(body)
	if bytes.HasPrefix(body, escapedMarker) {
		return unescapeJSONText(string(body))
	}
	return string(body)
}

// evaluate folds a candidate into the session. Valid candidates advance the
// phase and are cached once; invalid ones record the reason and leave the
// phase open for Finalize to report.
func (p *Parser) evaluate(raw string) {
	cand := parseCandidate(raw)
	switch cand.State {
	case CandidateValid:
		if p.command == nil {
			p.command = cand.Command
			p.raw = cand.Raw
		}
		p.phase = PhaseCommandComplete
		p.reason = ""
	case CandidateInvalid:
		p.reason = cand.Reason
	}
}

func (p *Parser) result(status Status) Result {
	display := p.buf
	if p.fix.fixed {
		display = p.buf[:p.fix.start]
	}
	return Result{
		DisplayContent: cleanDisplay(string(display)),
		InJSON:         p.phase != PhaseNoCommand,
		FunctionCall:   p.command,
		Buffer:         string(p.buf),
		Status:         status,
	}
}
