// Package session drives one streamed model response end to end: transport
// chunks go through the provider decoder, decoded text deltas feed the
// response parser, and the caller sees render-ready updates plus a final
// outcome.
//
// A session is single use and single writer: one goroutine calls Run (or
// consumes Stream) per session, so no internal locking is needed.
package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mdreader/llmstream/internal/decoder"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
	"github.com/mdreader/llmstream/internal/streamparse"
	"github.com/mdreader/llmstream/internal/streamutil"
)

// Options tunes one session.
type Options struct {
	// IdleTimeout aborts the stream when no bytes arrive for this long.
	// Zero disables idle detection.
	IdleTimeout time.Duration
}

// Update is one render-ready notification: the deltas a transport chunk
// produced and the parser view after applying them.
type Update struct {
	Deltas []decoder.TextDelta
	View   streamparse.Result
}

// Outcome is the terminal state of a finished session.
type Outcome struct {
	Result       streamparse.Result
	Usage        *decoder.Usage
	FinishReason decoder.FinishReason
	// Deltas is the ordered transcript of decoded text fragments, kept
	// for callers that run without an update callback.
	Deltas []decoder.TextDelta
}

// Event is one Stream notification. Updates arrive first; the last event
// carries either the Outcome or the fatal error.
type Event struct {
	Update  *Update
	Outcome *Outcome
	Err     error
}

// Session decodes and parses one streamed response.
type Session struct {
	id      string
	kind    provider.Kind
	dec     decoder.Decoder
	parser  *streamparse.Parser
	opts    Options
	watcher *streamutil.IdleWatcher
	deltas  []decoder.TextDelta
	started bool
}

// New builds a session for the given provider kind.
func New(kind provider.Kind, opts Options) (*Session, error) {
	dec, err := decoder.New(kind)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      uuid.NewString(),
		kind:    kind,
		dec:     dec,
		parser:  streamparse.New(),
		opts:    opts,
		watcher: streamutil.SharedIdleWatcher(),
	}, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Provider returns the provider kind the session decodes.
func (s *Session) Provider() provider.Kind {
	return s.kind
}

// Run pumps body to completion. onUpdate, when non-nil, receives every
// batch of decoded deltas in order. Cancellation and idle timeouts surface
// as a FatalError and stop emission. The session owns the body for the
// duration of Run: when it implements io.Closer it is closed on return,
// and earlier on cancellation to unblock a pending Read.
func (s *Session) Run(ctx context.Context, body io.Reader, onUpdate func(Update)) (*Outcome, error) {
	if s.started {
		return nil, errors.New("session: Run called twice")
	}
	s.started = true

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	handle := s.watcher.Watch(runCtx, s.opts.IdleTimeout, func() {
		cancel(ErrIdleTimeout)
	})
	defer handle.Done()

	r := streamutil.NewStreamReader(runCtx, body, func(int) { handle.Touch() })
	defer r.Close()

	bufp := streamutil.GetReadBuffer()
	defer streamutil.PutReadBuffer(bufp)
	buf := *bufp

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			deltas, err := s.dec.OnChunk(buf[:n])
			if err != nil {
				return nil, s.fail(runCtx, "decode", KindDecode, err)
			}
			s.apply(deltas, onUpdate)
			if s.dec.Done() {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, s.fail(runCtx, "read", KindTransport, readErr)
		}
	}

	tail, err := s.dec.Finish()
	if err != nil {
		return nil, s.fail(runCtx, "finish", KindDecode, err)
	}
	s.apply(tail, onUpdate)

	final := s.parser.Finalize()
	if final.Status == streamparse.StatusStreaming {
		// The stream ended cleanly without a command; for the session
		// that is a complete prose-only response.
		final.Status = streamparse.StatusComplete
	}
	log.Debugf("session %s: finished provider=%s status=%s", s.id, s.kind, final.Status)
	return &Outcome{
		Result:       final,
		Usage:        s.dec.Usage(),
		FinishReason: s.dec.FinishReason(),
		Deltas:       s.deltas,
	}, nil
}

// Stream is the channel form of Run. The channel closes after the terminal
// event.
func (s *Session) Stream(ctx context.Context, body io.Reader) <-chan Event {
	p := streamutil.NewPipeline[Event](ctx, 64)
	p.Go(func(runCtx context.Context) error {
		outcome, err := s.Run(runCtx, body, func(u Update) {
			p.Send(Event{Update: &u})
		})
		if err != nil {
			p.Send(Event{Err: err})
			return nil
		}
		p.Send(Event{Outcome: outcome})
		return nil
	})
	p.Start()
	return p.Out()
}

func (s *Session) apply(deltas []decoder.TextDelta, onUpdate func(Update)) {
	if len(deltas) == 0 {
		return
	}
	s.deltas = append(s.deltas, deltas...)
	var view streamparse.Result
	for _, d := range deltas {
		view = s.parser.ProcessChunk(d.Text)
	}
	if onUpdate != nil {
		onUpdate(Update{Deltas: deltas, View: view})
	}
}

// fail wraps err as a FatalError, reclassifying it by the cancel cause when
// the context ended first: a closed body reads as a transport error even
// when the real trigger was cancellation or an idle timeout.
func (s *Session) fail(ctx context.Context, op string, kind ErrorKind, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		switch {
		case errors.Is(cause, ErrIdleTimeout):
			kind, err = KindIdleTimeout, ErrIdleTimeout
		case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
			kind, err = KindCanceled, cause
		}
	}
	ferr := &FatalError{Kind: kind, Op: op, Err: err}
	log.Warnf("session %s: %s", s.id, ferr.Error())
	return ferr
}
