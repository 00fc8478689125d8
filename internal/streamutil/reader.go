package streamutil

import (
	"context"
	"io"
	"sync"
)

// StreamReader wraps a response body with context awareness. Once the
// context goes down the underlying body is closed to unblock a pending
// Read, and subsequent reads return the cancellation cause instead of the
// confusing "closed body" error the transport would report. Each chunk
// delivered notifies the activity hook, which feeds idle detection.
type StreamReader struct {
	ctx       context.Context
	body      io.Reader
	onRead    func(n int)
	closeOnce sync.Once
	stopClose func() bool
}

// NewStreamReader wires body to ctx. onRead may be nil.
func NewStreamReader(ctx context.Context, body io.Reader, onRead func(n int)) *StreamReader {
	r := &StreamReader{ctx: ctx, body: body, onRead: onRead}
	r.stopClose = context.AfterFunc(ctx, r.closeBody)
	return r
}

// Read reads from the body. When the context has ended it returns
// context.Cause(ctx), also overriding read errors produced by the
// cancellation-triggered close of the body.
func (r *StreamReader) Read(p []byte) (int, error) {
	if r.ctx.Err() != nil {
		return 0, context.Cause(r.ctx)
	}
	n, err := r.body.Read(p)
	if n > 0 && r.onRead != nil {
		r.onRead(n)
	}
	if err != nil && err != io.EOF && r.ctx.Err() != nil {
		return n, context.Cause(r.ctx)
	}
	return n, err
}

// Close closes the underlying body once and detaches from the context.
func (r *StreamReader) Close() error {
	r.stopClose()
	r.closeBody()
	return nil
}

func (r *StreamReader) closeBody() {
	r.closeOnce.Do(func() {
		if c, ok := r.body.(io.Closer); ok {
			_ = c.Close()
		}
	})
}
