// Package streamutil carries the transport-facing plumbing shared by
// streaming sessions: a fan-in pipeline, idle detection, pooled read
// buffers, and content-encoding unwrapping.
package streamutil

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pipeline fans values from producer goroutines into one channel, with
// errgroup lifecycle: the first producer error cancels the rest, and Out
// closes once every producer has returned.
type Pipeline[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	out    chan T

	startOnce sync.Once
	err       error
}

// NewPipeline builds a pipeline whose output channel buffers up to size
// values.
func NewPipeline[T any](parent context.Context, size int) *Pipeline[T] {
	if size <= 0 {
		size = 64
	}
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	return &Pipeline[T]{
		ctx:    gctx,
		cancel: cancel,
		group:  group,
		out:    make(chan T, size),
	}
}

// Go starts a producer. An error return cancels the pipeline context for
// all producers.
func (p *Pipeline[T]) Go(fn func(ctx context.Context) error) {
	p.group.Go(func() error {
		return fn(p.ctx)
	})
}

// Send delivers one value, or reports false when the pipeline is canceled.
func (p *Pipeline[T]) Send(v T) bool {
	select {
	case p.out <- v:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Out returns the output channel. It closes after Start once all producers
// finish.
func (p *Pipeline[T]) Out() <-chan T {
	return p.out
}

// Start arranges for Out to close when every producer has returned. Call it
// after the last Go.
func (p *Pipeline[T]) Start() {
	p.startOnce.Do(func() {
		go func() {
			p.err = p.group.Wait()
			close(p.out)
			p.cancel()
		}()
	})
}

// Err returns the first producer error. It is valid once Out has closed.
func (p *Pipeline[T]) Err() error {
	return p.err
}

// Cancel stops the pipeline without waiting for producers.
func (p *Pipeline[T]) Cancel() {
	p.cancel()
}
