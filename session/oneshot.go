package session

import (
	"context"
	"sync/atomic"

	"github.com/mediadeck/signinkit/identity"
	"github.com/pkg/errors"
)

// completion bridges a callback-style provider API into a single-resumption
// wait point. The first resume wins; later resumes are ignored. A provider
// that never resumes leaves await pending until the context is cancelled.
type completion[T any] struct {
	ch   chan T
	done atomic.Bool
}

func newCompletion[T any]() *completion[T] {
	return &completion[T]{ch: make(chan T, 1)}
}

// resume delivers the value. Returns false when the completion had already
// been resumed.
func (c *completion[T]) resume(v T) bool {
	if !c.done.CompareAndSwap(false, true) {
		return false
	}
	c.ch <- v
	return true
}

// await blocks until the completion is resumed or the context ends.
func (c *completion[T]) await(ctx context.Context) (T, error) {
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, errors.Wrap(ctx.Err(), "awaiting provider completion")
	}
}

// providerResult is the pair a provider callback delivers.
type providerResult struct {
	id  *identity.Identity
	err error
}
