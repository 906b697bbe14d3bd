package subscriber

import (
	"context"
	"sync"

	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Collector is a thread-safe Subscriber that records every signal it
// receives. It is meant for tests and for draining small publishers.
// Create it with NewCollector.
type Collector[T any] struct {
	// Initial is requested from OnSubscribe when positive.
	Initial int64

	// OnItem, if set, runs after each item is recorded, outside the lock.
	// It may call back into the subscription.
	OnItem func(item T)

	mu        sync.Mutex
	sub       reactive.Subscription
	items     []T
	err       error
	completes int
	errors    int
	late      int
	done      chan struct{}
	doneOnce  sync.Once
}

var _ reactive.Subscriber[int] = (*Collector[int])(nil)

// NewCollector creates a Collector that requests initial items on subscribe.
func NewCollector[T any](initial int64) *Collector[T] {
	return &Collector[T]{
		Initial: initial,
		done:    make(chan struct{}),
	}
}

// OnSubscribe implements reactive.Subscriber.
func (c *Collector[T]) OnSubscribe(s reactive.Subscription) {
	c.mu.Lock()
	c.sub = s
	c.mu.Unlock()

	if c.Initial > 0 {
		s.Request(c.Initial)
	}
}

// OnNext implements reactive.Subscriber.
func (c *Collector[T]) OnNext(item T) {
	c.mu.Lock()
	if c.terminatedLocked() {
		c.late++
	}
	c.items = append(c.items, item)
	hook := c.OnItem
	c.mu.Unlock()

	if hook != nil {
		hook(item)
	}
}

// OnError implements reactive.Subscriber.
func (c *Collector[T]) OnError(err error) {
	c.mu.Lock()
	if c.terminatedLocked() {
		c.late++
	}
	c.errors++
	c.err = err
	c.mu.Unlock()
	c.finish()
}

// OnComplete implements reactive.Subscriber.
func (c *Collector[T]) OnComplete() {
	c.mu.Lock()
	if c.terminatedLocked() {
		c.late++
	}
	c.completes++
	c.mu.Unlock()
	c.finish()
}

func (c *Collector[T]) terminatedLocked() bool {
	return c.completes+c.errors > 0
}

func (c *Collector[T]) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Subscription returns the subscription received in OnSubscribe, or nil.
func (c *Collector[T]) Subscription() reactive.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub
}

// Request forwards n to the subscription. It panics before OnSubscribe.
func (c *Collector[T]) Request(n int64) {
	c.Subscription().Request(n)
}

// Cancel cancels the subscription. It panics before OnSubscribe.
func (c *Collector[T]) Cancel() {
	c.Subscription().Cancel()
}

// Items returns a copy of the received items in delivery order.
func (c *Collector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of received items.
func (c *Collector[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Err returns the error delivered through OnError, if any.
func (c *Collector[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Completions returns how many times OnComplete was called.
func (c *Collector[T]) Completions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completes
}

// Errors returns how many times OnError was called.
func (c *Collector[T]) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}

// LateSignals returns how many signals arrived after a terminal signal.
// A correct publisher never produces any.
func (c *Collector[T]) LateSignals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.late
}

// Done is closed once a terminal signal arrives.
func (c *Collector[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until a terminal signal arrives or ctx is done, and returns
// the delivered error or ctx.Err().
func (c *Collector[T]) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
