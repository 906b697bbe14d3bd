package reactive

// Unbounded is the demand that disables backpressure. Outstanding demand
// saturates at this value and is never decremented once reached.
const Unbounded int64 = 1<<63 - 1

// Publisher is a provider of a potentially unbounded number of sequenced
// elements, publishing them according to the demand received from its
// Subscribers. Every Subscribe call starts an independent Subscription.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives OnSubscribe once, then OnNext up to the demand it
// signalled, then at most one of OnError or OnComplete.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(item T)
	OnError(err error)
	OnComplete()
}

// Subscription is the one-to-one lifecycle of a Subscriber with a Publisher.
// Both methods are safe to call from any goroutine, including from inside
// the Subscriber's own callbacks.
type Subscription interface {
	// Request adds n to the outstanding demand. A non-positive n terminates
	// the subscription with an error wrapping errors.ErrInvalidDemand.
	Request(n int64)

	// Cancel stops the subscription. It is idempotent.
	Cancel()
}

// Source produces the items a Tracker emits. Next and Close are only ever
// called by the goroutine currently draining the subscription, never
// concurrently.
type Source[T any] interface {
	// Next returns the next element and true, or zero value and false if no more elements.
	Next() (T, bool, error)
	// Close releases the source. It is called exactly once.
	Close() error
}

// SourceFunc adapts a plain function to a Source with a no-op Close.
type SourceFunc[T any] func() (T, bool, error)

// Next calls f.
func (f SourceFunc[T]) Next() (T, bool, error) {
	return f()
}

// Close does nothing.
func (f SourceFunc[T]) Close() error {
	return nil
}
