package reactive

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	bferrors "github.com/vnykmshr/backflow/pkg/common/errors"
	"github.com/vnykmshr/backflow/pkg/logging"
	"github.com/vnykmshr/backflow/pkg/metrics"
)

// Options configures a Tracker.
type Options struct {
	// Name identifies the publisher in logs and metrics.
	Name string

	// Capped enables Cap as an upper bound on emitted items.
	Capped bool

	// Cap is the number of items after which the subscription completes.
	// Ignored unless Capped is set.
	Cap int64

	// Logger receives lifecycle events. Nil discards them.
	Logger logging.Logger

	// Metrics records lifecycle counters. Nil disables them.
	Metrics *metrics.Registry
}

// Stats is a snapshot of a subscription's demand accounting.
type Stats struct {
	// Requested is the total demand signalled through valid Request calls.
	Requested int64

	// Emitted is the number of items delivered through OnNext.
	Emitted int64

	// Outstanding is the demand granted but not yet fulfilled.
	Outstanding int64
}

// Tracker is the demand engine behind every Subscription: it accumulates
// demand, runs a single drain at a time, and owns the terminal state.
type Tracker[T any] struct {
	id         string
	name       string
	subscriber Subscriber[T]
	source     Source[T]
	capped     bool
	cap        int64
	logger     logging.Logger
	metrics    *metrics.Registry

	demand    atomic.Int64 // outstanding
	requested atomic.Int64 // cumulative, for Stats
	emitted   atomic.Int64
	wip       atomic.Int64
	state     atomic.Int32
	cancelled atomic.Bool
	invalid   atomic.Pointer[bferrors.ValidationError]

	released bool // drain-owned
}

// NewTracker creates a Tracker delivering items from source to subscriber.
// It does not call OnSubscribe; use Subscribe for that.
func NewTracker[T any](subscriber Subscriber[T], source Source[T], opts Options) *Tracker[T] {
	if subscriber == nil {
		panic("reactive: nil subscriber")
	}
	if source == nil {
		panic("reactive: nil source")
	}

	id := uuid.NewString()
	return &Tracker[T]{
		id:         id,
		name:       opts.Name,
		subscriber: subscriber,
		source:     source,
		capped:     opts.Capped,
		cap:        opts.Cap,
		logger:     logging.With(logging.OrNop(opts.Logger), "publisher", opts.Name, "subscription", id),
		metrics:    opts.Metrics,
	}
}

// Subscribe creates a Tracker, hands it to subscriber through OnSubscribe
// and returns it.
func Subscribe[T any](subscriber Subscriber[T], source Source[T], opts Options) *Tracker[T] {
	t := NewTracker(subscriber, source, opts)
	t.metrics.SubscriptionStarted(t.name)
	t.logger.Debug("subscription started")
	subscriber.OnSubscribe(t)
	return t
}

// ID returns the unique identifier of the subscription.
func (t *Tracker[T]) ID() string {
	return t.id
}

// State returns the current lifecycle state.
func (t *Tracker[T]) State() State {
	return State(t.state.Load())
}

// Stats returns a snapshot of the demand accounting.
func (t *Tracker[T]) Stats() Stats {
	return Stats{
		Requested:   t.requested.Load(),
		Emitted:     t.emitted.Load(),
		Outstanding: t.demand.Load(),
	}
}

// Request implements Subscription.
func (t *Tracker[T]) Request(n int64) {
	if t.State() != Active {
		return
	}
	if n <= 0 {
		t.invalid.CompareAndSwap(nil, bferrors.NewDemandError("reactive", n))
		t.drain()
		return
	}

	t.logger.Debug("demand requested", "n", n)
	t.metrics.Requested(t.name, n)
	addCap(&t.requested, n)
	addCap(&t.demand, n)
	t.drain()
}

// Cancel implements Subscription.
func (t *Tracker[T]) Cancel() {
	if !t.cancelled.CompareAndSwap(false, true) {
		return
	}
	if t.state.CompareAndSwap(int32(Active), int32(Cancelled)) {
		t.logger.Info("subscription cancelled", "emitted", t.emitted.Load())
		t.metrics.Terminated(t.name, Cancelled.String())
	}
	t.drain()
}

// addCap adds n to v, saturating at Unbounded.
func addCap(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if cur == Unbounded {
			return
		}
		next := cur + n
		if next < 0 {
			next = Unbounded
		}
		if v.CompareAndSwap(cur, next) {
			return
		}
	}
}

// drain runs the emission loop if no other goroutine is running it.
// Callers that lose the race leave their work to the current owner, which
// re-runs the loop until every missed call has been observed.
func (t *Tracker[T]) drain() {
	if t.wip.Add(1) != 1 {
		return
	}

	missed := int64(1)
	for {
		if t.emit() {
			// Terminal: wip stays non-zero so no drain ever starts again.
			return
		}
		missed = t.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

// emit delivers items while demand lasts. It reports true once the
// subscription has terminated and its source has been released.
func (t *Tracker[T]) emit() bool {
	for {
		if t.cancelled.Load() {
			t.release()
			return true
		}
		if verr := t.invalid.Load(); verr != nil {
			t.terminate(Errored, verr)
			return true
		}
		if t.capped && t.emitted.Load() >= t.cap {
			t.terminate(Completed, nil)
			return true
		}
		if t.demand.Load() == 0 {
			return false
		}

		item, ok, err := t.source.Next()
		if t.cancelled.Load() {
			t.release()
			return true
		}
		if err != nil {
			t.terminate(Errored, err)
			return true
		}
		if !ok {
			t.terminate(Completed, nil)
			return true
		}

		if t.demand.Load() != Unbounded {
			t.demand.Add(-1)
		}
		t.emitted.Add(1)
		t.metrics.Emitted(t.name)
		t.subscriber.OnNext(item)
	}
}

// release closes the source once. Only the drain owner calls it.
func (t *Tracker[T]) release() error {
	if t.released {
		return nil
	}
	t.released = true

	err := t.source.Close()
	if err != nil {
		t.logger.Warn("source close failed", "error", err)
	}
	return err
}

// terminate releases the source, moves to the terminal state and then
// delivers the matching signal. The state change happens before the
// callback so re-entrant calls from the callback observe a terminal state.
func (t *Tracker[T]) terminate(to State, cause error) {
	closeErr := t.release()

	if !t.state.CompareAndSwap(int32(Active), int32(to)) {
		if t.State() == Cancelled {
			return
		}
		t.violation("terminal signal " + to.String() + " after " + t.State().String())
		return
	}
	t.metrics.Terminated(t.name, to.String())

	switch to {
	case Completed:
		t.logger.Info("subscription completed", "emitted", t.emitted.Load())
		t.subscriber.OnComplete()
	case Errored:
		if closeErr != nil {
			var rerr *bferrors.ResourceError
			if errors.As(cause, &rerr) && rerr.CloseErr == nil {
				rerr.WithCloseErr(closeErr)
			}
		}
		t.logger.Error("subscription failed", "error", cause, "emitted", t.emitted.Load())
		t.subscriber.OnError(cause)
	}
}

// violation reports a broken contract. It never returns.
func (t *Tracker[T]) violation(detail string) {
	t.metrics.Violation(t.name)
	t.logger.Error("protocol violation", "detail", detail)
	panic(&bferrors.ProtocolViolationError{Subscription: t.id, Detail: detail})
}
