package reactive_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"pgregory.net/rapid"

	"github.com/vnykmshr/backflow/internal/testutil"
	bferrors "github.com/vnykmshr/backflow/pkg/common/errors"
	"github.com/vnykmshr/backflow/pkg/metrics"
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
	"github.com/vnykmshr/backflow/pkg/streaming/subscriber"
)

// countingSource yields 0, 1, 2, ... and optionally stops after limit items.
type countingSource struct {
	next    int
	limit   int // <0 = infinite
	failAt  int // 1-based read number that fails, 0 = never
	reads   atomic.Int64
	closes  atomic.Int64
	onRead  func()
	closeFn func() error
}

func (c *countingSource) Next() (int, bool, error) {
	n := c.reads.Add(1)
	if c.onRead != nil {
		c.onRead()
	}
	if c.failAt > 0 && int(n) == c.failAt {
		return 0, false, testutil.ErrSimulated
	}
	if c.limit >= 0 && c.next >= c.limit {
		return 0, false, nil
	}
	v := c.next
	c.next++
	return v, true, nil
}

func (c *countingSource) Close() error {
	c.closes.Add(1)
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func infinite() *countingSource { return &countingSource{limit: -1} }

func capped(n int64) reactive.Options {
	return reactive.Options{Name: "test", Capped: true, Cap: n}
}

func TestCapTenRequestThreeFourTimes(t *testing.T) {
	src := infinite()
	c := subscriber.NewCollector[int](0)
	reactive.Subscribe[int](c, src, capped(10))

	for i := 0; i < 3; i++ {
		c.Request(3)
	}
	testutil.AssertEqual(t, c.Count(), 9)
	testutil.AssertEqual(t, c.Completions(), 0)

	c.Request(3)
	testutil.AssertEqual(t, c.Count(), 10)
	testutil.AssertEqual(t, c.Completions(), 1)

	c.Request(3)
	testutil.AssertEqual(t, c.Count(), 10)
	testutil.AssertEqual(t, c.Completions(), 1)
	testutil.AssertEqual(t, c.LateSignals(), 0)
	testutil.AssertEqual(t, src.closes.Load(), int64(1))

	testutil.AssertSliceEqual(t, c.Items(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
}

func TestNeverEmitsAheadOfDemand(t *testing.T) {
	src := infinite()
	c := subscriber.NewCollector[int](0)
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	testutil.AssertEqual(t, c.Count(), 0)
	testutil.AssertEqual(t, src.reads.Load(), int64(0))

	tr.Request(2)
	testutil.AssertEqual(t, c.Count(), 2)
	testutil.AssertEqual(t, src.reads.Load(), int64(2))

	stats := tr.Stats()
	testutil.AssertEqual(t, stats.Requested, int64(2))
	testutil.AssertEqual(t, stats.Emitted, int64(2))
	testutil.AssertEqual(t, stats.Outstanding, int64(0))
	testutil.AssertEqual(t, tr.State(), reactive.Active)

	tr.Cancel()
}

func TestInvalidDemand(t *testing.T) {
	for _, n := range []int64{0, -1} {
		src := infinite()
		c := subscriber.NewCollector[int](0)
		tr := reactive.Subscribe[int](c, src, reactive.Options{})

		tr.Request(n)

		testutil.AssertEqual(t, c.Count(), 0)
		testutil.AssertEqual(t, c.Errors(), 1)
		testutil.AssertEqual(t, c.Completions(), 0)
		if !errors.Is(c.Err(), bferrors.ErrInvalidDemand) {
			t.Fatalf("Request(%d): expected ErrInvalidDemand, got %v", n, c.Err())
		}
		testutil.AssertEqual(t, tr.State(), reactive.Errored)
		testutil.AssertEqual(t, src.closes.Load(), int64(1))

		tr.Request(5)
		testutil.AssertEqual(t, c.Count(), 0)
		testutil.AssertEqual(t, src.reads.Load(), int64(0))
	}
}

func TestInvalidDemandAfterItems(t *testing.T) {
	c := subscriber.NewCollector[int](2)
	tr := reactive.Subscribe[int](c, infinite(), reactive.Options{})

	tr.Request(-1)

	testutil.AssertEqual(t, c.Count(), 2)
	testutil.AssertEqual(t, c.Errors(), 1)
}

func TestCancelIsIdempotent(t *testing.T) {
	src := infinite()
	c := subscriber.NewCollector[int](1)
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	tr.Cancel()
	testutil.AssertEqual(t, tr.State(), reactive.Cancelled)
	testutil.AssertEqual(t, src.closes.Load(), int64(1))

	tr.Cancel()
	testutil.AssertEqual(t, tr.State(), reactive.Cancelled)
	testutil.AssertEqual(t, src.closes.Load(), int64(1))

	tr.Request(10)
	testutil.AssertEqual(t, c.Count(), 1)
	testutil.AssertEqual(t, c.Completions()+c.Errors(), 0)
}

func TestCancelAfterCompleteKeepsCompleted(t *testing.T) {
	src := &countingSource{limit: 2}
	c := subscriber.NewCollector[int](5)
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	testutil.AssertEqual(t, tr.State(), reactive.Completed)
	tr.Cancel()
	testutil.AssertEqual(t, tr.State(), reactive.Completed)
	testutil.AssertEqual(t, src.closes.Load(), int64(1))
}

func TestCancelFromOnNext(t *testing.T) {
	src := infinite()
	c := subscriber.NewCollector[int](0)
	c.OnItem = func(item int) {
		if item == 2 {
			c.Cancel()
		}
	}
	reactive.Subscribe[int](c, src, reactive.Options{})

	c.Request(100)

	testutil.AssertEqual(t, c.Count(), 3)
	testutil.AssertEqual(t, src.reads.Load(), int64(3))
	testutil.AssertEqual(t, src.closes.Load(), int64(1))
}

func TestReentrantRequestFromOnNext(t *testing.T) {
	c := subscriber.NewCollector[int](0)
	c.OnItem = func(int) { c.Request(1) }
	reactive.Subscribe[int](c, infinite(), capped(50))

	c.Request(1)

	// Re-entrant requests are folded into the running drain rather than recursing.
	testutil.AssertEqual(t, c.Count(), 50)
	testutil.AssertEqual(t, c.Completions(), 1)
}

func TestReentrantRequestFromOnComplete(t *testing.T) {
	var tr *reactive.Tracker[int]
	completes := 0
	sub := &subscriber.Func[int]{
		Initial: 5,
		OnCompleteFn: func() {
			completes++
			tr.Request(1)
			tr.Request(-1)
		},
	}
	tr = reactive.NewTracker[int](sub, &countingSource{limit: 1}, reactive.Options{})
	sub.OnSubscribe(tr)

	testutil.AssertEqual(t, completes, 1)
	testutil.AssertEqual(t, tr.State(), reactive.Completed)
}

func TestReentrantRequestFromOnError(t *testing.T) {
	var tr *reactive.Tracker[int]
	errs := 0
	sub := &subscriber.Func[int]{
		OnErrorFn: func(error) {
			errs++
			tr.Request(-5)
		},
	}
	tr = reactive.NewTracker[int](sub, infinite(), reactive.Options{})

	tr.Request(0)

	testutil.AssertEqual(t, errs, 1)
}

func TestSourceErrorPropagates(t *testing.T) {
	src := &countingSource{limit: -1, failAt: 3}
	c := subscriber.NewCollector[int](10)
	reactive.Subscribe[int](c, src, reactive.Options{})

	testutil.AssertEqual(t, c.Count(), 2)
	testutil.AssertEqual(t, c.Errors(), 1)
	if !errors.Is(c.Err(), testutil.ErrSimulated) {
		t.Fatalf("expected ErrSimulated, got %v", c.Err())
	}
	testutil.AssertEqual(t, src.closes.Load(), int64(1))
}

func TestCloseFailureAttachedToResourceError(t *testing.T) {
	closeErr := errors.New("close boom")
	cause := errors.New("disk gone")
	read := 0
	src := &closingSource{
		next: func() (string, bool, error) {
			read++
			if read == 2 {
				return "", false, bferrors.NewResourceError("read", "mem", cause)
			}
			return "line", true, nil
		},
		close: func() error { return closeErr },
	}
	c := subscriber.NewCollector[string](5)
	reactive.Subscribe[string](c, src, reactive.Options{})

	testutil.AssertEqual(t, c.Count(), 1)
	if !errors.Is(c.Err(), cause) {
		t.Fatalf("original cause must survive, got %v", c.Err())
	}
	var rerr *bferrors.ResourceError
	if !errors.As(c.Err(), &rerr) {
		t.Fatalf("expected *ResourceError, got %T", c.Err())
	}
	if rerr.CloseErr != closeErr {
		t.Fatalf("CloseErr = %v, want %v", rerr.CloseErr, closeErr)
	}
}

type closingSource struct {
	next  func() (string, bool, error)
	close func() error
}

func (s *closingSource) Next() (string, bool, error) { return s.next() }
func (s *closingSource) Close() error                { return s.close() }

func TestUnboundedDemand(t *testing.T) {
	src := &countingSource{limit: 1000}
	c := subscriber.NewCollector[int](reactive.Unbounded)
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	testutil.AssertEqual(t, c.Count(), 1000)
	testutil.AssertEqual(t, c.Completions(), 1)
	testutil.AssertEqual(t, tr.Stats().Outstanding, reactive.Unbounded)

	// Further demand after saturation stays saturated.
	tr.Request(reactive.Unbounded)
}

func TestZeroCapCompletesOnFirstRequest(t *testing.T) {
	src := infinite()
	c := subscriber.NewCollector[int](0)
	reactive.Subscribe[int](c, src, capped(0))

	testutil.AssertEqual(t, c.Completions(), 0)
	c.Request(1)
	testutil.AssertEqual(t, c.Completions(), 1)
	testutil.AssertEqual(t, src.reads.Load(), int64(0))
}

func TestConcurrentRequestsWithCancel(t *testing.T) {
	const workers = 16
	const perWorker = 50

	src := infinite()
	c := subscriber.NewCollector[int](0)
	var afterCancel atomic.Int64
	var cancelled atomic.Bool
	c.OnItem = func(int) {
		if cancelled.Load() {
			afterCancel.Add(1)
		}
	}
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perWorker; i++ {
				tr.Request(1)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		tr.Cancel()
		cancelled.Store(true)
	}()
	close(start)
	wg.Wait()

	// At most one item can be in flight while the cancel flag is raised.
	if n := afterCancel.Load(); n > 1 {
		t.Fatalf("%d items delivered after cancellation was observed", n)
	}
	count := c.Count()
	if count > workers*perWorker {
		t.Fatalf("delivered %d items, more than requested", count)
	}
	// A read that completes after cancellation is dropped, never delivered.
	if unread := src.reads.Load() - int64(count); unread < 0 || unread > 1 {
		t.Fatalf("reads=%d delivered=%d", src.reads.Load(), count)
	}
	testutil.AssertEqual(t, src.closes.Load(), int64(1))
	testutil.AssertEqual(t, c.Completions()+c.Errors(), 0)
	testutil.AssertEqual(t, tr.State(), reactive.Cancelled)

	before := c.Count()
	tr.Request(10)
	testutil.AssertEqual(t, c.Count(), before)
}

func TestConcurrentRequestsDeliverExactlyDemand(t *testing.T) {
	const workers = 8
	const perWorker = 100

	src := infinite()
	var inFlight, maxInFlight atomic.Int64
	c := subscriber.NewCollector[int](0)
	c.OnItem = func(int) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		inFlight.Add(-1)
	}
	tr := reactive.Subscribe[int](c, src, reactive.Options{})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr.Request(1)
			}
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, c.Count(), workers*perWorker)
	testutil.AssertEqual(t, maxInFlight.Load(), int64(1))

	items := c.Items()
	for i, v := range items {
		if v != i {
			t.Fatalf("item %d = %d, delivered out of order", i, v)
		}
	}
	tr.Cancel()
}

func TestMetricsRecorded(t *testing.T) {
	registry := metrics.NewRegistry(prometheus.NewRegistry())
	opts := capped(3)
	opts.Name = "metered"
	opts.Metrics = registry

	c := subscriber.NewCollector[int](5)
	reactive.Subscribe[int](c, infinite(), opts)

	testutil.AssertEqual(t, promtest.ToFloat64(registry.SubscriptionsStarted.WithLabelValues("metered")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.DemandRequested.WithLabelValues("metered")), 5.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.ItemsEmitted.WithLabelValues("metered")), 3.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.Terminations.WithLabelValues("metered", "completed")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.SubscriptionsActive.WithLabelValues("metered")), 0.0)
}

func TestSubscriptionIDsAreUnique(t *testing.T) {
	a := reactive.NewTracker[int](subscriber.NewCollector[int](0), infinite(), reactive.Options{})
	b := reactive.NewTracker[int](subscriber.NewCollector[int](0), infinite(), reactive.Options{})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("ids not unique: %q %q", a.ID(), b.ID())
	}
}

func TestNilSubscriberPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	reactive.NewTracker[int](nil, infinite(), reactive.Options{})
}

func TestBoundedDeliveryProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.Int64Range(0, 40).Draw(rt, "cap")
		requests := rapid.SliceOfN(rapid.Int64Range(1, 15), 1, 20).Draw(rt, "requests")

		var total int64
		for _, n := range requests {
			total += n
		}
		if total < limit {
			requests = append(requests, limit-total)
		}

		c := subscriber.NewCollector[int](0)
		tr := reactive.Subscribe[int](c, infinite(), capped(limit))
		for _, n := range requests {
			tr.Request(n)
		}

		if int64(c.Count()) != limit {
			rt.Fatalf("delivered %d items, want %d", c.Count(), limit)
		}
		if c.Completions() != 1 || c.Errors() != 0 {
			rt.Fatalf("completions=%d errors=%d", c.Completions(), c.Errors())
		}
		tr.Request(1)
		if int64(c.Count()) != limit || c.LateSignals() != 0 {
			rt.Fatalf("signals after completion")
		}
	})
}
