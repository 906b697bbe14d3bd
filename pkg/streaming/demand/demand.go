package demand

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vnykmshr/backflow/pkg/common/validation"
	"github.com/vnykmshr/backflow/pkg/logging"
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Stateful is implemented by subscriptions that expose their lifecycle
// state, such as *reactive.Tracker.
type Stateful interface {
	State() reactive.State
}

// terminated reports whether sub is known to be in a terminal state.
func terminated(sub reactive.Subscription) bool {
	s, ok := sub.(Stateful)
	return ok && s.State().Terminal()
}

// parser accepts an optional seconds field and descriptors such as @every.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Paced calls sub.Request(n) each time the cron spec fires. A tick that
// arrives while the previous Request is still draining is skipped.
//
// Paced blocks until ctx is done, returning ctx.Err(), or until sub
// terminates, returning nil.
func Paced(ctx context.Context, sub reactive.Subscription, spec string, n int64, logger logging.Logger) error {
	if err := validation.ValidatePositive("demand", "n", n); err != nil {
		return err
	}
	schedule, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression '%s': %w", spec, err)
	}
	if terminated(sub) {
		return nil
	}

	logger = logging.OrNop(logger)
	cl := cronLogger{logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	done := make(chan struct{})
	var closed bool
	c.Schedule(schedule, cron.FuncJob(func() {
		if closed {
			return
		}
		logger.Debug("paced request", "n", n)
		sub.Request(n)
		if terminated(sub) {
			closed = true
			close(done)
		}
	}))

	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Throttled calls sub.Request(1) up to total times, waiting for a token
// from a limiter of the given rate and burst before each call. limit must
// be positive or rate.Inf.
func Throttled(ctx context.Context, sub reactive.Subscription, limit rate.Limit, burst int, total int64) error {
	if limit != rate.Inf {
		if err := validation.ValidatePositiveFloat("demand", "limit", float64(limit)); err != nil {
			return err
		}
	}
	if err := validation.ValidatePositive("demand", "burst", int64(burst)); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("demand", "total", total); err != nil {
		return err
	}

	limiter := rate.NewLimiter(limit, burst)
	for i := int64(0); i < total; i++ {
		if terminated(sub) {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		sub.Request(1)
	}
	return nil
}

// FanOut starts workers goroutines that each call sub.Request(1)
// perWorker times, and waits for all of them.
func FanOut(ctx context.Context, sub reactive.Subscription, workers int, perWorker int64) error {
	if err := validation.ValidatePositive("demand", "workers", int64(workers)); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("demand", "perWorker", perWorker); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := int64(0); i < perWorker; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if terminated(sub) {
					return nil
				}
				sub.Request(1)
			}
			return nil
		})
	}
	return g.Wait()
}

// cronLogger adapts a logging.Logger to cron.Logger.
type cronLogger struct {
	l logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
