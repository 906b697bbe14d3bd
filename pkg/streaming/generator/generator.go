package generator

import (
	"github.com/vnykmshr/backflow/pkg/common/validation"
	"github.com/vnykmshr/backflow/pkg/logging"
	"github.com/vnykmshr/backflow/pkg/metrics"
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Generate synthesizes the item at position seq, starting from zero.
type Generate[T any] func(seq int64) T

// Factory creates the Generate used by one subscription.
type Factory[T any] func() Generate[T]

// Stateless returns a Factory that hands the same function to every
// subscription. Use it only for functions without mutable state.
func Stateless[T any](fn Generate[T]) Factory[T] {
	return func() Generate[T] { return fn }
}

// Config holds configuration for a generator Publisher.
type Config struct {
	// Name identifies the publisher in logs and metrics.
	Name string

	// Logger receives lifecycle events. Nil discards them.
	Logger logging.Logger

	// Metrics controls Prometheus instrumentation.
	Metrics metrics.Config
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "generator",
		Logger: logging.Nop(),
	}
}

// Publisher emits count generated items per subscription, then completes.
type Publisher[T any] struct {
	count    int64
	factory  Factory[T]
	config   Config
	registry *metrics.Registry
}

var _ reactive.Publisher[int] = (*Publisher[int])(nil)

// New creates a Publisher producing count items per subscription.
func New[T any](count int64, factory Factory[T], config Config) (*Publisher[T], error) {
	if err := validation.ValidateNonNegative("generator", "count", count); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, validation.ValidateNotNil("generator", "factory", nil)
	}
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	config.Logger = logging.OrNop(config.Logger)

	return &Publisher[T]{
		count:    count,
		factory:  factory,
		config:   config,
		registry: config.Metrics.Build(),
	}, nil
}

// Range creates a Publisher of count consecutive integers starting at start.
func Range(start, count int64) (*Publisher[int64], error) {
	cfg := DefaultConfig()
	cfg.Name = "range"
	return New(count, Stateless(func(seq int64) int64 { return start + seq }), cfg)
}

// Count returns the number of items each subscription receives.
func (p *Publisher[T]) Count() int64 {
	return p.count
}

// Subscribe implements reactive.Publisher.
func (p *Publisher[T]) Subscribe(s reactive.Subscriber[T]) {
	p.SubscribeTracked(s)
}

// SubscribeTracked subscribes s and returns the tracker for inspection.
func (p *Publisher[T]) SubscribeTracked(s reactive.Subscriber[T]) *reactive.Tracker[T] {
	src := &source[T]{generate: p.factory(), logger: p.config.Logger}
	return reactive.Subscribe[T](s, src, reactive.Options{
		Name:    p.config.Name,
		Capped:  true,
		Cap:     p.count,
		Logger:  p.config.Logger,
		Metrics: p.registry,
	})
}

// source adapts a Generate to reactive.Source. The tracker enforces the
// count, so the source itself never ends.
type source[T any] struct {
	generate Generate[T]
	seq      int64
	logger   logging.Logger
}

func (s *source[T]) Next() (T, bool, error) {
	item := s.generate(s.seq)
	s.logger.Debug("generated item", "seq", s.seq)
	s.seq++
	return item, true, nil
}

func (s *source[T]) Close() error {
	return nil
}
