package linereader

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	bferrors "github.com/vnykmshr/backflow/pkg/common/errors"
	"github.com/vnykmshr/backflow/pkg/common/validation"
	"github.com/vnykmshr/backflow/pkg/logging"
	"github.com/vnykmshr/backflow/pkg/metrics"
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Config holds configuration for a line reader Publisher.
type Config struct {
	// Name identifies the publisher in logs and metrics.
	Name string

	// Logger receives lifecycle events. Nil discards them.
	Logger logging.Logger

	// Metrics controls Prometheus instrumentation.
	Metrics metrics.Config

	// KeepBlankLines emits blank lines as items. By default a blank or
	// whitespace-only line ends the sequence exactly like end of resource,
	// which truncates content after an embedded blank line.
	KeepBlankLines bool

	// OpenTimeout bounds Resource.Open. Zero means no timeout.
	OpenTimeout time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "linereader",
		Logger: logging.Nop(),
	}
}

// Publisher emits the lines of one locator. Each subscription opens its
// own handle on first demand and closes it on any terminal transition.
type Publisher struct {
	resource Resource
	locator  string
	config   Config
	registry *metrics.Registry
}

var _ reactive.Publisher[string] = (*Publisher)(nil)

// New creates a Publisher reading locator from resource.
func New(resource Resource, locator string, config Config) (*Publisher, error) {
	if resource == nil {
		return nil, validation.ValidateNotNil("linereader", "resource", nil)
	}
	if err := validation.ValidateNotEmpty("linereader", "locator", locator); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	config.Logger = logging.OrNop(config.Logger)

	return &Publisher{
		resource: resource,
		locator:  locator,
		config:   config,
		registry: config.Metrics.Build(),
	}, nil
}

// File creates a Publisher over the file at path with the default configuration.
func File(path string) (*Publisher, error) {
	return New(FileResource{}, path, DefaultConfig())
}

// Subscribe implements reactive.Publisher.
func (p *Publisher) Subscribe(s reactive.Subscriber[string]) {
	p.SubscribeTracked(s)
}

// SubscribeTracked subscribes s and returns the tracker for inspection.
func (p *Publisher) SubscribeTracked(s reactive.Subscriber[string]) *reactive.Tracker[string] {
	src := &source{
		resource: p.resource,
		locator:  p.locator,
		config:   p.config,
		registry: p.registry,
		logger:   logging.With(p.config.Logger, "locator", p.locator),
	}
	return reactive.Subscribe[string](s, src, reactive.Options{
		Name:    p.config.Name,
		Logger:  p.config.Logger,
		Metrics: p.registry,
	})
}

// source is the per-subscription reader. The tracker only calls it from
// the goroutine currently draining, so it needs no locking.
type source struct {
	resource Resource
	locator  string
	config   Config
	registry *metrics.Registry
	logger   logging.Logger

	handle Handle
	opened bool
	lines  int64
}

func (s *source) Next() (string, bool, error) {
	if !s.opened {
		s.opened = true
		if err := s.open(); err != nil {
			return "", false, err
		}
	}

	line, err := s.handle.ReadLine()
	if errors.Is(err, io.EOF) {
		s.logger.Info("no lines left for reading", "lines", s.lines)
		return "", false, nil
	}
	s.registry.ResourceOp(s.config.Name, "read", err)
	if err != nil {
		s.logger.Error("read failed", "line", s.lines+1, "error", err)
		return "", false, bferrors.NewResourceError("read", s.locator, err)
	}
	if !s.config.KeepBlankLines && strings.TrimSpace(line) == "" {
		s.logger.Info("blank line treated as end of resource", "lines", s.lines)
		return "", false, nil
	}

	s.lines++
	return line, true, nil
}

func (s *source) open() error {
	ctx := context.Background()
	if s.config.OpenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.OpenTimeout)
		defer cancel()
	}

	s.logger.Info("opening resource")
	h, err := s.resource.Open(ctx, s.locator)
	s.registry.ResourceOp(s.config.Name, "open", err)
	if err != nil {
		s.logger.Error("open failed", "error", err)
		return bferrors.NewResourceError("open", s.locator, err)
	}
	s.handle = h
	return nil
}

// Close releases the handle if one was opened.
func (s *source) Close() error {
	if s.handle == nil {
		return nil
	}
	h := s.handle
	s.handle = nil

	err := h.Close()
	s.registry.ResourceOp(s.config.Name, "close", err)
	if err != nil {
		s.logger.Warn("failed to close resource", "error", err)
		return err
	}
	s.logger.Info("resource closed", "lines", s.lines)
	return nil
}
