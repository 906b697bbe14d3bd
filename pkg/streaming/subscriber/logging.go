package subscriber

import (
	"github.com/vnykmshr/backflow/pkg/logging"
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Logging logs every signal it receives and requests unbounded demand.
type Logging[T any] struct {
	name   string
	logger logging.Logger
}

// NewLogging creates a Logging subscriber identified by name.
func NewLogging[T any](name string, logger logging.Logger) *Logging[T] {
	return &Logging[T]{name: name, logger: logging.OrNop(logger)}
}

// OnSubscribe implements reactive.Subscriber.
func (l *Logging[T]) OnSubscribe(s reactive.Subscription) {
	s.Request(reactive.Unbounded)
}

// OnNext implements reactive.Subscriber.
func (l *Logging[T]) OnNext(item T) {
	l.logger.Info("received item", "subscriber", l.name, "item", item)
}

// OnError implements reactive.Subscriber.
func (l *Logging[T]) OnError(err error) {
	l.logger.Error("received error", "subscriber", l.name, "error", err)
}

// OnComplete implements reactive.Subscriber.
func (l *Logging[T]) OnComplete() {
	l.logger.Info("completed", "subscriber", l.name)
}
