package subscriber

import (
	"github.com/vnykmshr/backflow/pkg/streaming/reactive"
)

// Func is a Subscriber built from optional callbacks. Nil callbacks are
// skipped. Initial, when positive, is requested right after OnSubscribe.
type Func[T any] struct {
	Initial       int64
	OnSubscribeFn func(s reactive.Subscription)
	OnNextFn      func(item T)
	OnErrorFn     func(err error)
	OnCompleteFn  func()
}

var _ reactive.Subscriber[int] = (*Func[int])(nil)

// OnSubscribe implements reactive.Subscriber.
func (f *Func[T]) OnSubscribe(s reactive.Subscription) {
	if f.OnSubscribeFn != nil {
		f.OnSubscribeFn(s)
	}
	if f.Initial > 0 {
		s.Request(f.Initial)
	}
}

// OnNext implements reactive.Subscriber.
func (f *Func[T]) OnNext(item T) {
	if f.OnNextFn != nil {
		f.OnNextFn(item)
	}
}

// OnError implements reactive.Subscriber.
func (f *Func[T]) OnError(err error) {
	if f.OnErrorFn != nil {
		f.OnErrorFn(err)
	}
}

// OnComplete implements reactive.Subscriber.
func (f *Func[T]) OnComplete() {
	if f.OnCompleteFn != nil {
		f.OnCompleteFn()
	}
}
