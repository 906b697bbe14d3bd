/*
Package reactive implements the demand-driven publisher/subscription/subscriber
contract that every backflow producer is built on.

A Publisher creates one Subscription per Subscribe call. The Subscriber
signals demand with Request(n) and the subscription answers with at most n
OnNext calls, followed by at most one terminal signal, OnComplete or OnError.
Cancel ends the relationship from the subscriber side.

The engine behind every subscription is Tracker. It pulls items from a
Source only while demand is outstanding:

	type counter struct{ n int }

	func (c *counter) Next() (int, bool, error) { c.n++; return c.n, true, nil }
	func (c *counter) Close() error              { return nil }

	c := subscriber.NewCollector[int](0)
	sub := reactive.Subscribe[int](c, &counter{}, reactive.Options{
		Name:   "counter",
		Capped: true,
		Cap:    10,
	})
	sub.Request(3) // delivers 1, 2, 3
	sub.Request(7) // delivers 4..10, then OnComplete

Demand:

Request adds to the outstanding demand with an atomic compare-and-swap that
saturates at Unbounded. Request(n) with n <= 0 is rejected: the subscription
fails with an error wrapping errors.ErrInvalidDemand and emits nothing more.

Serial delivery:

Request and Cancel are safe from any goroutine, including from within the
Subscriber's callbacks. At most one goroutine drains a subscription at a
time; a Request arriving while another goroutine is draining only adds
demand, and the draining goroutine picks it up before it stops. Signals for
one subscription are therefore never concurrent and always in source order.

Termination:

Completed, Errored and Cancelled are absorbing. The state changes before the
terminal callback runs, so a Request made from OnComplete or OnError is a
no-op. The source is closed exactly once, before the terminal callback, on
every terminal path. A second terminal signal is a bug in the engine and
panics with a *errors.ProtocolViolationError.

Cancellation is cooperative: the draining goroutine checks the flag before
every read and again after it. When nothing is draining, Cancel closes the
source itself before returning.
*/
package reactive
