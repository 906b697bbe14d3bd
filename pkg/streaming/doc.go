/*
Package streaming groups the demand-driven publishing packages.

  - reactive: the Publisher/Subscriber/Subscription contracts and the
    Tracker demand engine every publisher is built on
  - generator: synthesizes up to N items, one per unit of demand
  - linereader: emits the lines of a Resource, opened lazily and closed
    exactly once
  - subscriber: ready-made Subscribers for callbacks, collection and logging
  - demand: drives a Subscription on a schedule, at a rate or from many
    goroutines

Basic usage:

	pub, err := generator.Range(1, 100)
	if err != nil {
		return err
	}

	c := subscriber.NewCollector[int64](0)
	tr := pub.SubscribeTracked(c)

	c.Request(10)                    // items 1..10 delivered synchronously
	_ = demand.FanOut(ctx, tr, 4, 5) // twenty more, requested concurrently
	tr.Cancel()

Signals for one subscription are always delivered serially, in order, and
at most one terminal signal is ever delivered.
*/
package streaming
