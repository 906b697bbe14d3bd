/*
Package demand drives a reactive.Subscription from outside the subscriber.

Subscribers normally signal demand from their own callbacks. The helpers
here cover the other common patterns: requesting on a cron schedule,
requesting at a bounded rate, and requesting from many goroutines at once.

	c := subscriber.NewCollector[string](0)
	tr := pub.SubscribeTracked(c)

	// One line every second until the file is exhausted.
	err := demand.Paced(ctx, tr, "@every 1s", 1, logger)

Each helper returns early, with a nil error, once the subscription reaches
a terminal state, provided the subscription exposes its state the way
*reactive.Tracker does. Otherwise they run until their own budget or ctx
is exhausted.
*/
package demand
