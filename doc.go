/*
Package backflow provides demand-driven publishers for Go: items are pulled
by subscribers in explicit amounts and never pushed ahead of that demand.

Core (pkg/streaming):
  - reactive: Publisher, Subscriber and Subscription contracts plus the
    Tracker that accounts demand and serializes delivery
  - generator: Count-bounded publisher synthesizing items on demand
  - linereader: Publisher over the lines of a file, reader or Redis list
  - subscriber: Callback, collecting and logging subscribers
  - demand: Cron-paced, rate-limited and concurrent demand drivers

Support (pkg):
  - metrics: Prometheus instrumentation of subscriptions
  - logging: Structured logging on top of zap

Example usage:

	import (
		"github.com/vnykmshr/backflow/pkg/streaming/linereader"
		"github.com/vnykmshr/backflow/pkg/streaming/subscriber"
	)

	pub, _ := linereader.File("orders.txt")
	c := subscriber.NewCollector[string](10) // first ten lines

	pub.Subscribe(c)
	c.Request(10) // ten more
	c.Cancel()    // file is closed
*/
package backflow
