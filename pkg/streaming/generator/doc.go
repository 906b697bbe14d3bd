/*
Package generator provides a synchronous, count-bounded Publisher.

Items are synthesized on demand by a Generate function and never ahead of
it. Every Subscribe call asks the Factory for a fresh Generate, so each
subscription owns its own state and sequence; nothing is shared or replayed
between subscribers.

	pub, err := generator.New(10, func() generator.Generate[string] {
		rng := rand.New(rand.NewSource(42))
		return func(seq int64) string {
			return fmt.Sprintf("user%d@example.com", rng.Intn(1000))
		}
	}, generator.DefaultConfig())

	c := subscriber.NewCollector[string](3)
	pub.Subscribe(c) // three items delivered synchronously

Request runs on the calling goroutine for the whole emission it triggers.
After count items the subscription completes.
*/
package generator
