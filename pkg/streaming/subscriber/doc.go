// Package subscriber provides ready-made reactive.Subscriber implementations.
//
//   - Func adapts plain callbacks.
//   - Collector records every signal and lets callers wait for termination.
//   - Logging writes every signal to a logging.Logger and requests
//     unbounded demand.
package subscriber
