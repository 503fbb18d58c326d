// Package orchestrator supervises a single engine instance.
//
// The orchestrator is an explicit state machine:
//
//	Stopped  -> Starting   first Start issued by Run
//	Starting -> Starting   address in use, autoassign on: port+1, Start again
//	Starting -> Running    start confirmed: address reported once
//	Starting -> Failed     any other failure, or the retry policy gives up
//	Running  -> Failed     the engine stops serving
//
// Run is a single event loop. It issues a new Start only after the previous
// attempt resolved, so at most one attempt is ever in flight and the engine
// never holds two listeners. Events are correlated to attempts by number and
// stale ones are dropped.
//
// Retries are bounded by RetryPolicy.MaxRetries (DefaultMaxRetries unless
// configured). A negative MaxRetries restores unbounded retrying. Delays
// between retries come from a cenkalti/backoff BackOff.
//
// Run returns a Result instead of exiting the process; the caller maps it to
// an exit status.
package orchestrator
