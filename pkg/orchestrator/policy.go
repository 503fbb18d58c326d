package orchestrator

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxRetries caps port retries unless the caller opts out.
const DefaultMaxRetries = 20

// RetryPolicy decides how many address-in-use retries are made and how long
// to wait before each.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// A negative value retries without limit.
	MaxRetries int

	// Backoff supplies the delay before each retry. A nil Backoff retries
	// immediately. backoff.Stop ends retrying.
	Backoff backoff.BackOff
}

// DefaultRetryPolicy returns a bounded policy with no delay between retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Backoff:    &backoff.ZeroBackOff{},
	}
}

// UnboundedRetryPolicy retries forever without delay.
func UnboundedRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: -1,
		Backoff:    &backoff.ZeroBackOff{},
	}
}

// ExponentialBackoff returns a backoff starting at 50ms and capped at 2s,
// with no overall time limit.
func ExponentialBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Unbounded reports whether the policy has no retry ceiling.
func (p RetryPolicy) Unbounded() bool {
	return p.MaxRetries < 0
}

// allows reports whether another retry may follow done retries.
func (p RetryPolicy) allows(done int) bool {
	return p.Unbounded() || done < p.MaxRetries
}

// next returns the delay before the next retry, and false when the backoff
// asks to stop.
func (p RetryPolicy) next() (time.Duration, bool) {
	if p.Backoff == nil {
		return 0, true
	}
	d := p.Backoff.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	return d, true
}
