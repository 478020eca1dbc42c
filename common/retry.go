package common

import "time"

// Retrier re-runs an operation with exponentially growing delays. It
// exists to absorb transient connection failures against live Jenkins
// instances, mostly in the integration tests and the launcher health
// poll.
type Retrier struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewRetrier returns the default policy: 5 attempts, delays starting at
// 1s and growing by 1.5x per attempt, capped at 5s.
func NewRetrier() *Retrier {
	return &Retrier{
		Attempts:     5,
		InitialDelay: time.Second,
		Multiplier:   1.5,
		MaxDelay:     5 * time.Second,
	}
}

// Do runs fn until it returns nil or attempts are exhausted. On
// exhaustion the error from the first failing attempt is returned, so
// the root cause is not masked by later noise.
func (r *Retrier) Do(fn func() error) error {
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	var first error
	delay := r.InitialDelay
	for i := 0; i < r.Attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
		if i == r.Attempts-1 {
			break
		}
		sleep(delay)
		delay = time.Duration(float64(delay) * r.Multiplier)
		if delay > r.MaxDelay {
			delay = r.MaxDelay
		}
	}
	return first
}
