package common

import (
	"errors"
	"testing"
	"time"
)

func TestRetrierSucceedsEventually(t *testing.T) {
	r := NewRetrier()
	r.sleep = func(time.Duration) {}

	calls := 0
	err := r.Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("called %d times, want 3", calls)
	}
}

func TestRetrierSurfacesFirstError(t *testing.T) {
	r := NewRetrier()
	r.sleep = func(time.Duration) {}

	first := errors.New("the real problem")
	calls := 0
	err := r.Do(func() error {
		calls++
		if calls == 1 {
			return first
		}
		return errors.New("followup noise")
	})
	if err != first {
		t.Errorf("err = %v, want the first error", err)
	}
	if calls != r.Attempts {
		t.Errorf("called %d times, want %d", calls, r.Attempts)
	}
}

func TestRetrierBackoffGrowsAndCaps(t *testing.T) {
	r := NewRetrier()
	var delays []time.Duration
	r.sleep = func(d time.Duration) { delays = append(delays, d) }

	r.Do(func() error { return errors.New("never works") })

	want := []time.Duration{
		time.Second,
		1500 * time.Millisecond,
		2250 * time.Millisecond,
		3375 * time.Millisecond,
	}
	if len(delays) != len(want) {
		t.Fatalf("slept %d times, want %d", len(delays), len(want))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}

	// With more attempts the delay must stop growing at MaxDelay.
	r = NewRetrier()
	r.Attempts = 8
	delays = nil
	r.sleep = func(d time.Duration) { delays = append(delays, d) }
	r.Do(func() error { return errors.New("never works") })
	last := delays[len(delays)-1]
	if last != r.MaxDelay {
		t.Errorf("final delay = %v, want cap %v", last, r.MaxDelay)
	}
}

func TestRetrierNoSleepAfterLastAttempt(t *testing.T) {
	r := NewRetrier()
	sleeps := 0
	r.sleep = func(time.Duration) { sleeps++ }

	r.Do(func() error { return errors.New("nope") })
	if sleeps != r.Attempts-1 {
		t.Errorf("slept %d times for %d attempts", sleeps, r.Attempts)
	}
}
