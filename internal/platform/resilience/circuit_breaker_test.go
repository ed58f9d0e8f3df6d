package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("closed breaker must allow, attempt=%d err=%v", i, err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after %d failures, got=%v", 3, err)
	}
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected open state, got=%s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenProbeRecovers(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second)
	base := time.Unix(1700000000, 0)
	b.now = func() time.Time { return base }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got=%v", err)
	}

	b.now = func() time.Time { return base.Add(11 * time.Second) }
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe to be allowed after open timeout, got=%v", err)
	}
	// Only one probe at a time.
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got=%v", err)
	}

	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got=%s", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker must allow, got=%v", err)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second)
	base := time.Unix(1700000000, 0)
	b.now = func() time.Time { return base }

	b.RecordFailure()
	b.now = func() time.Time { return base.Add(11 * time.Second) }
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe allowed, got=%v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened breaker, got=%v", err)
	}
}
