package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	base := errors.New("connection reset")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), base.Error())
	}
	if IsRetryable(base) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	base := errors.New("502")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Retryable(base)
	})
	if !errors.Is(err, base) {
		t.Errorf("Retry() error = %v, want %v", err, base)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryMinimumOneAttempt(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryHonoursAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: errors.New("429"), After: 30 * time.Millisecond}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 30ms", elapsed)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Second, func() error {
		return Retryable(errors.New("timeout"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}
