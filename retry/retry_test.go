package retry

import (
	"errors"
	"testing"
	"time"
)

var fastOptions = Options{
	MaxRetries:        3,
	InitialDelay:      time.Millisecond,
	MaxDelay:          4 * time.Millisecond,
	BackoffMultiplier: 2,
	RetryablePatterns: DefaultPatterns,
}

func TestDoRetriesTransientError(t *testing.T) {
	attempts := 0
	start := time.Now()
	err := Do("always-refused", func() error {
		attempts++
		return errors.New("dial tcp 127.0.0.1:5432: connection refused")
	}, fastOptions)
	elapsed := time.Since(start)
	if err == nil {
		t.Fatal("expected the final error to be returned")
	}
	if attempts != 4 {
		t.Errorf("expected exactly 4 attempts, got %d", attempts)
	}
	// Delays should be 1ms + 2ms + 4ms, allowing scheduler slack upward.
	if elapsed < 7*time.Millisecond {
		t.Errorf("expected at least 7ms of accumulated delay, got %s", elapsed)
	}
}

func TestDoShortCircuitsFatalError(t *testing.T) {
	attempts := 0
	fatal := errors.New("pq: duplicate key value violates unique constraint")
	start := time.Now()
	err := Do("fatal", func() error {
		attempts++
		return fatal
	}, fastOptions)
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
	if err != fatal {
		t.Errorf("expected the original error unchanged, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("fatal error should not incur backoff delay, took %s", elapsed)
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do("flaky", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	}, fastOptions)
	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoReturnsLastErrorUnwrapped(t *testing.T) {
	last := errors.New("write: connection closed")
	err := Do("exhausted", func() error { return last }, fastOptions)
	if err != last {
		t.Errorf("expected last error returned unchanged, got %v", err)
	}
}

func TestRetryableClassification(t *testing.T) {
	retryable := []string{
		"dial tcp: connection refused",
		"i/o TIMEOUT waiting for response",
		"lookup db.internal: no such host",
		"connection terminated unexpectedly",
	}
	for _, msg := range retryable {
		if !Retryable(errors.New(msg), DefaultPatterns) {
			t.Errorf("expected %q to classify as retryable", msg)
		}
	}
	fatal := []string{
		"pq: null value in column \"email\"",
		"syntax error at or near SELECT",
	}
	for _, msg := range fatal {
		if Retryable(errors.New(msg), DefaultPatterns) {
			t.Errorf("expected %q to classify as fatal", msg)
		}
	}
	if Retryable(nil, DefaultPatterns) {
		t.Errorf("nil error should never be retryable")
	}
}

func TestDelayCappedAtMax(t *testing.T) {
	opts := Options{
		MaxRetries:        4,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 10,
		RetryablePatterns: DefaultPatterns,
	}
	start := time.Now()
	Do("capped", func() error {
		return errors.New("connection refused")
	}, opts)
	// 1ms + 2ms + 2ms + 2ms = 7ms minimum; without the cap the multiplier
	// would demand over a second.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("delays should be capped at MaxDelay, took %s", elapsed)
	}
}
