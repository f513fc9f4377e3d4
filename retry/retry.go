// Package retry wraps fallible operations with bounded exponential
// backoff. Only errors that look like transient connectivity failures are
// retried; everything else surfaces immediately. Callers must only wrap
// operations that are safe to re-attempt. An INSERT that failed at the
// connection level never committed a row, but one that failed after the
// response was read may have.
package retry

import (
	"log"
	"strings"
	"time"
)

// Options configures a retried operation.
type Options struct {
	// MaxRetries is the number of re-attempts after the first try.
	MaxRetries int
	// InitialDelay is the pause before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
	// BackoffMultiplier scales the delay between successive retries.
	BackoffMultiplier float64
	// RetryablePatterns are matched case-insensitively against error
	// messages; a match marks the error transient.
	RetryablePatterns []string
}

// DefaultPatterns cover the connection-level failures a Postgres pool or
// SMTP dial can produce under transient network trouble.
var DefaultPatterns = []string{
	"connection refused",
	"timeout",
	"no such host",
	"connection reset",
	"connection terminated unexpectedly",
	"connection closed",
}

// DefaultOptions retries three times over at most seven seconds of
// accumulated delay (1s, 2s, 4s).
var DefaultOptions = Options{
	MaxRetries:        3,
	InitialDelay:      time.Second,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2,
	RetryablePatterns: DefaultPatterns,
}

// Retryable reports whether err matches one of the transient patterns.
func Retryable(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(message, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Do runs op up to opts.MaxRetries+1 times, sleeping between attempts.
// A non-retryable error is returned immediately without consuming a
// retry. After the final attempt the last error is logged with the
// attempt count and returned unwrapped, so the root cause stays visible
// to the caller.
func Do(name string, op func() error, opts Options) error {
	patterns := opts.RetryablePatterns
	if patterns == nil {
		patterns = DefaultPatterns
	}
	delay := opts.InitialDelay
	var err error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * opts.BackoffMultiplier)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
		err = op()
		if err == nil {
			return nil
		}
		if !Retryable(err, patterns) {
			return err
		}
		if attempt < opts.MaxRetries {
			log.Printf("%s failed (attempt %d/%d), retrying in %s: %v",
				name, attempt+1, opts.MaxRetries+1, delay, err)
		}
	}
	log.Printf("%s failed after %d attempts: %v", name, opts.MaxRetries+1, err)
	return err
}
