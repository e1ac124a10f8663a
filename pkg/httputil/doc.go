// Package httputil provides HTTP utilities for registry clients.
//
// # Retry
//
// [Retry] wraps registry requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honouring Retry-After)
//
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned on the first failure. The delay doubles after every attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// [RetryWithBackoff] applies the defaults used by all registry clients:
// 3 attempts with a 1 second initial delay.
//
// The crawler itself never retries; retrying is the registry client's job.
package httputil
