// Package httputil provides retry infrastructure for the catalog download
// clients.
//
// # Retry
//
// [Backoff] wraps an operation with automatic retry for
// transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - Bodies that end early or fail checksum verification
//
// Only errors wrapped with [Retryable] are retried; everything else is
// returned immediately so that permanent failures (404, malformed gzip)
// fail fast.
//
//	err := httputil.Backoff{Attempts: 3, Delay: time.Second}.Do(ctx, func() error {
//	    return fetchShard(ctx, name)
//	})
//
// The wait between attempts doubles after each failure. [Backoff.Clock]
// accepts any clockwork.Clock, which lets tests drive the schedule with a
// fake clock instead of sleeping.
//
// # Defaults
//
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
