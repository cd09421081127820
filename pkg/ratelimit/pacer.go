// Package ratelimit provides request pacing and 429 back-off arithmetic
// for the Twitter API client.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between consecutive API requests.
// A page fetch costs one token; the bucket refills at one token per
// interval with no burst beyond a single request.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with the given minimum gap between requests.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request is allowed or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// SleepFor computes how long to sleep after a 429 response. The reset
// header carries a unix timestamp; the sleep is the time until that
// reset plus a safety margin. When the header is absent, malformed, or
// already in the past, the fallback duration applies.
func SleepFor(resetHeader string, now time.Time, margin, fallback time.Duration) time.Duration {
	reset, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return fallback
	}

	until := time.Unix(reset, 0).Sub(now)
	if until <= 0 {
		return fallback
	}

	return until + margin
}
