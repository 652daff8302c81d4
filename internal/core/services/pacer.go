package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces out requests to the article source. The first Wait returns
// immediately; each later Wait blocks until interval has passed since the
// previous one.
type pacer struct {
	limiter *rate.Limiter
}

// newPacer creates a pacer. A non-positive interval never waits.
func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		return &pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may start or ctx is done.
func (p *pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
