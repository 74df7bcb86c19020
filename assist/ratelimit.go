package assist

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket request limit so
// large matrices do not exhaust an API quota.
type RateLimitedProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider limits next to requestsPerMin requests. A value of
// zero or less returns next unchanged.
func NewRateLimitedProvider(next Provider, requestsPerMin int) Provider {
	if requestsPerMin <= 0 {
		return next
	}
	r := rate.Limit(float64(requestsPerMin) / 60.0)
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(r, requestsPerMin),
	}
}

// Complete blocks until a request is allowed or ctx is done, then forwards
// to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, messages []Message) (*Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}
	return p.next.Complete(ctx, messages)
}
