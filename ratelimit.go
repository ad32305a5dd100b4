package geoclient

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Geocoder with client-side request pacing. The core
// itself never paces or retries; this decorator is the layered-on option
// for callers who must respect a provider's request-per-second limit.
// Waiting respects the call context, so a per-call timeout still bounds
// the total time spent queued plus on the wire.
func RateLimited(inner Geocoder, rps float64) Geocoder {
	return &rateLimitedGeocoder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type rateLimitedGeocoder struct {
	inner   Geocoder
	limiter *rate.Limiter
}

func (r *rateLimitedGeocoder) Geocode(ctx context.Context, query string, opts *Options) ([]Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, Message: "rate limiter wait", Err: err}
	}
	return r.inner.Geocode(ctx, query, opts)
}

func (r *rateLimitedGeocoder) Reverse(ctx context.Context, query any, opts *Options) ([]Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, Message: "rate limiter wait", Err: err}
	}
	return r.inner.Reverse(ctx, query, opts)
}
