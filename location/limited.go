package location

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited throttles calls to the wrapped provider. Every signal lookup consumes one token
// and waits for it, honoring context cancellation.
type Limited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewLimited allows up to rps lookups per second with the given burst
func NewLimited(next Provider, rps float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (l *Limited) wait(ctx context.Context, op string, lat, lon float64) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return &ProviderError{Op: op, Lat: lat, Lon: lon, Err: err}
	}
	return nil
}

func (l *Limited) NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (Businesses, error) {
	if err := l.wait(ctx, OpNearbyBusinesses, lat, lon); err != nil {
		return Businesses{}, err
	}
	return l.next.NearbyBusinesses(ctx, lat, lon, radius)
}

func (l *Limited) TrafficAnalytics(ctx context.Context, lat, lon float64) (Traffic, error) {
	if err := l.wait(ctx, OpTrafficAnalytics, lat, lon); err != nil {
		return Traffic{}, err
	}
	return l.next.TrafficAnalytics(ctx, lat, lon)
}

func (l *Limited) Demographics(ctx context.Context, lat, lon float64) (Demographics, error) {
	if err := l.wait(ctx, OpDemographics, lat, lon); err != nil {
		return Demographics{}, err
	}
	return l.next.Demographics(ctx, lat, lon)
}
