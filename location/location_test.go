package location

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream timeout")

type countingProvider struct {
	calls atomic.Int64
	fail  bool
	inner Provider
}

func (c *countingProvider) NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (Businesses, error) {
	c.calls.Add(1)
	if c.fail {
		return Businesses{}, errUpstream
	}
	return c.inner.NearbyBusinesses(ctx, lat, lon, radius)
}

func (c *countingProvider) TrafficAnalytics(ctx context.Context, lat, lon float64) (Traffic, error) {
	c.calls.Add(1)
	if c.fail {
		return Traffic{}, errUpstream
	}
	return c.inner.TrafficAnalytics(ctx, lat, lon)
}

func (c *countingProvider) Demographics(ctx context.Context, lat, lon float64) (Demographics, error) {
	c.calls.Add(1)
	if c.fail {
		return Demographics{}, errUpstream
	}
	return c.inner.Demographics(ctx, lat, lon)
}

func TestCongestionFromDensity(t *testing.T) {
	testData := map[string]struct {
		density  float64
		expected Congestion
	}{
		"low":         {0.3, CongestionLow},
		"medium edge": {0.4, CongestionLow},
		"medium":      {0.55, CongestionMedium},
		"high edge":   {0.7, CongestionMedium},
		"high":        {0.85, CongestionHigh},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, CongestionFromDensity(td.density))
		})
	}
}

func TestSimulatedIsPure(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)

	p1 := NewSimulated(42).At(day)
	p2 := NewSimulated(42).At(day)

	snap1, err := Fetch(ctx, p1, 28.6139, 77.2090, DefaultRadius)
	require.NoError(t, err)
	snap2, err := Fetch(ctx, p2, 28.6139, 77.2090, DefaultRadius)
	require.NoError(t, err)
	assert.Equal(t, snap1, snap2)

	assert.InDelta(t, 450, snap1.Businesses.Count, 50)
	assert.GreaterOrEqual(t, snap1.Traffic.Density, 0.3)
	assert.Less(t, snap1.Traffic.Density, 0.9)
	assert.Equal(t, CongestionFromDensity(snap1.Traffic.Density), snap1.Traffic.Congestion)
	assert.Equal(t, 11320.0, snap1.Demographics.PopulationDensity)
	assert.Equal(t, 0.68, snap1.Demographics.EmploymentRate)
}

func TestSimulatedUnknownCoordinate(t *testing.T) {
	p := NewSimulated(7)
	demo, err := p.Demographics(context.Background(), 22.5726, 88.3639)
	require.NoError(t, err)
	assert.Equal(t, defaultDemographics, demo)

	b, err := p.NearbyBusinesses(context.Background(), 22.5726, 88.3639, DefaultRadius)
	require.NoError(t, err)
	assert.InDelta(t, defaultBusinessCount, b.Count, businessJitter)
	assert.Len(t, b.Categories, len(businessCategories))
}

func TestSimulatedCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulated(1).TrafficAnalytics(ctx, 1, 1)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchWrapsProviderError(t *testing.T) {
	p := &countingProvider{fail: true}
	_, err := Fetch(context.Background(), p, 10, 20, DefaultRadius)
	require.Error(t, err)

	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, OpNearbyBusinesses, pErr.Op)
	assert.ErrorIs(t, err, errUpstream)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(errUpstream))
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingProvider{inner: NewSimulated(3)}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := newCached(inner, 16, time.Minute, func() time.Time { return now })
	require.NoError(t, err)

	first, err := Fetch(ctx, c, 19.0760, 72.8777, DefaultRadius)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, 19.0760, 72.8777, DefaultRadius)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(3), inner.calls.Load())
	assert.Equal(t, CacheStats{Hits: 3, Misses: 3}, c.Stats())

	now = now.Add(2 * time.Minute)
	_, err = Fetch(ctx, c, 19.0760, 72.8777, DefaultRadius)
	require.NoError(t, err)
	assert.Equal(t, int64(6), inner.calls.Load(), "expired entries are fetched again")
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{fail: true}
	c, err := NewCached(inner, 4, 0)
	require.NoError(t, err)

	_, err = c.Demographics(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = c.Demographics(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestLimited(t *testing.T) {
	l := NewLimited(NewSimulated(1), 1000, 3)
	_, err := Fetch(context.Background(), l, 13.0827, 80.2707, DefaultRadius)
	require.NoError(t, err)

	slow := NewLimited(NewSimulated(1), 0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// first token is available from the burst, the second cannot arrive before the deadline
	_, err = slow.Demographics(ctx, 1, 1)
	require.NoError(t, err)
	_, err = slow.Demographics(ctx, 1, 1)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
