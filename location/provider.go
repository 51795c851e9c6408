// Package location defines the location intelligence signals consumed by the forecasting
// pipeline and a few Provider implementations and decorators.
package location

import (
	"context"
)

// DefaultRadius is the nearby business search radius in meters
const DefaultRadius = 5000

// Congestion buckets the traffic density of an area
type Congestion string

const (
	CongestionLow    Congestion = "low"
	CongestionMedium Congestion = "medium"
	CongestionHigh   Congestion = "high"
)

// CongestionFromDensity buckets a traffic density in [0, 1]
func CongestionFromDensity(density float64) Congestion {
	switch {
	case density > 0.7:
		return CongestionHigh
	case density > 0.4:
		return CongestionMedium
	default:
		return CongestionLow
	}
}

// Businesses summarizes the businesses around a coordinate
type Businesses struct {
	Count      int      `json:"business_count"`
	Categories []string `json:"categories"`
	PeakHours  string   `json:"peak_hours"`
}

// Traffic summarizes the traffic around a coordinate. Density is in [0, 1].
type Traffic struct {
	Density      float64    `json:"traffic_density"`
	Congestion   Congestion `json:"congestion_level"`
	AvgSpeedKmph int        `json:"avg_speed_kmph"`
}

// Demographics of the area around a coordinate. EmploymentRate is in [0, 1].
type Demographics struct {
	PopulationDensity float64 `json:"population_density"`
	AvgIncome         float64 `json:"avg_income"`
	EmploymentRate    float64 `json:"employment_rate"`
}

// Provider supplies location intelligence for a coordinate. Every method must be a pure
// function of its inputs for a given snapshot in time and safe for concurrent use.
type Provider interface {
	NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (Businesses, error)
	TrafficAnalytics(ctx context.Context, lat, lon float64) (Traffic, error)
	Demographics(ctx context.Context, lat, lon float64) (Demographics, error)
}

// Snapshot bundles all three signals for one coordinate
type Snapshot struct {
	Businesses   Businesses   `json:"businesses"`
	Traffic      Traffic      `json:"traffic"`
	Demographics Demographics `json:"demographics"`
}

// Fetch queries every signal of the provider for a coordinate. Failures are returned as a
// retryable *ProviderError.
func Fetch(ctx context.Context, p Provider, lat, lon float64, radius int) (Snapshot, error) {
	var snap Snapshot

	b, err := p.NearbyBusinesses(ctx, lat, lon, radius)
	if err != nil {
		return Snapshot{}, wrapProviderError(OpNearbyBusinesses, lat, lon, err)
	}
	snap.Businesses = b

	t, err := p.TrafficAnalytics(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, wrapProviderError(OpTrafficAnalytics, lat, lon, err)
	}
	snap.Traffic = t

	d, err := p.Demographics(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, wrapProviderError(OpDemographics, lat, lon, err)
	}
	snap.Demographics = d
	return snap, nil
}
