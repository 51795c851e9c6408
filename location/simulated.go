package location

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// coordinates closer than this in both axes resolve to the same known city
	cityMatchTolerance = 0.1

	defaultBusinessCount = 300
	businessJitter       = 50
)

const (
	saltBusinesses uint64 = iota + 1
	saltTraffic
)

type coord struct {
	lat float64
	lon float64
}

var knownBusinessCounts = map[coord]int{
	{28.6139, 77.2090}: 450, // Delhi
	{19.0760, 72.8777}: 520, // Mumbai
	{13.0827, 80.2707}: 380, // Chennai
}

var knownDemographics = map[coord]Demographics{
	{28.6139, 77.2090}: {PopulationDensity: 11320, AvgIncome: 45000, EmploymentRate: 0.68},
	{19.0760, 72.8777}: {PopulationDensity: 20694, AvgIncome: 52000, EmploymentRate: 0.72},
	{13.0827, 80.2707}: {PopulationDensity: 26903, AvgIncome: 38000, EmploymentRate: 0.65},
}

var defaultDemographics = Demographics{
	PopulationDensity: 8000,
	AvgIncome:         40000,
	EmploymentRate:    0.65,
}

var businessCategories = []string{"retail", "healthcare", "education", "hospitality", "logistics"}

// Simulated is a deterministic stand-in for a location intelligence API. Every value is a
// pure function of the seed, the snapshot and the coordinate.
type Simulated struct {
	seed     uint64
	snapshot uint64
}

// NewSimulated creates a simulated provider for snapshot 0
func NewSimulated(seed uint64) *Simulated {
	return &Simulated{seed: seed}
}

// At returns a provider for the snapshot of the given day. Signals vary between days but
// repeated calls for the same day and coordinate return the same values.
func (s *Simulated) At(t time.Time) *Simulated {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &Simulated{
		seed:     s.seed,
		snapshot: uint64(day.Unix() / 86400),
	}
}

func (s *Simulated) rng(lat, lon float64, salt uint64) *rand.Rand {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []uint64{math.Float64bits(lat), math.Float64bits(lon), salt} {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	return rand.New(rand.NewPCG(s.seed^s.snapshot, h.Sum64()))
}

func matchCity[V any](table map[coord]V, lat, lon float64) (V, bool) {
	for c, v := range table {
		if math.Abs(lat-c.lat) < cityMatchTolerance && math.Abs(lon-c.lon) < cityMatchTolerance {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (s *Simulated) NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (Businesses, error) {
	if err := ctx.Err(); err != nil {
		return Businesses{}, &ProviderError{Op: OpNearbyBusinesses, Lat: lat, Lon: lon, Err: err}
	}

	count, exists := matchCity(knownBusinessCounts, lat, lon)
	if !exists {
		count = defaultBusinessCount
	}
	r := s.rng(lat, lon, saltBusinesses)
	count += r.IntN(2*businessJitter) - businessJitter

	categories := make([]string, len(businessCategories))
	copy(categories, businessCategories)
	return Businesses{
		Count:      count,
		Categories: categories,
		PeakHours:  "09:00-18:00",
	}, nil
}

func (s *Simulated) TrafficAnalytics(ctx context.Context, lat, lon float64) (Traffic, error) {
	if err := ctx.Err(); err != nil {
		return Traffic{}, &ProviderError{Op: OpTrafficAnalytics, Lat: lat, Lon: lon, Err: err}
	}

	r := s.rng(lat, lon, saltTraffic)
	density := 0.3 + 0.6*r.Float64()
	return Traffic{
		Density:      density,
		Congestion:   CongestionFromDensity(density),
		AvgSpeedKmph: int(40*(1-density) + 10),
	}, nil
}

func (s *Simulated) Demographics(ctx context.Context, lat, lon float64) (Demographics, error) {
	if err := ctx.Err(); err != nil {
		return Demographics{}, &ProviderError{Op: OpDemographics, Lat: lat, Lon: lon, Err: err}
	}

	demo, exists := matchCity(knownDemographics, lat, lon)
	if !exists {
		demo = defaultDemographics
	}
	return demo, nil
}
