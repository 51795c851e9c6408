package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MinDemand is the floor applied to every produced workforce demand value.
const MinDemand = 5.0

var (
	ErrNoEntityID       = errors.New("no entity id")
	ErrUnsetDate        = errors.New("unset observation date")
	ErrInvalidCoord     = errors.New("coordinate out of range")
	ErrNonFiniteDemand  = errors.New("non-finite demand")
	ErrNegativeDemand   = errors.New("negative demand")
	ErrMismatchedEntity = errors.New("record belongs to a different entity")
)

// Record is a single daily observation of one location. Calendar fields are not stored
// and are derived from Date by the feature package.
type Record struct {
	EntityID  string    `json:"location_id"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	Date      time.Time `json:"date"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	// Demand is the workforce demand target.
	Demand float64 `json:"workforce_demand"`

	Temperature   float64 `json:"temperature"`
	GDPGrowth     float64 `json:"gdp_growth"`
	InflationRate float64 `json:"inflation_rate"`

	BusinessCount     float64 `json:"business_count"`
	TrafficDensity    float64 `json:"traffic_density"`
	AvgSpeedKmph      float64 `json:"avg_speed_kmph"`
	PopulationDensity float64 `json:"population_density"`
	AvgIncome         float64 `json:"avg_income"`
	EmploymentRate    float64 `json:"employment_rate"`
}

// Valid checks that the record can take part in feature generation
func (r Record) Valid() error {
	if r.EntityID == "" {
		return ErrNoEntityID
	}
	if r.Date.IsZero() {
		return fmt.Errorf("entity %s, %w", r.EntityID, ErrUnsetDate)
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("entity %s at (%.4f, %.4f), %w", r.EntityID, r.Latitude, r.Longitude, ErrInvalidCoord)
	}
	if math.IsNaN(r.Demand) || math.IsInf(r.Demand, 0) {
		return fmt.Errorf("entity %s on %s, %w", r.EntityID, r.Date.Format(time.DateOnly), ErrNonFiniteDemand)
	}
	if r.Demand < 0 {
		return fmt.Errorf("entity %s on %s, %w", r.EntityID, r.Date.Format(time.DateOnly), ErrNegativeDemand)
	}
	return nil
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
