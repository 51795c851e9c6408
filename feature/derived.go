package feature

import (
	"math"

	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/timedataset"
)

// Signals are the location intelligence values of one observation
type Signals struct {
	BusinessCount     float64
	TrafficDensity    float64
	AvgSpeedKmph      float64
	PopulationDensity float64
	AvgIncome         float64
	EmploymentRate    float64
}

func SignalsFromRecord(r timedataset.Record) Signals {
	return Signals{
		BusinessCount:     r.BusinessCount,
		TrafficDensity:    r.TrafficDensity,
		AvgSpeedKmph:      r.AvgSpeedKmph,
		PopulationDensity: r.PopulationDensity,
		AvgIncome:         r.AvgIncome,
		EmploymentRate:    r.EmploymentRate,
	}
}

func SignalsFromSnapshot(s location.Snapshot) Signals {
	return Signals{
		BusinessCount:     float64(s.Businesses.Count),
		TrafficDensity:    s.Traffic.Density,
		AvgSpeedKmph:      float64(s.Traffic.AvgSpeedKmph),
		PopulationDensity: s.Demographics.PopulationDensity,
		AvgIncome:         s.Demographics.AvgIncome,
		EmploymentRate:    s.Demographics.EmploymentRate,
	}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// BusinessPer1k is the number of businesses per thousand residents. Zero population yields 0.
func (s Signals) BusinessPer1k() float64 {
	if s.PopulationDensity == 0 {
		return 0
	}
	return round(s.BusinessCount/s.PopulationDensity*1000, 2)
}

func (s Signals) EconomicActivity() float64 {
	return round(s.BusinessCount*s.EmploymentRate*s.AvgIncome/100000, 2)
}

// Accessibility grows with traffic density and shrinks with average speed
func (s Signals) Accessibility() float64 {
	return round((100-s.AvgSpeedKmph)/100*s.TrafficDensity, 3)
}

// Set writes the raw signals and their ratios into the vector
func (s Signals) Set(v Vector) {
	v[NameBusinessCount] = s.BusinessCount
	v[NameTrafficDensity] = s.TrafficDensity
	v[NameAvgSpeedKmph] = s.AvgSpeedKmph
	v[NamePopulationDensity] = s.PopulationDensity
	v[NameAvgIncome] = s.AvgIncome
	v[NameEmploymentRate] = s.EmploymentRate
	v[NameBusinessPer1k] = s.BusinessPer1k()
	v[NameEconomicActivity] = s.EconomicActivity()
	v[NameAccessibility] = s.Accessibility()
}

// Conditions are the exogenous inputs of one observation: the current temperature and
// macro indicators along with their trailing means.
type Conditions struct {
	Temperature     float64
	GDPGrowth       float64
	InflationRate   float64
	GDPGrowthMA     float64
	InflationRateMA float64
}

// Set writes the conditions into the vector using the configured moving average window
func (c Conditions) Set(v Vector, window, month int) {
	v[NameTemperature] = c.Temperature
	v[NameGDPGrowth] = c.GDPGrowth
	v[NameInflationRate] = c.InflationRate
	v[MovingAverageName(NameGDPGrowth, window)] = c.GDPGrowthMA
	v[MovingAverageName(NameInflationRate, window)] = c.InflationRateMA
	v[NameTempSeasonInteraction] = c.Temperature * float64(month)
}
