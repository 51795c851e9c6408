// Package feature derives the model inputs of every observation: calendar fields, the
// distance from a reference coordinate, location signal ratios, categorical codes and the
// per entity lag and rolling window aggregates of the demand target.
package feature

import "fmt"

type FeatureType int

const (
	FeatureTypeCalendar FeatureType = iota
	FeatureTypeExogenous
	FeatureTypeLag
	FeatureTypeRolling
	FeatureTypeGeo
	FeatureTypeSignal
	FeatureTypeDerived
	FeatureTypeCategorical
)

func (t FeatureType) String() string {
	switch t {
	case FeatureTypeCalendar:
		return "calendar"
	case FeatureTypeExogenous:
		return "exogenous"
	case FeatureTypeLag:
		return "lag"
	case FeatureTypeRolling:
		return "rolling"
	case FeatureTypeGeo:
		return "geo"
	case FeatureTypeSignal:
		return "signal"
	case FeatureTypeDerived:
		return "derived"
	case FeatureTypeCategorical:
		return "categorical"
	}
	return "unknown"
}

// Feature is a single named model input
type Feature struct {
	Name string      `json:"name"`
	Type FeatureType `json:"type"`
}

func (f Feature) String() string {
	return f.Name
}

const (
	NameYear          = "year"
	NameMonth         = "month"
	NameDay           = "day"
	NameDayOfWeek     = "day_of_week"
	NameQuarter       = "quarter"
	NameWeekOfYear    = "week_of_year"
	NameDaysFromStart = "days_from_start"
	NameIsWeekend     = "is_weekend"
	NameIsHoliday     = "is_holiday"

	NameTemperature   = "temperature"
	NameGDPGrowth     = "gdp_growth"
	NameInflationRate = "inflation_rate"

	NameDistance              = "distance_from_reference"
	NameTempSeasonInteraction = "temp_season_interaction"

	NameBusinessCount     = "business_count"
	NameTrafficDensity    = "traffic_density"
	NameAvgSpeedKmph      = "avg_speed_kmph"
	NamePopulationDensity = "population_density"
	NameAvgIncome         = "avg_income"
	NameEmploymentRate    = "employment_rate"

	NameBusinessPer1k    = "business_per_1k_population"
	NameEconomicActivity = "economic_activity_index"
	NameAccessibility    = "accessibility_score"
	NameLocationEncoded  = "location_encoded"
	NameCityEncoded      = "city_encoded"
	NameRegionEncoded    = "region_encoded"
)

// LagName is the feature name of the demand value k records back
func LagName(k int) string {
	return fmt.Sprintf("demand_lag_%d", k)
}

// RollingName is the feature name of the trailing demand mean over w records
func RollingName(w int) string {
	return fmt.Sprintf("demand_rolling_%d", w)
}

// MovingAverageName is the feature name of the trailing mean of an exogenous field
func MovingAverageName(field string, w int) string {
	return fmt.Sprintf("%s_ma_%d", field, w)
}
