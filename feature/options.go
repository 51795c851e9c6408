package feature

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

var (
	ErrNonPositiveLag    = errors.New("lag must be positive")
	ErrNonPositiveWindow = errors.New("window must be positive")
	ErrInvalidReference  = errors.New("reference coordinate out of range")
)

// Options configures the derived feature set
type Options struct {
	// Origin is the date days_from_start counts from. Defaults to the earliest observation of
	// the derived records.
	Origin time.Time `json:"origin"`

	Lags            []int `json:"lags"`
	RollingWindows  []int `json:"rolling_windows"`
	ExogenousWindow int   `json:"exogenous_window"`

	// Reference is the coordinate distances are measured from
	Reference Coordinate     `json:"reference"`
	Holidays  *HolidayPolicy `json:"holidays"`

	// Parallelism bounds how many entities are derived at once
	Parallelism int `json:"-"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Lags:            []int{1, 7, 30},
		RollingWindows:  []int{7, 30, 90},
		ExogenousWindow: 30,
		Reference:       DefaultReference,
		Holidays:        NewDefaultHolidayPolicy(),
		Parallelism:     runtime.GOMAXPROCS(0),
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	for _, k := range o.Lags {
		if k <= 0 {
			return nil, fmt.Errorf("got lag %d, %w", k, ErrNonPositiveLag)
		}
	}
	for _, w := range o.RollingWindows {
		if w <= 0 {
			return nil, fmt.Errorf("got rolling window %d, %w", w, ErrNonPositiveWindow)
		}
	}
	if o.ExogenousWindow <= 0 {
		return nil, fmt.Errorf("got exogenous window %d, %w", o.ExogenousWindow, ErrNonPositiveWindow)
	}
	ref := o.Reference
	if ref.Latitude < -90 || ref.Latitude > 90 || ref.Longitude < -180 || ref.Longitude > 180 {
		return nil, ErrInvalidReference
	}
	holidays, err := o.Holidays.Validate()
	if err != nil {
		return nil, err
	}
	o.Holidays = holidays
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o, nil
}

// MaxLag is the largest configured lag
func (o *Options) MaxLag() int {
	var m int
	for _, k := range o.Lags {
		m = max(m, k)
	}
	return m
}

// MaxWindow is the largest configured rolling window
func (o *Options) MaxWindow() int {
	var m int
	for _, w := range o.RollingWindows {
		m = max(m, w)
	}
	return m
}

// Schema returns the ordered feature set the options produce
func (o *Options) Schema() (*Schema, error) {
	features := []Feature{
		{NameYear, FeatureTypeCalendar},
		{NameMonth, FeatureTypeCalendar},
		{NameDay, FeatureTypeCalendar},
		{NameDayOfWeek, FeatureTypeCalendar},
		{NameQuarter, FeatureTypeCalendar},
		{NameWeekOfYear, FeatureTypeCalendar},
		{NameDaysFromStart, FeatureTypeCalendar},
		{NameIsWeekend, FeatureTypeCalendar},
		{NameIsHoliday, FeatureTypeCalendar},
		{NameTemperature, FeatureTypeExogenous},
		{NameGDPGrowth, FeatureTypeExogenous},
		{NameInflationRate, FeatureTypeExogenous},
	}
	for _, k := range o.Lags {
		features = append(features, Feature{LagName(k), FeatureTypeLag})
	}
	for _, w := range o.RollingWindows {
		features = append(features, Feature{RollingName(w), FeatureTypeRolling})
	}
	features = append(features,
		Feature{MovingAverageName(NameGDPGrowth, o.ExogenousWindow), FeatureTypeExogenous},
		Feature{MovingAverageName(NameInflationRate, o.ExogenousWindow), FeatureTypeExogenous},
		Feature{NameDistance, FeatureTypeGeo},
		Feature{NameTempSeasonInteraction, FeatureTypeDerived},
		Feature{NameBusinessCount, FeatureTypeSignal},
		Feature{NameTrafficDensity, FeatureTypeSignal},
		Feature{NameAvgSpeedKmph, FeatureTypeSignal},
		Feature{NamePopulationDensity, FeatureTypeSignal},
		Feature{NameAvgIncome, FeatureTypeSignal},
		Feature{NameEmploymentRate, FeatureTypeSignal},
		Feature{NameBusinessPer1k, FeatureTypeDerived},
		Feature{NameEconomicActivity, FeatureTypeDerived},
		Feature{NameAccessibility, FeatureTypeDerived},
		Feature{NameLocationEncoded, FeatureTypeCategorical},
		Feature{NameCityEncoded, FeatureTypeCategorical},
		Feature{NameRegionEncoded, FeatureTypeCategorical},
	)
	return NewSchema(features)
}
