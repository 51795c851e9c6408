package feature

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/aouyang1/go-workforce/timedataset"
)

var ErrUnknownCategory = errors.New("unknown category")

// LabelEncoder maps labels to their index in the sorted set of distinct labels seen at fit
// time.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

func NewLabelEncoder(labels []string) *LabelEncoder {
	classes := slices.Clone(labels)
	sort.Strings(classes)
	return &LabelEncoder{
		Classes: slices.Compact(classes),
	}
}

func (l *LabelEncoder) Code(label string) (int, error) {
	if l == nil {
		return -1, fmt.Errorf("%s, %w", label, ErrUnknownCategory)
	}
	idx, found := slices.BinarySearch(l.Classes, label)
	if !found {
		return -1, fmt.Errorf("%s, %w", label, ErrUnknownCategory)
	}
	return idx, nil
}

// Encoder holds the categorical code mappings of the location, city and region labels. It
// is fitted once on the full record set and reused unchanged for prediction.
type Encoder struct {
	Location *LabelEncoder `json:"location"`
	City     *LabelEncoder `json:"city"`
	Region   *LabelEncoder `json:"region"`
}

func FitEncoder(records []timedataset.Record) *Encoder {
	locs := make([]string, 0, len(records))
	cities := make([]string, 0, len(records))
	regions := make([]string, 0, len(records))
	for _, r := range records {
		locs = append(locs, r.EntityID)
		cities = append(cities, r.City)
		regions = append(regions, r.Region)
	}
	return &Encoder{
		Location: NewLabelEncoder(locs),
		City:     NewLabelEncoder(cities),
		Region:   NewLabelEncoder(regions),
	}
}

// Set writes the codes of the record's categorical labels into the vector
func (e *Encoder) Set(v Vector, r timedataset.Record) error {
	if e == nil {
		return fmt.Errorf("no fitted encoder, %w", ErrUnknownCategory)
	}
	loc, err := e.Location.Code(r.EntityID)
	if err != nil {
		return fmt.Errorf("unable to encode location, %w", err)
	}
	city, err := e.City.Code(r.City)
	if err != nil {
		return fmt.Errorf("unable to encode city, %w", err)
	}
	region, err := e.Region.Code(r.Region)
	if err != nil {
		return fmt.Errorf("unable to encode region, %w", err)
	}
	v[NameLocationEncoded] = float64(loc)
	v[NameCityEncoded] = float64(city)
	v[NameRegionEncoded] = float64(region)
	return nil
}
