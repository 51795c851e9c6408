package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

var (
	ErrDuplicateFeature = errors.New("duplicate feature name")
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
	ErrMissingValue     = errors.New("no value for feature")
	ErrNilSchema        = errors.New("nil schema")
)

// Schema tracks the ordered features a model is trained against along with their column
// index in the design matrix.
type Schema struct {
	idx      map[string]int
	features []Feature
}

func NewSchema(features []Feature) (*Schema, error) {
	idx := make(map[string]int, len(features))
	for i, f := range features {
		if _, exists := idx[f.Name]; exists {
			return nil, fmt.Errorf("%s at column %d, %w", f.Name, i, ErrDuplicateFeature)
		}
		idx[f.Name] = i
	}
	fs := make([]Feature, len(features))
	copy(fs, features)
	return &Schema{
		idx:      idx,
		features: fs,
	}, nil
}

func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.features)
}

func (s *Schema) Features() []Feature {
	if s == nil {
		return nil
	}
	features := make([]Feature, len(s.features))
	copy(features, s.features)
	return features
}

// Names returns the feature names in column order
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) Index(name string) (int, bool) {
	if s == nil {
		return -1, false
	}
	if idx, exists := s.idx[name]; exists {
		return idx, exists
	}
	return -1, false
}

// Compare returns an error describing the first difference in length or ordering between
// two schemas.
func (s *Schema) Compare(other *Schema) error {
	if s == nil || other == nil {
		return fmt.Errorf("%w, %w", ErrNilSchema, ErrSchemaMismatch)
	}
	if s.Len() != other.Len() {
		return fmt.Errorf("expected %d features but got %d, %w", s.Len(), other.Len(), ErrSchemaMismatch)
	}
	for i := range s.features {
		if s.features[i].Name != other.features[i].Name {
			return fmt.Errorf("column %d expected %s but got %s, %w", i, s.features[i].Name, other.features[i].Name, ErrSchemaMismatch)
		}
	}
	return nil
}

// Assemble lays out the vector values in column order. Every feature of the schema must be
// present in the vector and the vector must not carry features the schema does not know.
func (s *Schema) Assemble(v Vector) ([]float64, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	if len(v) != len(s.features) {
		for name := range v {
			if _, exists := s.idx[name]; !exists {
				return nil, fmt.Errorf("unknown feature %s, %w", name, ErrSchemaMismatch)
			}
		}
	}
	x := make([]float64, len(s.features))
	for i, f := range s.features {
		val, exists := v[f.Name]
		if !exists {
			return nil, fmt.Errorf("%s, %w, %w", f.Name, ErrMissingValue, ErrSchemaMismatch)
		}
		x[i] = val
	}
	return x, nil
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Features())
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var features []Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return err
	}
	next, err := NewSchema(features)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

// Vector maps feature names to values for a single observation. Missing values are NaN.
type Vector map[string]float64

// Missing reports whether any value is NaN
func (v Vector) Missing() bool {
	for _, val := range v {
		if math.IsNaN(val) {
			return true
		}
	}
	return false
}
