package timedataset

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoTrainingData         = errors.New("no training data")
	ErrNonMonotonic           = errors.New("observation dates are not strictly increasing")
	ErrDuplicateObservation   = errors.New("duplicate observation for entity and date")
	ErrUnknownEntity          = errors.New("unknown entity")
	ErrEmptyEntityHistory     = errors.New("empty entity history")
	ErrMixedEntitiesInHistory = errors.New("history contains more than one entity")
)

// EntityHistory represents the ordered observations of a single entity. Dates are
// strictly increasing and the slice is never mutated after construction.
type EntityHistory struct {
	EntityID string
	Records  []Record
}

// NewEntityHistory returns a validated copy of the input records. Records must all belong
// to the same entity and already be in strictly increasing date order.
func NewEntityHistory(records []Record) (*EntityHistory, error) {
	if len(records) == 0 {
		return nil, ErrEmptyEntityHistory
	}

	entityID := records[0].EntityID
	var lastT time.Time
	for i, r := range records {
		if err := r.Valid(); err != nil {
			return nil, fmt.Errorf("invalid record at %d, %w", i, err)
		}
		if r.EntityID != entityID {
			return nil, fmt.Errorf("found %s after %s at %d, %w", r.EntityID, entityID, i, ErrMixedEntitiesInHistory)
		}
		if i > 0 && !r.Date.After(lastT) {
			if r.Date.Equal(lastT) {
				return nil, fmt.Errorf("entity %s on %s, %w", entityID, r.Date.Format(time.DateOnly), ErrDuplicateObservation)
			}
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = r.Date
	}

	h := &EntityHistory{
		EntityID: entityID,
		Records:  make([]Record, len(records)),
	}
	copy(h.Records, records)
	return h, nil
}

// Copy returns a deep copy of the history
func (h *EntityHistory) Copy() *EntityHistory {
	if h == nil {
		return nil
	}
	records := make([]Record, len(h.Records))
	copy(records, h.Records)
	return &EntityHistory{
		EntityID: h.EntityID,
		Records:  records,
	}
}

func (h *EntityHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Records)
}

// Last returns the most recent observation
func (h *EntityHistory) Last() (Record, bool) {
	if h.Len() == 0 {
		return Record{}, false
	}
	return h.Records[len(h.Records)-1], true
}

// Start returns the earliest observation date
func (h *EntityHistory) Start() time.Time {
	if h.Len() == 0 {
		return time.Time{}
	}
	return h.Records[0].Date
}

// Demand returns the target series in date order
func (h *EntityHistory) Demand() []float64 {
	y := make([]float64, h.Len())
	for i := range y {
		y[i] = h.Records[i].Demand
	}
	return y
}

// MeanDemand is the mean target value over the full history
func (h *EntityHistory) MeanDemand() float64 {
	if h.Len() == 0 {
		return 0
	}
	return stat.Mean(h.Demand(), nil)
}

// Window returns the observations with start <= date < end in date order. The returned
// slice aliases the history and must not be modified.
func (h *EntityHistory) Window(start, end time.Time) []Record {
	if h.Len() == 0 {
		return nil
	}
	lo := sort.Search(len(h.Records), func(i int) bool {
		return !h.Records[i].Date.Before(start)
	})
	hi := sort.Search(len(h.Records), func(i int) bool {
		return !h.Records[i].Date.Before(end)
	})
	if hi < lo {
		return nil
	}
	return h.Records[lo:hi]
}

// Collection indexes observations of many entities by entity id. It is the result of the
// explicit partition pass: every entity owns an independent, date ordered history.
type Collection struct {
	ids       []string
	histories map[string]*EntityHistory
}

// NewCollection partitions the records by entity and sorts each partition by date. The
// storage order of the input does not matter. A repeated (entity, date) pair is an error.
func NewCollection(records []Record) (*Collection, error) {
	if len(records) == 0 {
		return nil, ErrNoTrainingData
	}

	partitions := make(map[string][]Record)
	for i, r := range records {
		if err := r.Valid(); err != nil {
			return nil, fmt.Errorf("invalid record at %d, %w", i, err)
		}
		partitions[r.EntityID] = append(partitions[r.EntityID], r)
	}

	c := &Collection{
		ids:       make([]string, 0, len(partitions)),
		histories: make(map[string]*EntityHistory, len(partitions)),
	}
	for id, part := range partitions {
		slices.SortStableFunc(part, func(a, b Record) int {
			return a.Date.Compare(b.Date)
		})
		h, err := NewEntityHistory(part)
		if err != nil {
			return nil, err
		}
		c.ids = append(c.ids, id)
		c.histories[id] = h
	}
	sort.Strings(c.ids)
	return c, nil
}

// EntityIDs returns the sorted entity ids
func (c *Collection) EntityIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// Entity looks up the history of a single entity
func (c *Collection) Entity(id string) (*EntityHistory, bool) {
	if c == nil {
		return nil, false
	}
	h, exists := c.histories[id]
	return h, exists
}

// Len is the total number of observations across entities
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	var n int
	for _, h := range c.histories {
		n += h.Len()
	}
	return n
}

// Records merges the partitions back in (entity, date) order
func (c *Collection) Records() []Record {
	if c == nil {
		return nil
	}
	records := make([]Record, 0, c.Len())
	for _, id := range c.ids {
		records = append(records, c.histories[id].Records...)
	}
	return records
}

// Start returns the earliest observation date across all entities
func (c *Collection) Start() time.Time {
	var start time.Time
	if c == nil {
		return start
	}
	for _, id := range c.ids {
		s := c.histories[id].Start()
		if start.IsZero() || s.Before(start) {
			start = s
		}
	}
	return start
}
