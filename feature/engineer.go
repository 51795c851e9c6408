package feature

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-workforce/timedataset"

	"golang.org/x/sync/errgroup"
)

var (
	ErrDuplicateObservation = timedataset.ErrDuplicateObservation
	ErrUnsetOrigin          = errors.New("restored engineer requires an origin")
	ErrNotFitted            = errors.New("engineer has not derived any records")
)

// Engineer derives feature frames from raw records. Derive fits the categorical encoder and
// the calendar origin on its input; both are then reused for every later vector so training
// and prediction share a single mapping.
type Engineer struct {
	opt     *Options
	schema  *Schema
	encoder *Encoder
	origin  time.Time
}

func NewEngineer(opt *Options) (*Engineer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	schema, err := opt.Schema()
	if err != nil {
		return nil, fmt.Errorf("unable to build feature schema, %w", err)
	}
	return &Engineer{
		opt:    opt,
		schema: schema,
		origin: opt.Origin,
	}, nil
}

// Restore rebuilds a fitted engineer from persisted options and encoder
func Restore(opt *Options, enc *Encoder) (*Engineer, error) {
	if opt == nil || opt.Origin.IsZero() {
		return nil, ErrUnsetOrigin
	}
	if enc == nil {
		return nil, ErrNotFitted
	}
	e, err := NewEngineer(opt)
	if err != nil {
		return nil, err
	}
	e.encoder = enc
	return e, nil
}

func (e *Engineer) Schema() *Schema {
	return e.schema
}

func (e *Engineer) Encoder() *Encoder {
	return e.encoder
}

func (e *Engineer) Origin() time.Time {
	return e.origin
}

// Options returns the options with the fitted origin filled in
func (e *Engineer) Options() *Options {
	opt := *e.opt
	opt.Origin = e.origin
	return &opt
}

// Derive computes the feature frame of the records. Records are partitioned by entity, each
// partition is sorted by date and its windows computed independently, and the partitions are
// merged back in (entity, date) order. Lag values are NaN for the first k records of every
// entity.
func (e *Engineer) Derive(records []timedataset.Record) (*Frame, error) {
	coll, err := timedataset.NewCollection(records)
	if err != nil {
		return nil, fmt.Errorf("unable to partition records by entity, %w", err)
	}

	e.encoder = FitEncoder(records)
	if e.opt.Origin.IsZero() {
		e.origin = coll.Start()
	}

	ids := coll.EntityIDs()
	parts := make([]*Frame, len(ids))

	var g errgroup.Group
	g.SetLimit(e.opt.Parallelism)
	for i, id := range ids {
		h, _ := coll.Entity(id)
		g.Go(func() error {
			part, err := e.deriveEntity(h)
			if err != nil {
				return fmt.Errorf("unable to derive features for %s, %w", id, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeFrames(e.schema, parts), nil
}

func exogenousSeries(records []timedataset.Record) ([]float64, []float64) {
	gdp := make([]float64, len(records))
	infl := make([]float64, len(records))
	for i, r := range records {
		gdp[i] = r.GDPGrowth
		infl[i] = r.InflationRate
	}
	return gdp, infl
}

func (e *Engineer) deriveEntity(h *timedataset.EntityHistory) (*Frame, error) {
	y := h.Demand()

	lags := make([][]float64, len(e.opt.Lags))
	for i, k := range e.opt.Lags {
		lags[i] = Lag(y, k)
	}
	rolling := make([][]float64, len(e.opt.RollingWindows))
	for i, w := range e.opt.RollingWindows {
		rolling[i] = RollingMean(y, w)
	}
	gdp, infl := exogenousSeries(h.Records)
	gdpMA := RollingMean(gdp, e.opt.ExogenousWindow)
	inflMA := RollingMean(infl, e.opt.ExogenousWindow)

	f := &Frame{
		Schema: e.schema,
		Keys:   make([]Key, 0, h.Len()),
		X:      make([][]float64, 0, h.Len()),
		Y:      make([]float64, 0, h.Len()),
	}
	for i, r := range h.Records {
		v := make(Vector, e.schema.Len())
		if err := e.SetStatic(v, r); err != nil {
			return nil, err
		}
		e.Calendar(r.Date).Set(v)
		SignalsFromRecord(r).Set(v)
		Conditions{
			Temperature:     r.Temperature,
			GDPGrowth:       r.GDPGrowth,
			InflationRate:   r.InflationRate,
			GDPGrowthMA:     gdpMA[i],
			InflationRateMA: inflMA[i],
		}.Set(v, e.opt.ExogenousWindow, int(r.Date.Month()))

		for j, k := range e.opt.Lags {
			v[LagName(k)] = lags[j][i]
		}
		for j, w := range e.opt.RollingWindows {
			v[RollingName(w)] = rolling[j][i]
		}

		x, err := e.schema.Assemble(v)
		if err != nil {
			return nil, err
		}
		f.Keys = append(f.Keys, Key{EntityID: r.EntityID, Date: r.Date})
		f.X = append(f.X, x)
		f.Y = append(f.Y, r.Demand)
	}
	return f, nil
}

// Calendar derives the calendar fields of a date against the fitted origin
func (e *Engineer) Calendar(t time.Time) Calendar {
	return NewCalendar(t, e.origin, e.opt.Holidays)
}

// SetStatic writes the features that depend only on the entity: the distance from the
// reference coordinate and the categorical codes.
func (e *Engineer) SetStatic(v Vector, r timedataset.Record) error {
	v[NameDistance] = Haversine(e.opt.Reference, Coordinate{Latitude: r.Latitude, Longitude: r.Longitude})
	return e.encoder.Set(v, r)
}
