package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/metrics"
	"github.com/aouyang1/go-workforce/timedataset"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEntityNotFound = errors.New("entity not found in history")
	ErrNoHistory      = errors.New("no history")
)

// Query asks for the demand of one entity on one date
type Query struct {
	EntityID string
	Date     time.Time

	// Conditions overrides the temperature and macro indicators. When nil they are carried
	// forward from the entity's most recent records.
	Conditions *feature.Conditions
}

// Prediction is a point forecast
type Prediction struct {
	EntityID string    `json:"location_id"`
	Date     time.Time `json:"date"`
	Demand   int       `json:"predicted_demand"`

	// Raw is the regressor output before rounding and clamping
	Raw float64 `json:"raw"`

	// Fallback is set when the history window was too short and every lag and rolling
	// feature used the entity's full history mean
	Fallback bool `json:"fallback"`
}

// Engine produces point forecasts from a trained model, an entity history and live location
// intelligence. It holds no state between calls.
type Engine struct {
	opt      *EngineOptions
	provider location.Provider
}

func NewEngine(provider location.Provider, opt *EngineOptions) (*Engine, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{
		opt:      opt,
		provider: provider,
	}, nil
}

// Predict forecasts the demand of an entity on the target date
func (e *Engine) Predict(ctx context.Context, model *TrainedModel, entityID string, target time.Time, history *timedataset.Collection) (int, error) {
	p, err := e.PredictQuery(ctx, model, Query{EntityID: entityID, Date: target}, history)
	if err != nil {
		return 0, err
	}
	return p.Demand, nil
}

// PredictQuery forecasts a single query. The lag and rolling features are rebuilt from the
// entity's records in the trailing window before the target date. An unknown entity
// returns ErrEntityNotFound and a failed location lookup returns a retryable
// *location.ProviderError.
func (e *Engine) PredictQuery(ctx context.Context, model *TrainedModel, q Query, history *timedataset.Collection) (Prediction, error) {
	p, err := e.predict(ctx, model, q, history)
	if err != nil {
		e.opt.Metrics.Predictions.WithLabelValues(metrics.OutcomeError).Inc()
		var pErr *location.ProviderError
		if errors.As(err, &pErr) {
			e.opt.Metrics.ProviderErrors.WithLabelValues(pErr.Op).Inc()
		}
		return Prediction{}, err
	}
	outcome := metrics.OutcomeOK
	if p.Fallback {
		outcome = metrics.OutcomeFallback
	}
	e.opt.Metrics.Predictions.WithLabelValues(outcome).Inc()
	return p, nil
}

func (e *Engine) predict(ctx context.Context, model *TrainedModel, q Query, history *timedataset.Collection) (Prediction, error) {
	if model == nil || model.regressor == nil {
		return Prediction{}, ErrUntrainedModel
	}
	if history == nil {
		return Prediction{}, ErrNoHistory
	}
	h, exists := history.Entity(q.EntityID)
	if !exists {
		return Prediction{}, fmt.Errorf("%s, %w", q.EntityID, ErrEntityNotFound)
	}
	last, _ := h.Last()

	eng := model.Engineer()
	featOpt := eng.Options()
	v := make(feature.Vector, model.Schema().Len())

	if err := eng.SetStatic(v, last); err != nil {
		return Prediction{}, fmt.Errorf("unable to resolve static features for %s, %w", q.EntityID, err)
	}
	cal := eng.Calendar(q.Date)
	cal.Set(v)

	window := h.Window(q.Date.AddDate(0, 0, -e.opt.HistoryDays), q.Date)
	fallback := e.setHistory(v, featOpt, window, h)
	if fallback {
		slog.Debug("short history window, using full history mean",
			"location_id", q.EntityID, "date", q.Date.Format(time.DateOnly), "records", len(window))
	}

	cond := q.Conditions
	if cond == nil {
		carried := carryConditions(window, h, featOpt.ExogenousWindow)
		cond = &carried
	}
	cond.Set(v, featOpt.ExogenousWindow, cal.Month)

	snap, err := location.Fetch(ctx, e.provider, last.Latitude, last.Longitude, e.opt.Radius)
	if err != nil {
		return Prediction{}, fmt.Errorf("unable to fetch location intelligence for %s, %w", q.EntityID, err)
	}
	feature.SignalsFromSnapshot(snap).Set(v)

	x, err := model.Schema().Assemble(v)
	if err != nil {
		return Prediction{}, fmt.Errorf("unable to assemble features for %s, %w", q.EntityID, err)
	}
	res, err := model.predictRows(mat.NewDense(1, len(x), x))
	if err != nil {
		return Prediction{}, fmt.Errorf("unable to predict %s, %w", q.EntityID, err)
	}

	return Prediction{
		EntityID: q.EntityID,
		Date:     q.Date,
		Demand:   e.clamp(res[0], q),
		Raw:      res[0],
		Fallback: fallback,
	}, nil
}

// setHistory writes the lag and rolling features and reports whether the short history
// fallback was used
func (e *Engine) setHistory(v feature.Vector, featOpt *feature.Options, window []timedataset.Record, h *timedataset.EntityHistory) bool {
	if len(window) < e.opt.MinHistory {
		mean := h.MeanDemand()
		for _, k := range featOpt.Lags {
			v[feature.LagName(k)] = mean
		}
		for _, w := range featOpt.RollingWindows {
			v[feature.RollingName(w)] = mean
		}
		return true
	}

	y := make([]float64, len(window))
	for i, r := range window {
		y[i] = r.Demand
	}
	for _, k := range featOpt.Lags {
		val, ok := feature.FromLast(y, k)
		if !ok {
			val = e.lagFallback(y)
		}
		v[feature.LagName(k)] = val
	}
	for _, w := range featOpt.RollingWindows {
		v[feature.RollingName(w)] = feature.TrailingMean(y, w)
	}
	return false
}

func (e *Engine) lagFallback(y []float64) float64 {
	switch e.opt.LagFallback {
	case LagFallbackOldest:
		return y[0]
	default:
		return feature.TrailingMean(y, len(y))
	}
}

// carryConditions takes the temperature and macro indicators of the most recent record in
// the window, or of the full history when the window is empty
func carryConditions(window []timedataset.Record, h *timedataset.EntityHistory, maWindow int) feature.Conditions {
	src := window
	if len(src) == 0 {
		src = h.Records
	}
	gdp := make([]float64, len(src))
	infl := make([]float64, len(src))
	for i, r := range src {
		gdp[i] = r.GDPGrowth
		infl[i] = r.InflationRate
	}
	last := src[len(src)-1]
	return feature.Conditions{
		Temperature:     last.Temperature,
		GDPGrowth:       last.GDPGrowth,
		InflationRate:   last.InflationRate,
		GDPGrowthMA:     feature.TrailingMean(gdp, maWindow),
		InflationRateMA: feature.TrailingMean(infl, maWindow),
	}
}

// clamp rounds half to even and floors the forecast at the minimum demand. Non-finite
// regressor outputs are replaced by the minimum.
func (e *Engine) clamp(raw float64, q Query) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		slog.Warn("non-finite prediction replaced by minimum demand",
			"location_id", q.EntityID, "date", q.Date.Format(time.DateOnly), "raw", raw)
		e.opt.Metrics.Predictions.WithLabelValues(metrics.OutcomeClamped).Inc()
		return int(e.opt.MinDemand)
	}
	return int(math.Max(e.opt.MinDemand, math.RoundToEven(raw)))
}

// PredictBatch runs independent queries concurrently. Results are in query order. The first
// failure cancels the remaining queries and is returned.
func (e *Engine) PredictBatch(ctx context.Context, model *TrainedModel, queries []Query, history *timedataset.Collection) ([]Prediction, error) {
	res := make([]Prediction, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opt.Parallelization)
	for i, q := range queries {
		g.Go(func() error {
			p, err := e.PredictQuery(ctx, model, q, history)
			if err != nil {
				return err
			}
			res[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
