package forecast

import (
	"errors"
	"runtime"

	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/metrics"
	"github.com/aouyang1/go-workforce/models"
	"github.com/aouyang1/go-workforce/timedataset"
)

var (
	ErrNoCandidates       = errors.New("no candidate models")
	ErrDuplicateCandidate = errors.New("duplicate candidate model")
	ErrInvalidHistory     = errors.New("history window must cover the minimum history")
	ErrNilProvider        = errors.New("no location intelligence provider")
)

// LagFallback decides the value of a lag that reaches further back than the available
// history window
type LagFallback int

const (
	// LagFallbackMean uses the mean of the available window
	LagFallbackMean LagFallback = iota

	// LagFallbackOldest uses the oldest record of the window
	LagFallbackOldest
)

// TrainerOptions configures candidate training and selection
type TrainerOptions struct {
	Candidates []models.Kind
	Models     *models.Options

	// Metrics defaults to unregistered collectors
	Metrics *metrics.Pipeline
}

func NewDefaultTrainerOptions(seed uint64) *TrainerOptions {
	return &TrainerOptions{
		Candidates: models.Kinds(),
		Models:     models.NewDefaultOptions(seed),
	}
}

func (o *TrainerOptions) Validate() (*TrainerOptions, error) {
	if o == nil {
		o = NewDefaultTrainerOptions(0)
	}
	if len(o.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	seen := make(map[models.Kind]bool, len(o.Candidates))
	for _, k := range o.Candidates {
		if _, err := models.ParseKind(k.String()); err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, ErrDuplicateCandidate
		}
		seen[k] = true
	}
	modelOpt, err := o.Models.Validate()
	if err != nil {
		return nil, err
	}
	o.Models = modelOpt
	if o.Metrics == nil {
		o.Metrics = metrics.NewPipeline(nil)
	}
	return o, nil
}

// EngineOptions configures how a point forecast rebuilds its inputs from history
type EngineOptions struct {
	// HistoryDays is the trailing window before the target date used for lag and rolling
	// features
	HistoryDays int

	// MinHistory is the fewest records in the window for lag and rolling features to be
	// computed from it. Fewer records fall back to the full history mean.
	MinHistory int

	LagFallback LagFallback

	// Radius in meters for nearby business lookups
	Radius int

	// MinDemand is the floor of every forecast
	MinDemand float64

	// Parallelization bounds concurrent predictions in a batch
	Parallelization int

	// Metrics defaults to unregistered collectors
	Metrics *metrics.Pipeline
}

func NewDefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		HistoryDays:     90,
		MinHistory:      7,
		LagFallback:     LagFallbackMean,
		Radius:          location.DefaultRadius,
		MinDemand:       timedataset.MinDemand,
		Parallelization: runtime.GOMAXPROCS(0),
	}
}

func (o *EngineOptions) Validate() (*EngineOptions, error) {
	if o == nil {
		o = NewDefaultEngineOptions()
	}
	if o.MinHistory < 1 || o.HistoryDays < o.MinHistory {
		return nil, ErrInvalidHistory
	}
	if o.Radius <= 0 {
		o.Radius = location.DefaultRadius
	}
	if o.Parallelization <= 0 {
		o.Parallelization = runtime.GOMAXPROCS(0)
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewPipeline(nil)
	}
	return o, nil
}
