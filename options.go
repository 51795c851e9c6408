package workforce

import (
	"errors"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/forecast"
	"github.com/aouyang1/go-workforce/metrics"
)

var ErrUnsetCutoff = errors.New("unset train and test cutoff")

// DefaultCutoff separates the simulated history into train and test partitions
var DefaultCutoff = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

// Options configures every stage of the pipeline
type Options struct {
	Features *feature.Options         `json:"features"`
	Trainer  *forecast.TrainerOptions `json:"-"`
	Engine   *forecast.EngineOptions  `json:"-"`

	// Cutoff is the first date of the test partition
	Cutoff time.Time `json:"cutoff"`

	// Metrics is shared by the trainer and the engine when they do not set their own
	Metrics *metrics.Pipeline `json:"-"`
}

func NewDefaultOptions(seed uint64) *Options {
	return &Options{
		Features: feature.NewDefaultOptions(),
		Trainer:  forecast.NewDefaultTrainerOptions(seed),
		Engine:   forecast.NewDefaultEngineOptions(),
		Cutoff:   DefaultCutoff,
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions(0)
	}
	if o.Cutoff.IsZero() {
		return nil, ErrUnsetCutoff
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewPipeline(nil)
	}
	if o.Trainer == nil {
		o.Trainer = forecast.NewDefaultTrainerOptions(0)
	}
	if o.Trainer.Metrics == nil {
		o.Trainer.Metrics = o.Metrics
	}
	if o.Engine == nil {
		o.Engine = forecast.NewDefaultEngineOptions()
	}
	if o.Engine.Metrics == nil {
		o.Engine.Metrics = o.Metrics
	}

	features, err := o.Features.Validate()
	if err != nil {
		return nil, err
	}
	o.Features = features
	return o, nil
}
