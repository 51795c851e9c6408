package workforce

import (
	"time"

	"github.com/aouyang1/go-workforce/forecast"
)

// Model is the serializable output of a fitted Forecaster
type Model struct {
	Cutoff   time.Time      `json:"cutoff"`
	Forecast forecast.Model `json:"forecast"`
}
