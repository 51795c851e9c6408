package workforce

import (
	"time"

	"github.com/aouyang1/go-workforce/forecast"
)

// Results holds the held out predictions of the selected model alongside the actual demand
type Results struct {
	EntityIDs []string    `json:"location_ids"`
	T         []time.Time `json:"time"`
	Actual    []float64   `json:"actual"`
	Predicted []float64   `json:"predicted"`

	Evaluations  []forecast.Evaluation `json:"evaluations"`
	DroppedTrain int                   `json:"dropped_train"`
	DroppedTest  int                   `json:"dropped_test"`
}

// Entity returns the held out dates, actual and predicted values of a single entity
func (r *Results) Entity(id string) ([]time.Time, []float64, []float64) {
	if r == nil {
		return nil, nil, nil
	}
	var t []time.Time
	var actual, predicted []float64
	for i, e := range r.EntityIDs {
		if e != id {
			continue
		}
		t = append(t, r.T[i])
		actual = append(actual, r.Actual[i])
		predicted = append(predicted, r.Predicted[i])
	}
	return t, actual, predicted
}
