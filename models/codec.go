package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

type envelope struct {
	Kind  Kind            `json:"kind"`
	Model json.RawMessage `json:"model"`
}

// Marshal serializes a fitted regressor along with its kind
func Marshal(r Regressor) ([]byte, error) {
	if r == nil {
		return nil, ErrNotFitted
	}
	model, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal %s, %w", r.Kind(), err)
	}
	return json.Marshal(envelope{Kind: r.Kind(), Model: model})
}

// Unmarshal restores a regressor serialized with Marshal. The restored regressor can
// predict but carries no fit options.
func Unmarshal(data []byte) (Regressor, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unable to unmarshal model envelope, %w", err)
	}

	var r Regressor
	switch env.Kind {
	case KindBagging:
		r = &RandomForest{}
	case KindBoosting:
		r = &GradientBoosting{}
	case KindLinear:
		r = &LinearRegression{}
	default:
		return nil, fmt.Errorf("%s, %w", env.Kind, ErrUnknownKind)
	}
	if err := json.Unmarshal(env.Model, r); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s, %w", env.Kind, err)
	}
	return r, nil
}
