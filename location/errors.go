package location

import (
	"errors"
	"fmt"
)

const (
	OpNearbyBusinesses = "nearby_businesses"
	OpTrafficAnalytics = "traffic_analytics"
	OpDemographics     = "demographics"
)

var ErrProviderUnavailable = errors.New("location intelligence provider unavailable")

// ProviderError reports a failed location intelligence lookup. These failures are always
// retryable by the caller.
type ProviderError struct {
	Op  string
	Lat float64
	Lon float64
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("location %s at (%.4f, %.4f) failed, %v", e.Op, e.Lat, e.Lon, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable marks the error as safe to retry
func (e *ProviderError) Retryable() bool {
	return true
}

// IsRetryable reports whether err carries a retryable provider failure
func IsRetryable(err error) bool {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Retryable()
	}
	return false
}

func wrapProviderError(op string, lat, lon float64, err error) error {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return err
	}
	return &ProviderError{
		Op:  op,
		Lat: lat,
		Lon: lon,
		Err: err,
	}
}
