package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.DroppedRows.WithLabelValues("train").Add(30)
	p.Predictions.WithLabelValues(OutcomeOK).Inc()
	p.ModelRMSE.WithLabelValues("linear_regression").Set(1.5)

	assert.Equal(t, 30.0, testutil.ToFloat64(p.DroppedRows.WithLabelValues("train")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Predictions.WithLabelValues(OutcomeOK)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "workforce_dropped_rows_total")
	assert.Contains(t, names, "workforce_model_rmse")

	assert.Panics(t, func() { NewPipeline(reg) }, "collectors register once per registry")
	assert.NotPanics(t, func() { NewPipeline(nil) })
}
