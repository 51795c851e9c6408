package workforce

import (
	"math"
	"time"

	"github.com/aouyang1/go-workforce/forecast"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. Time points where any
// series is NaN are skipped.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Trigger: "axis",
			},
		),
	)

	keep := make([]bool, len(t))
	filteredT := make([]string, 0, len(t))
	for j := range t {
		keep[j] = true
		for i := range y {
			if j >= len(y[i]) || math.IsNaN(y[i][j]) {
				keep[j] = false
				break
			}
		}
		if keep[j] {
			filteredT = append(filteredT, t[j].Format(time.DateOnly))
		}
	}

	line = line.SetXAxis(filteredT)
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		lineData := make([]opts.LineData, 0, len(filteredT))
		for j := range t {
			if !keep[j] {
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// BarEvaluations generates an echart bar chart of the held out errors of every candidate model
func BarEvaluations(evals []forecast.Evaluation) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Model Scores",
			},
		),
	)

	kinds := make([]string, 0, len(evals))
	rmse := make([]opts.BarData, 0, len(evals))
	mae := make([]opts.BarData, 0, len(evals))
	for _, e := range evals {
		kinds = append(kinds, e.Kind.String())
		rmse = append(rmse, opts.BarData{Value: e.RMSE})
		mae = append(mae, opts.BarData{Value: e.MAE})
	}

	bar.SetXAxis(kinds).
		AddSeries("RMSE", rmse).
		AddSeries("MAE", mae)
	return bar
}
