package workforce

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/timedataset"
)

func ExampleForecaster() {
	ctx := context.Background()

	records, err := timedataset.Simulate(ctx, timedataset.NewDefaultSimulateOptions(42))
	if err != nil {
		panic(err)
	}

	provider, err := location.NewCached(location.NewSimulated(42), 1024, time.Hour)
	if err != nil {
		panic(err)
	}
	f, err := New(provider, NewDefaultOptions(42))
	if err != nil {
		panic(err)
	}
	if err := f.Fit(records); err != nil {
		panic(err)
	}

	m, err := f.Model()
	if err != nil {
		panic(err)
	}
	if err := m.Forecast.TablePrint(os.Stderr, "", "  "); err != nil {
		panic(err)
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	preds, err := f.Horizon(ctx, []string{"LOC_001", "LOC_002", "LOC_005"}, start, []int{30, 90, 180})
	if err != nil {
		panic(err)
	}
	for _, p := range preds {
		fmt.Printf("%s: %s = %d workers\n", p.EntityID, p.Date.Format(time.DateOnly), p.Demand)
	}

	file, err := os.Create("example_workforce_fit.html")
	if err != nil {
		panic(err)
	}
	defer file.Close()
	if err := f.PlotFit(file); err != nil {
		panic(err)
	}
}
