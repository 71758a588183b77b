package forecast

import "github.com/procurehq/replenish/internal/domain"

// featureRow is the regression view of one month: calendar position,
// lagged demand, and rolling means. complete is false while any lag
// reaches before the start of the series.
type featureRow struct {
	seriesIndex int
	monthNum    float64
	quarter     float64
	lag1        float64
	lag2        float64
	lag3        float64
	rolling3    float64
	rolling6    float64
	target      float64
	complete    bool
}

// vector returns the regression inputs in a fixed column order.
func (f featureRow) vector() []float64 {
	return []float64{f.monthNum, f.quarter, f.lag1, f.lag2, f.lag3, f.rolling3, f.rolling6}
}

// buildFeatures derives the feature rows for a monthly series. Rolling
// means use however many points exist; lags require real history, so
// the first three rows are incomplete.
func buildFeatures(series domain.MonthlySeries) []featureRow {
	rows := make([]featureRow, len(series))
	for i, p := range series {
		row := featureRow{
			seriesIndex: i,
			monthNum:    float64(p.Month.Month()),
			quarter:     float64((int(p.Month.Month())-1)/3 + 1),
			target:      p.Quantity,
			complete:    i >= 3,
		}
		if i >= 1 {
			row.lag1 = series[i-1].Quantity
		}
		if i >= 2 {
			row.lag2 = series[i-2].Quantity
		}
		if i >= 3 {
			row.lag3 = series[i-3].Quantity
		}
		row.rolling3 = rollingMean(series, i, 3)
		row.rolling6 = rollingMean(series, i, 6)
		rows[i] = row
	}
	return rows
}

// nextFeatures builds the feature vector for one period past the end of
// the series, used for the final one-step forecast.
func nextFeatures(series domain.MonthlySeries) []float64 {
	n := len(series)
	next := series[n-1].Month.AddDate(0, 1, 0)

	lag := func(k int) float64 {
		if n >= k {
			return series[n-k].Quantity
		}
		return 0
	}

	return []float64{
		float64(next.Month()),
		float64((int(next.Month())-1)/3 + 1),
		lag(1),
		lag(2),
		lag(3),
		tailMean(series, 3),
		tailMean(series, 6),
	}
}

// rollingMean averages the window ending at index i, shrinking at the
// start of the series.
func rollingMean(series domain.MonthlySeries, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for j := start; j <= i; j++ {
		sum += series[j].Quantity
	}
	return sum / float64(i-start+1)
}

func tailMean(series domain.MonthlySeries, window int) float64 {
	start := len(series) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for j := start; j < len(series); j++ {
		sum += series[j].Quantity
	}
	return sum / float64(len(series)-start)
}
