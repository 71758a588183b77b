// Package forecast implements the multi-model demand forecasting
// pipeline: monthly aggregation, a three-model bank scored by MAPE on a
// chronological holdout, and a full-series refit for the final
// one-step-ahead forecast.
package forecast

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/domain"
)

const (
	trainFraction = 0.8

	// trendThresholdPct classifies a slope as a real trend only when it
	// moves more than 5% of the series mean per month.
	trendThresholdPct = 0.05

	seasonalLag           = 12
	seasonalCorrThreshold = 0.3
)

// candidates fixes the declaration order of the model bank. Ties in the
// selection break in this order.
var candidates = []domain.ForecastModel{
	domain.ModelMovingAverage,
	domain.ModelExponentialSmoothing,
	domain.ModelLinearRegression,
}

type Forecaster struct {
	minMonths int
}

// New builds a forecaster requiring at least minMonths of history. The
// package minimum is a hard floor; configuration can only raise it.
func New(minMonths int) *Forecaster {
	if minMonths < MinimumMonths {
		minMonths = MinimumMonths
	}
	return &Forecaster{minMonths: minMonths}
}

// Evaluate scores every candidate on an 80/20 chronological split. The
// first 80% trains, the trailing 20% tests; time series are never
// shuffled. Fit failures stay inside the returned results.
func (f *Forecaster) Evaluate(series domain.MonthlySeries) []ModelResult {
	splitIdx := int(float64(len(series)) * trainFraction)
	quantities := series.Quantities()
	train := quantities[:splitIdx]
	test := quantities[splitIdx:]

	results := make([]ModelResult, 0, len(candidates))
	for _, model := range candidates {
		var r ModelResult
		switch model {
		case domain.ModelMovingAverage:
			r = evalMovingAverage(train, test)
		case domain.ModelExponentialSmoothing:
			r = evalExponentialSmoothing(train, test)
		case domain.ModelLinearRegression:
			r = evalLinearRegression(series, splitIdx)
		}

		if !r.Fitted() {
			log.Warn().Str("model", string(r.Model)).Err(r.Err).Msg("model fit failed, candidate loses selection")
		}
		results = append(results, r)
	}
	return results
}

// SelectBest picks the fitted candidate with the lowest MAPE. Ties, and
// the degenerate all-failed case, resolve by declaration order.
func SelectBest(results []ModelResult) ModelResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.Fitted() && (!best.Fitted() || r.MAPE < best.MAPE) {
			best = r
		}
	}
	return best
}

// Forecast runs the full pipeline for one item: evaluate the bank,
// refit the winner on the whole series, and predict one period ahead.
func (f *Forecaster) Forecast(itemCode string, series domain.MonthlySeries) (domain.DemandForecast, []ModelResult, error) {
	if len(series) < f.minMonths {
		return domain.DemandForecast{}, nil, domain.NewError(domain.ErrInsufficientHistory,
			"insufficient data: need at least %d months, found %d", f.minMonths, len(series))
	}

	results := f.Evaluate(series)
	best := SelectBest(results)

	quantities := series.Quantities()
	predicted := refit(best.Model, series)
	if predicted < 0 {
		predicted = 0
	}

	sd := stddev(quantities)
	interval := domain.ConfidenceInterval{
		Lower80: floorZero(predicted - sd),
		Upper80: int(predicted + sd),
		Lower95: floorZero(predicted - 2*sd),
		Upper95: int(predicted + 2*sd),
	}

	forecast := domain.DemandForecast{
		ItemCode:            itemCode,
		PredictedDemand:     int(predicted),
		Confidence:          ConfidenceFromMAPE(best.MAPE),
		ModelUsed:           best.Model,
		HistoricalAverage:   int(mean(quantities)),
		Trend:               detectTrend(quantities),
		SeasonalityDetected: detectSeasonality(quantities),
		ConfidenceInterval:  interval,
	}

	log.Info().
		Str("item_code", itemCode).
		Str("model", string(best.Model)).
		Float64("mape", best.MAPE).
		Int("predicted_demand", forecast.PredictedDemand).
		Msg("forecast complete")

	return forecast, results, nil
}

// refit retrains the winning model type on the entire series and
// predicts the next period. A failed refit falls back to the
// historical mean, the same degradation the evaluation already allows.
func refit(model domain.ForecastModel, series domain.MonthlySeries) float64 {
	quantities := series.Quantities()

	switch model {
	case domain.ModelMovingAverage:
		return movingAverageForecast(quantities, 1)[0]

	case domain.ModelExponentialSmoothing:
		m, err := fitHolt(quantities)
		if err != nil {
			return mean(quantities)
		}
		return m.forecast(1)[0]

	case domain.ModelLinearRegression:
		features := buildFeatures(series)
		var complete []featureRow
		for _, row := range features {
			if row.complete {
				complete = append(complete, row)
			}
		}
		m, err := fitRegression(complete)
		if err != nil {
			return mean(quantities)
		}
		return m.predict(nextFeatures(series))

	default:
		return mean(quantities)
	}
}

// ConfidenceFromMAPE maps model error to a confidence score. This is
// the single canonical table; confidence is non-increasing in MAPE.
func ConfidenceFromMAPE(mapeValue float64) float64 {
	switch {
	case mapeValue < 10:
		return 0.95
	case mapeValue < 15:
		return 0.85
	case mapeValue < 20:
		return 0.75
	case mapeValue < 30:
		return 0.65
	default:
		return 0.50
	}
}

// detectTrend classifies the OLS slope of quantity against time. Slopes
// within 5% of the series mean per month count as stable.
func detectTrend(values []float64) domain.Trend {
	if len(values) < 3 {
		return domain.TrendStable
	}

	slope := olsSlope(values)
	threshold := mean(values) * trendThresholdPct

	switch {
	case slope > threshold:
		return domain.TrendIncreasing
	case slope < -threshold:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// detectSeasonality looks for a significant 12-month autocorrelation.
// Anything under 13 months cannot carry a lag-12 signal.
func detectSeasonality(values []float64) bool {
	if len(values) <= seasonalLag {
		return false
	}
	return math.Abs(autocorrelation(values, seasonalLag)) > seasonalCorrThreshold
}

func floorZero(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v)
}
