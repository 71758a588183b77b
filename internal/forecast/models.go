package forecast

import (
	"fmt"
	"math"

	"github.com/procurehq/replenish/internal/domain"
)

// ModelResult is the outcome of evaluating one candidate model. A
// failed fit carries its reason instead of a sentinel score; failed
// candidates simply lose the model selection.
type ModelResult struct {
	Model       domain.ForecastModel `json:"name"`
	MAPE        float64              `json:"mape"`
	Predictions []float64            `json:"-"`
	Err         error                `json:"-"`
}

// Fitted reports whether the candidate produced a usable fit.
func (r ModelResult) Fitted() bool { return r.Err == nil }

func fitted(model domain.ForecastModel, score float64, preds []float64) ModelResult {
	return ModelResult{Model: model, MAPE: score, Predictions: preds}
}

func failed(model domain.ForecastModel, err error) ModelResult {
	return ModelResult{Model: model, MAPE: math.Inf(1), Err: err}
}

// movingAverageForecast predicts the mean of the last min(3, len(train))
// training points, repeated for every test step.
func movingAverageForecast(train []float64, steps int) []float64 {
	window := 3
	if len(train) < window {
		window = len(train)
	}
	avg := mean(train[len(train)-window:])

	preds := make([]float64, steps)
	for i := range preds {
		preds[i] = avg
	}
	return preds
}

func evalMovingAverage(train, test []float64) ModelResult {
	if len(train) == 0 {
		return failed(domain.ModelMovingAverage, fmt.Errorf("empty training series"))
	}
	preds := movingAverageForecast(train, len(test))
	return fitted(domain.ModelMovingAverage, mape(test, preds), preds)
}

// holtModel is additive-trend (double) exponential smoothing with
// smoothing parameters chosen by grid search.
type holtModel struct {
	level float64
	trend float64
	alpha float64
	beta  float64
}

// fitHolt fits Holt's linear method by scanning alpha and beta over a
// coarse grid and keeping the pair with the lowest one-step-ahead SSE
// on the training data. Deterministic for a given series.
func fitHolt(train []float64) (holtModel, error) {
	if len(train) < 3 {
		return holtModel{}, fmt.Errorf("need at least 3 points for trend smoothing, have %d", len(train))
	}

	best := holtModel{}
	bestSSE := math.Inf(1)

	for a := 1; a <= 9; a++ {
		for b := 1; b <= 9; b++ {
			alpha := float64(a) / 10
			beta := float64(b) / 10

			level := train[0]
			trend := train[1] - train[0]
			sse := 0.0

			for i := 1; i < len(train); i++ {
				pred := level + trend
				err := train[i] - pred
				sse += err * err

				prevLevel := level
				level = alpha*train[i] + (1-alpha)*(level+trend)
				trend = beta*(level-prevLevel) + (1-beta)*trend
			}

			if sse < bestSSE {
				bestSSE = sse
				best = holtModel{level: level, trend: trend, alpha: alpha, beta: beta}
			}
		}
	}

	return best, nil
}

// forecast extrapolates h steps from the final level and trend.
func (m holtModel) forecast(steps int) []float64 {
	preds := make([]float64, steps)
	for i := range preds {
		preds[i] = m.level + float64(i+1)*m.trend
	}
	return preds
}

func evalExponentialSmoothing(train, test []float64) ModelResult {
	model, err := fitHolt(train)
	if err != nil {
		return failed(domain.ModelExponentialSmoothing, err)
	}
	preds := model.forecast(len(test))
	return fitted(domain.ModelExponentialSmoothing, mape(test, preds), preds)
}

// regressionModel is OLS over the engineered feature rows.
type regressionModel struct {
	coeffs []float64 // intercept first, then one per feature column
}

func (m regressionModel) predict(features []float64) float64 {
	y := m.coeffs[0]
	for i, x := range features {
		y += m.coeffs[i+1] * x
	}
	return y
}

// fitRegression solves the normal equations for the given rows.
func fitRegression(rows []featureRow) (regressionModel, error) {
	if len(rows) == 0 {
		return regressionModel{}, fmt.Errorf("no complete feature rows")
	}

	cols := len(rows[0].vector()) + 1 // +1 for intercept
	if len(rows) < cols {
		return regressionModel{}, fmt.Errorf("underdetermined fit: %d rows for %d coefficients", len(rows), cols)
	}

	// Build X'X and X'y directly.
	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	xty := make([]float64, cols)

	for _, row := range rows {
		x := append([]float64{1}, row.vector()...)
		for i := 0; i < cols; i++ {
			for j := 0; j < cols; j++ {
				xtx[i][j] += x[i] * x[j]
			}
			xty[i] += x[i] * row.target
		}
	}

	coeffs, err := solveLinear(xtx, xty)
	if err != nil {
		return regressionModel{}, err
	}
	return regressionModel{coeffs: coeffs}, nil
}

func evalLinearRegression(series domain.MonthlySeries, splitIdx int) ModelResult {
	features := buildFeatures(series)

	var train, test []featureRow
	for _, row := range features {
		if !row.complete {
			continue
		}
		if row.seriesIndex < splitIdx {
			train = append(train, row)
		} else {
			test = append(test, row)
		}
	}

	if len(test) == 0 {
		return failed(domain.ModelLinearRegression, fmt.Errorf("no test data after dropping incomplete lag rows"))
	}

	model, err := fitRegression(train)
	if err != nil {
		return failed(domain.ModelLinearRegression, err)
	}

	actual := make([]float64, len(test))
	preds := make([]float64, len(test))
	for i, row := range test {
		actual[i] = row.target
		preds[i] = model.predict(row.vector())
	}

	return fitted(domain.ModelLinearRegression, mape(actual, preds), preds)
}

// solveLinear solves Ax=b by Gaussian elimination with partial
// pivoting. A near-zero pivot means the feature matrix is singular and
// the fit fails.
func solveLinear(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-10 {
			return nil, fmt.Errorf("singular feature matrix")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k <= n; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := m[row][n]
		for col := row + 1; col < n; col++ {
			sum -= m[row][col] * x[col]
		}
		x[row] = sum / m[row][row]
	}
	return x, nil
}
