// internal/forecast/stats.go
package forecast

import "math"

// mapeEpsilon guards zero actuals in the MAPE denominator.
const mapeEpsilon = 1e-10

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// mape returns the mean absolute percentage error as a percentage.
func mape(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.Inf(1)
	}
	sum := 0.0
	for i := range actual {
		denom := math.Abs(actual[i])
		if denom < mapeEpsilon {
			denom = mapeEpsilon
		}
		sum += math.Abs(actual[i]-predicted[i]) / denom
	}
	return sum / float64(len(actual)) * 100
}

// olsSlope fits quantity against its time index and returns the slope.
func olsSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var cov, varX float64
	for i, v := range values {
		dx := float64(i) - xMean
		cov += dx * (v - yMean)
		varX += dx * dx
	}
	if varX == 0 {
		return 0
	}
	return cov / varX
}

// autocorrelation computes the lag-k autocorrelation coefficient.
func autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || n <= lag {
		return 0
	}
	m := mean(values)

	var num, denom float64
	for i := 0; i < n; i++ {
		d := values[i] - m
		denom += d * d
	}
	if denom == 0 {
		return 0
	}
	for i := lag; i < n; i++ {
		num += (values[i] - m) * (values[i-lag] - m)
	}
	return num / denom
}
