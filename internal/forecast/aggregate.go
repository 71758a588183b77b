package forecast

import (
	"sort"
	"time"

	"github.com/procurehq/replenish/internal/domain"
)

// MinimumMonths is the shortest monthly series the model bank accepts.
const MinimumMonths = 6

// Aggregate groups cleaned order rows by calendar month and sums their
// quantities into an ascending series. Months with no orders are not
// zero-filled; the series only carries months that saw demand.
func Aggregate(rows []domain.OrderRow) (domain.MonthlySeries, error) {
	byMonth := make(map[time.Time]float64)
	for _, r := range rows {
		month := time.Date(r.Date.Year(), r.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[month] += r.Quantity
	}

	series := make(domain.MonthlySeries, 0, len(byMonth))
	for month, qty := range byMonth {
		series = append(series, domain.MonthlyPoint{Month: month, Quantity: qty})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month.Before(series[j].Month) })

	if len(series) < MinimumMonths {
		return nil, domain.NewError(domain.ErrInsufficientHistory,
			"insufficient data: need at least %d months, found %d", MinimumMonths, len(series))
	}

	return series, nil
}

// Reaggregate folds a monthly series back through the aggregator. For a
// series that is already one-point-per-month this is the identity,
// which the tests rely on.
func Reaggregate(series domain.MonthlySeries) (domain.MonthlySeries, error) {
	rows := make([]domain.OrderRow, len(series))
	for i, p := range series {
		rows[i] = domain.OrderRow{Date: p.Month, Quantity: p.Quantity}
	}
	return Aggregate(rows)
}
