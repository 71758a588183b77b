// Package cleaner turns a raw harmonized table into forecast-ready
// order rows. The steps run in a fixed order because later steps assume
// the invariants established by earlier ones.
package cleaner

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/dataset"
	"github.com/procurehq/replenish/internal/domain"
)

// workRow is a row mid-cleaning. A quantity can be absent (null) until
// interpolation resolves it or the row is dropped.
type workRow struct {
	index    int // original row index, for outlier reporting
	rawDate  string
	date     time.Time
	hasDate  bool
	itemCode string
	quantity float64
	hasQty   bool
}

// Clean runs the cleaning pipeline:
//  1. drop exact duplicates
//  2. standardize dates (unparseable become null)
//  3. drop rows with null dates
//  4. interpolate quantity gaps of at most 2, drop larger gaps
//  5. flag outliers without removing them
//  6. drop rows whose quantity never became numeric
func Clean(table *dataset.Table, schema domain.SchemaMapping) ([]domain.OrderRow, domain.CleaningReport) {
	report := domain.CleaningReport{
		RowsBefore:       table.Len(),
		OutliersDetected: []domain.OutlierFlag{},
	}

	rows := dedupe(table, schema, &report)
	standardizeDates(rows, schema.DateFormat, &report)
	rows = dropNullDates(rows, &report)
	rows = handleMissingQuantities(rows, &report)
	report.OutliersDetected = detectOutliers(rows)
	rows = dropNonNumeric(rows)

	cleaned := make([]domain.OrderRow, len(rows))
	for i, r := range rows {
		cleaned[i] = domain.OrderRow{Date: r.date, ItemCode: r.itemCode, Quantity: r.quantity}
	}
	report.RowsAfter = len(cleaned)

	log.Info().
		Int("rows_before", report.RowsBefore).
		Int("rows_after", report.RowsAfter).
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("outliers_detected", len(report.OutliersDetected)).
		Msg("data cleaning complete")

	return cleaned, report
}

func dedupe(table *dataset.Table, schema domain.SchemaMapping, report *domain.CleaningReport) []workRow {
	seen := make(map[string]struct{}, table.Len())
	rows := make([]workRow, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		key := strings.Join(table.Rows[i], "\x1f")
		if _, dup := seen[key]; dup {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		r := workRow{
			index:    i,
			rawDate:  table.Value(i, schema.DateColumn),
			itemCode: table.Value(i, schema.ItemColumn),
		}
		if f, ok := table.Float(i, schema.QuantityColumn); ok {
			r.quantity = f
			r.hasQty = true
		}
		rows = append(rows, r)
	}

	return rows
}

func standardizeDates(rows []workRow, format string, report *domain.CleaningReport) {
	for i := range rows {
		if t, ok := dataset.ParseDate(rows[i].rawDate, format); ok {
			rows[i].date = t
			rows[i].hasDate = true
			report.DatesFixed++
		}
	}
}

func dropNullDates(rows []workRow, report *domain.CleaningReport) []workRow {
	kept := rows[:0]
	for _, r := range rows {
		if !r.hasDate {
			report.NullsHandled++
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// handleMissingQuantities interpolates when at most 2 quantities are
// missing; more than that indicates bad data and those rows are dropped.
func handleMissingQuantities(rows []workRow, report *domain.CleaningReport) []workRow {
	missing := 0
	for _, r := range rows {
		if !r.hasQty {
			missing++
		}
	}
	if missing == 0 {
		return rows
	}

	if missing > 2 {
		kept := rows[:0]
		for _, r := range rows {
			if !r.hasQty {
				report.NullsHandled++
				continue
			}
			kept = append(kept, r)
		}
		return kept
	}

	for i := range rows {
		if rows[i].hasQty {
			continue
		}
		if v, ok := interpolate(rows, i); ok {
			rows[i].quantity = v
			rows[i].hasQty = true
			report.NullsHandled++
		}
	}
	return rows
}

// interpolate fills index i linearly from its nearest known neighbors,
// clamping to the single neighbor at series edges.
func interpolate(rows []workRow, i int) (float64, bool) {
	prev, next := -1, -1
	for j := i - 1; j >= 0; j-- {
		if rows[j].hasQty {
			prev = j
			break
		}
	}
	for j := i + 1; j < len(rows); j++ {
		if rows[j].hasQty {
			next = j
			break
		}
	}

	switch {
	case prev >= 0 && next >= 0:
		span := float64(next - prev)
		frac := float64(i-prev) / span
		return rows[prev].quantity + frac*(rows[next].quantity-rows[prev].quantity), true
	case prev >= 0:
		return rows[prev].quantity, true
	case next >= 0:
		return rows[next].quantity, true
	default:
		return 0, false
	}
}

// detectOutliers flags quantities outside [Q1-3*IQR, Q3+3*IQR] or above
// 10x the median. The 3.0 multiplier is deliberately relaxed so
// legitimate large orders are not flagged. Rows are never removed here.
func detectOutliers(rows []workRow) []domain.OutlierFlag {
	var values []float64
	for _, r := range rows {
		if r.hasQty {
			values = append(values, r.quantity)
		}
	}
	if len(values) == 0 {
		return []domain.OutlierFlag{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 3.0*iqr
	upper := q3 + 3.0*iqr
	median := percentile(sorted, 0.5)
	extreme := median * 10

	flags := []domain.OutlierFlag{}
	for _, r := range rows {
		if !r.hasQty {
			continue
		}
		q := r.quantity
		if q >= lower && q <= upper && q <= extreme {
			continue
		}

		var reason string
		switch {
		case q > extreme:
			reason = fmt.Sprintf("Extreme value: %.0f (>10x median of %.0f)", q, median)
		case q > upper:
			reason = fmt.Sprintf("High value: %.0f (IQR upper bound: %.0f)", q, upper)
		default:
			reason = fmt.Sprintf("Low value: %.0f (IQR lower bound: %.0f)", q, lower)
		}

		flags = append(flags, domain.OutlierFlag{RowIndex: r.index, Value: q, Reason: reason})
	}
	return flags
}

func dropNonNumeric(rows []workRow) []workRow {
	kept := rows[:0]
	for _, r := range rows {
		if !r.hasQty {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// percentile computes the p-quantile of sorted values with linear
// interpolation between ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
