package analytics

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"tradelens/internal/model"
)

// ErrInsufficientData signals that a forecast or growth computation did not
// have enough periods to work with. It is an expected outcome, not a crash:
// callers render "not enough data" instead of a number.
var ErrInsufficientData = errors.New("analytics: insufficient data")

// Total is one ranked (value, total quantity) pair.
type Total struct {
	Value string
	Total decimal.Decimal
}

// SumBy sums quantity grouped by one dimension. Rows with a missing
// quantity contribute zero but still establish their group.
func SumBy(records []model.ShipmentRecord, dim model.Dimension) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, record := range records {
		key := record.DimensionValue(dim)
		total := totals[key]
		if record.HasQuantity {
			total = total.Add(record.Quantity)
		}
		totals[key] = total
	}
	return totals
}

// AvgBy averages quantity per group. Rows with a missing quantity are
// excluded from the denominator; groups with no quantified rows are omitted.
func AvgBy(records []model.ShipmentRecord, dim model.Dimension) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, record := range records {
		if !record.HasQuantity {
			continue
		}
		key := record.DimensionValue(dim)
		sums[key] = sums[key].Add(record.Quantity)
		counts[key]++
	}
	averages := make(map[string]decimal.Decimal, len(sums))
	for key, sum := range sums {
		averages[key] = sum.Div(decimal.NewFromInt(counts[key]))
	}
	return averages
}

// TopN ranks grouped totals descending, ties broken by ascending value
// string so the ranking is identical every run.
func TopN(totals map[string]decimal.Decimal, n int) []Total {
	ranked := make([]Total, 0, len(totals))
	for value, total := range totals {
		ranked = append(ranked, Total{Value: value, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].Total.Cmp(ranked[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Value < ranked[j].Value
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PeriodTotal is the summed quantity of one (month, year) bucket.
type PeriodTotal struct {
	Period model.Period
	Total  decimal.Decimal
}

// PeriodTotals buckets records by period and returns the series in
// chronological order via Period.SortKey.
func PeriodTotals(records []model.ShipmentRecord) []PeriodTotal {
	totals := make(map[model.Period]decimal.Decimal)
	for _, record := range records {
		period := record.Period()
		total := totals[period]
		if record.HasQuantity {
			total = total.Add(record.Quantity)
		}
		totals[period] = total
	}
	series := make([]PeriodTotal, 0, len(totals))
	for period, total := range totals {
		series = append(series, PeriodTotal{Period: period, Total: total})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period.SortKey() < series[j].Period.SortKey() })
	return series
}

// EntityPeriodTotals builds one chronological series per dimension value.
func EntityPeriodTotals(records []model.ShipmentRecord, dim model.Dimension) map[string][]PeriodTotal {
	byEntity := make(map[string][]model.ShipmentRecord)
	for _, record := range records {
		key := record.DimensionValue(dim)
		byEntity[key] = append(byEntity[key], record)
	}
	series := make(map[string][]PeriodTotal, len(byEntity))
	for entity, group := range byEntity {
		series[entity] = PeriodTotals(group)
	}
	return series
}

// Change is one period-over-period percentage delta. Defined is false for
// the first element and whenever the previous value was zero; an undefined
// delta is never coerced to zero or infinity.
type Change struct {
	Pct     decimal.Decimal
	Defined bool
}

var hundred = decimal.NewFromInt(100)

// PeriodChanges computes percentage deltas over a chronologically ordered
// series of values.
func PeriodChanges(values []decimal.Decimal) []Change {
	changes := make([]Change, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev.IsZero() {
			continue
		}
		changes[i] = Change{
			Pct:     values[i].Sub(prev).Div(prev).Mul(hundred),
			Defined: true,
		}
	}
	return changes
}

// RollingMeanForecast predicts the next value as the arithmetic mean of the
// last window values. Fewer than window periods is ErrInsufficientData.
func RollingMeanForecast(values []decimal.Decimal, window int) (decimal.Decimal, error) {
	if window <= 0 || len(values) < window {
		return decimal.Zero, ErrInsufficientData
	}
	tail := values[len(values)-window:]
	floats := make([]float64, len(tail))
	for i, v := range tail {
		floats[i] = v.InexactFloat64()
	}
	return decimal.NewFromFloat(stat.Mean(floats, nil)), nil
}

// LinearTrendForecast fits (timeIndex, value) pairs with ordinary least
// squares and predicts at the next index. Requires at least 3 points.
func LinearTrendForecast(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) < 3 {
		return decimal.Zero, ErrInsufficientData
	}
	xs := make([]float64, len(values))
	ys := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(i)
		ys[i] = v.InexactFloat64()
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return decimal.NewFromFloat(alpha + beta*float64(len(values))), nil
}

// SeriesValues extracts the totals from a period series, preserving order.
func SeriesValues(series []PeriodTotal) []decimal.Decimal {
	values := make([]decimal.Decimal, len(series))
	for i, point := range series {
		values[i] = point.Total
	}
	return values
}
