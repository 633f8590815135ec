package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"tradelens/internal/model"
)

// GrowthAlert flags an entity whose latest period-over-period change crossed
// a threshold.
type GrowthAlert struct {
	Entity    string
	Period    model.Period
	ChangePct decimal.Decimal
}

// GrowthAlerts reports entities whose most recent defined change is at or
// above thresholdPct. Entities with fewer than two periods are skipped.
// Output is sorted by entity name for stable display.
func GrowthAlerts(records []model.ShipmentRecord, dim model.Dimension, thresholdPct float64) []GrowthAlert {
	return changeAlerts(records, dim, func(pct decimal.Decimal) bool {
		return pct.GreaterThanOrEqual(decimal.NewFromFloat(thresholdPct))
	})
}

// DeclineAlerts reports entities whose most recent defined change is at or
// below -thresholdPct.
func DeclineAlerts(records []model.ShipmentRecord, dim model.Dimension, thresholdPct float64) []GrowthAlert {
	return changeAlerts(records, dim, func(pct decimal.Decimal) bool {
		return pct.LessThanOrEqual(decimal.NewFromFloat(-thresholdPct))
	})
}

func changeAlerts(records []model.ShipmentRecord, dim model.Dimension, match func(decimal.Decimal) bool) []GrowthAlert {
	alerts := []GrowthAlert{}
	for entity, series := range EntityPeriodTotals(records, dim) {
		if len(series) < 2 {
			continue
		}
		changes := PeriodChanges(SeriesValues(series))
		latest := changes[len(changes)-1]
		if !latest.Defined || !match(latest.Pct) {
			continue
		}
		alerts = append(alerts, GrowthAlert{
			Entity:    entity,
			Period:    series[len(series)-1].Period,
			ChangePct: latest.Pct,
		})
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Entity < alerts[j].Entity })
	return alerts
}

// ConsistencyFlag marks an entity whose per-period volume is erratic:
// standard deviation above ratio times the mean.
type ConsistencyFlag struct {
	Entity string
	Mean   float64
	StdDev float64
}

// ConsistencyFlags computes per-entity volatility over period totals.
// Entities with fewer than two periods cannot have a deviation and are
// skipped. Output is sorted by entity name.
func ConsistencyFlags(records []model.ShipmentRecord, dim model.Dimension, ratio float64) []ConsistencyFlag {
	flags := []ConsistencyFlag{}
	for entity, series := range EntityPeriodTotals(records, dim) {
		if len(series) < 2 {
			continue
		}
		floats := make([]float64, len(series))
		for i, point := range series {
			floats[i] = point.Total.InexactFloat64()
		}
		mean, std := stat.MeanStdDev(floats, nil)
		if mean > 0 && std > ratio*mean {
			flags = append(flags, ConsistencyFlag{Entity: entity, Mean: mean, StdDev: std})
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Entity < flags[j].Entity })
	return flags
}

// DropAlert marks a period whose total fell below a fraction of the mean
// period total.
type DropAlert struct {
	Period model.Period
	Total  decimal.Decimal
}

// MonthlyDropAlerts flags periods below ratio times the mean period total,
// in chronological order.
func MonthlyDropAlerts(records []model.ShipmentRecord, ratio float64) []DropAlert {
	series := PeriodTotals(records)
	if len(series) == 0 {
		return nil
	}
	floats := make([]float64, len(series))
	for i, point := range series {
		floats[i] = point.Total.InexactFloat64()
	}
	cutoff := decimal.NewFromFloat(stat.Mean(floats, nil) * ratio)

	alerts := []DropAlert{}
	for _, point := range series {
		if point.Total.LessThan(cutoff) {
			alerts = append(alerts, DropAlert{Period: point.Period, Total: point.Total})
		}
	}
	return alerts
}
