package insights

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tradelens/internal/analytics"
	"tradelens/internal/model"
)

// Table is a render-ready tabular result. Presentation code (terminal,
// workbook, HTML) consumes these without recomputing anything.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Metric is a single headline figure.
type Metric struct {
	Label string
	Value string
}

// Report is the full output of one dashboard view.
type Report struct {
	Title   string
	Metrics []Metric
	Tables  []Table
}

// Options carries the tunable thresholds shared across views.
type Options struct {
	TopN             int
	RollingWindow    int
	GrowthAlertPct   float64
	DropAlertRatio   float64
	ConsistencyRatio float64
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 5
	}
	if o.RollingWindow <= 0 {
		o.RollingWindow = 3
	}
	if o.GrowthAlertPct <= 0 {
		o.GrowthAlertPct = 20
	}
	if o.DropAlertRatio <= 0 {
		o.DropAlertRatio = 0.7
	}
	if o.ConsistencyRatio <= 0 {
		o.ConsistencyRatio = 0.5
	}
	return o
}

const notEnoughData = "not enough data"

func tons(v decimal.Decimal) string { return v.StringFixed(2) }

// MarketOverview summarizes the filtered dataset: headline KPIs, top
// consignees, the monthly trend, state distribution, and drop alerts.
func MarketOverview(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Title: "Market Overview"}

	grand := decimal.Zero
	quantified := 0
	for _, record := range records {
		if record.HasQuantity {
			grand = grand.Add(record.Quantity)
			quantified++
		}
	}
	report.Metrics = append(report.Metrics,
		Metric{Label: "Records", Value: fmt.Sprintf("%d", len(records))},
		Metric{Label: "Total Volume (Tons)", Value: tons(grand)},
	)
	if top := analytics.TopN(analytics.SumBy(records, model.DimState), 1); len(top) > 0 {
		report.Metrics = append(report.Metrics, Metric{Label: "Top Importing State", Value: top[0].Value})
	}
	if top := analytics.TopN(analytics.SumBy(records, model.DimExporter), 1); len(top) > 0 {
		report.Metrics = append(report.Metrics, Metric{Label: "Top Exporter", Value: top[0].Value})
	}

	report.Tables = append(report.Tables,
		rankedTable("Top Consignees", "Consignee", analytics.SumBy(records, model.DimConsignee), opts.TopN),
		trendTable("Monthly Import Trend", records),
		rankedTable("State Distribution", "State", analytics.SumBy(records, model.DimState), 0),
	)

	drops := analytics.MonthlyDropAlerts(records, opts.DropAlertRatio)
	dropTable := Table{Title: "Low-Volume Period Alerts", Columns: []string{"Period", "Tons"}}
	for _, alert := range drops {
		dropTable.Rows = append(dropTable.Rows, []string{alert.Period.Display(), tons(alert.Total)})
	}
	report.Tables = append(report.Tables, dropTable)

	return report
}

// CompetitorIntelligence ranks consignees, shows which exporters the top
// consignees buy from, and flags rapid growth.
func CompetitorIntelligence(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Title: "Competitor Intelligence"}

	totals := analytics.SumBy(records, model.DimConsignee)
	top := analytics.TopN(totals, opts.TopN)
	report.Tables = append(report.Tables, rankedTable("Top Competitors by Volume", "Consignee", totals, opts.TopN))

	topSet := make(map[string]bool, len(top))
	for _, entry := range top {
		topSet[entry.Value] = true
	}
	pairTotals := make(map[string]decimal.Decimal)
	for _, record := range records {
		if !topSet[record.Consignee] || !record.HasQuantity {
			continue
		}
		key := record.Consignee + "\x00" + record.Exporter
		pairTotals[key] = pairTotals[key].Add(record.Quantity)
	}
	pairTable := Table{Title: "Exporters Used by Top Competitors", Columns: []string{"Consignee", "Exporter", "Tons"}}
	keys := make([]string, 0, len(pairTotals))
	for key := range pairTotals {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		consignee, exporter := splitPair(key)
		pairTable.Rows = append(pairTable.Rows, []string{consignee, exporter, tons(pairTotals[key])})
	}
	report.Tables = append(report.Tables, pairTable)

	growthTable := Table{Title: "Rapid Growth Alerts", Columns: []string{"Consignee", "Period", "Change %"}}
	for _, alert := range analytics.GrowthAlerts(records, model.DimConsignee, opts.GrowthAlertPct) {
		growthTable.Rows = append(growthTable.Rows, []string{alert.Entity, alert.Period.Display(), alert.ChangePct.StringFixed(1)})
	}
	report.Tables = append(report.Tables, growthTable)

	return report
}

// SupplierPerformance ranks exporters, pivots their volumes over time and
// flags erratic suppliers.
func SupplierPerformance(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Title: "Supplier Performance"}

	report.Tables = append(report.Tables,
		rankedTable("Top Suppliers by Volume", "Exporter", analytics.SumBy(records, model.DimExporter), opts.TopN),
		pivotTable("Supplier Volume by Period", "Exporter", records, model.DimExporter),
	)

	riskTable := Table{Title: "Erratic Suppliers", Columns: []string{"Exporter", "Mean Tons", "Std Dev"}}
	for _, flag := range analytics.ConsistencyFlags(records, model.DimExporter, opts.ConsistencyRatio) {
		riskTable.Rows = append(riskTable.Rows, []string{flag.Entity, fmt.Sprintf("%.2f", flag.Mean), fmt.Sprintf("%.2f", flag.StdDev)})
	}
	report.Tables = append(report.Tables, riskTable)

	declineTable := Table{Title: "Supplier Decline Warnings", Columns: []string{"Exporter", "Period", "Change %"}}
	for _, alert := range analytics.DeclineAlerts(records, model.DimExporter, opts.GrowthAlertPct) {
		declineTable.Rows = append(declineTable.Rows, []string{alert.Entity, alert.Period.Display(), alert.ChangePct.StringFixed(1)})
	}
	report.Tables = append(report.Tables, declineTable)

	return report
}

// StateInsights ranks destination states and pivots volumes across years.
func StateInsights(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	return Report{
		Title: "State-Level Market Insights",
		Tables: []Table{
			rankedTable("Top Importing States", "State", analytics.SumBy(records, model.DimState), opts.TopN),
			yearPivotTable("State Volume by Year", records),
		},
	}
}

// ProductInsights summarizes derived product categories: totals, market
// share with concentration (HHI), and a category-by-period pivot. Records
// must already carry ProductCategory.
func ProductInsights(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Title: "Product Insights"}

	totals := analytics.SumBy(records, model.DimProduct)
	grand := decimal.Zero
	for _, total := range totals {
		grand = grand.Add(total)
	}

	report.Tables = append(report.Tables, rankedTable("Volume by Product Category", "Product", totals, 0))

	shareTable := Table{Title: "Market Share by Product Category", Columns: []string{"Product", "Share %"}}
	hhi := 0.0
	for _, entry := range analytics.TopN(totals, 0) {
		if grand.IsZero() {
			break
		}
		share := entry.Total.Div(grand).Mul(decimal.NewFromInt(100))
		shareFloat := share.InexactFloat64()
		hhi += shareFloat * shareFloat
		shareTable.Rows = append(shareTable.Rows, []string{entry.Value, share.StringFixed(1)})
	}
	report.Tables = append(report.Tables, shareTable)
	report.Metrics = append(report.Metrics,
		Metric{Label: "Categories", Value: fmt.Sprintf("%d", len(totals))},
		Metric{Label: "HHI", Value: fmt.Sprintf("%.0f", hhi)},
		Metric{Label: "Concentration", Value: hhiBand(hhi)},
	)

	report.Tables = append(report.Tables, pivotTable("Category Volume by Period", "Product", records, model.DimProduct))
	return report
}

// Forecasts projects the next period's total volume and surfaces growth and
// decline alerts. Insufficient history renders as a value, never an error.
func Forecasts(records []model.ShipmentRecord, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{Title: "Alerts & Forecasting"}

	values := analytics.SeriesValues(analytics.PeriodTotals(records))

	rolling := notEnoughData
	if forecast, err := analytics.RollingMeanForecast(values, opts.RollingWindow); err == nil {
		rolling = tons(forecast)
	} else if !errors.Is(err, analytics.ErrInsufficientData) {
		rolling = err.Error()
	}
	trend := notEnoughData
	if forecast, err := analytics.LinearTrendForecast(values); err == nil {
		trend = tons(forecast)
	} else if !errors.Is(err, analytics.ErrInsufficientData) {
		trend = err.Error()
	}
	report.Metrics = append(report.Metrics,
		Metric{Label: fmt.Sprintf("Rolling Mean Forecast (window %d)", opts.RollingWindow), Value: rolling},
		Metric{Label: "Linear Trend Forecast", Value: trend},
	)

	growthTable := Table{Title: "Competitor Growth Alerts", Columns: []string{"Consignee", "Period", "Change %"}}
	for _, alert := range analytics.GrowthAlerts(records, model.DimConsignee, opts.GrowthAlertPct) {
		growthTable.Rows = append(growthTable.Rows, []string{alert.Entity, alert.Period.Display(), alert.ChangePct.StringFixed(1)})
	}
	declineTable := Table{Title: "Supplier Risk Warnings", Columns: []string{"Exporter", "Period", "Change %"}}
	for _, alert := range analytics.DeclineAlerts(records, model.DimExporter, opts.GrowthAlertPct) {
		declineTable.Rows = append(declineTable.Rows, []string{alert.Entity, alert.Period.Display(), alert.ChangePct.StringFixed(1)})
	}
	report.Tables = append(report.Tables, growthTable, declineTable, trendTable("Volume by Period", records))

	return report
}

func rankedTable(title, label string, totals map[string]decimal.Decimal, n int) Table {
	table := Table{Title: title, Columns: []string{label, "Tons"}}
	for _, entry := range analytics.TopN(totals, n) {
		table.Rows = append(table.Rows, []string{entry.Value, tons(entry.Total)})
	}
	return table
}

func trendTable(title string, records []model.ShipmentRecord) Table {
	series := analytics.PeriodTotals(records)
	changes := analytics.PeriodChanges(analytics.SeriesValues(series))
	table := Table{Title: title, Columns: []string{"Period", "Tons", "Change %"}}
	for i, point := range series {
		change := "-"
		if changes[i].Defined {
			change = changes[i].Pct.StringFixed(1)
		}
		table.Rows = append(table.Rows, []string{point.Period.Display(), tons(point.Total), change})
	}
	return table
}

// pivotTable lays out one row per dimension value and one column per period,
// periods in chronological order.
func pivotTable(title, label string, records []model.ShipmentRecord, dim model.Dimension) Table {
	periods := analytics.PeriodTotals(records)
	columns := []string{label}
	for _, point := range periods {
		columns = append(columns, point.Period.Display())
	}

	series := analytics.EntityPeriodTotals(records, dim)
	entities := make([]string, 0, len(series))
	for entity := range series {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	table := Table{Title: title, Columns: columns}
	for _, entity := range entities {
		byPeriod := make(map[model.Period]decimal.Decimal, len(series[entity]))
		for _, point := range series[entity] {
			byPeriod[point.Period] = point.Total
		}
		row := []string{entity}
		for _, point := range periods {
			row = append(row, tons(byPeriod[point.Period]))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func yearPivotTable(title string, records []model.ShipmentRecord) Table {
	years := map[int]bool{}
	byStateYear := make(map[string]map[int]decimal.Decimal)
	for _, record := range records {
		years[record.Year] = true
		if byStateYear[record.State] == nil {
			byStateYear[record.State] = make(map[int]decimal.Decimal)
		}
		if record.HasQuantity {
			byStateYear[record.State][record.Year] = byStateYear[record.State][record.Year].Add(record.Quantity)
		}
	}

	yearList := make([]int, 0, len(years))
	for year := range years {
		yearList = append(yearList, year)
	}
	sort.Ints(yearList)

	columns := []string{"State"}
	for _, year := range yearList {
		columns = append(columns, fmt.Sprintf("%d", year))
	}

	states := make([]string, 0, len(byStateYear))
	for state := range byStateYear {
		states = append(states, state)
	}
	sort.Strings(states)

	table := Table{Title: title, Columns: columns}
	for _, state := range states {
		row := []string{state}
		for _, year := range yearList {
			row = append(row, tons(byStateYear[state][year]))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func hhiBand(hhi float64) string {
	switch {
	case hhi > 2500:
		return "concentrated"
	case hhi > 1500:
		return "moderately concentrated"
	default:
		return "unconcentrated"
	}
}

func splitPair(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '\x00' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
