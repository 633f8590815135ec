package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"tradelens/internal/classify"
	"tradelens/internal/config"
	"tradelens/internal/export"
	"tradelens/internal/ingest"
	"tradelens/internal/ingest/sheets"
	"tradelens/internal/insights"
	"tradelens/internal/model"
	"tradelens/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	input := fs.String("input", "", "path to a local shipment CSV")
	sheet := fs.String("sheet", "", "Google Sheet link to fetch instead of -input")
	report := fs.String("report", "overview", "report to build (overview, competitors, suppliers, states, products, forecasts, all)")
	export := fs.String("export", "", "export format (csv, xlsx, html, sqlite; empty = none)")
	out := fs.String("out", "", "export destination path")
	states := fs.String("state", "", "comma-separated consignee states to keep")
	years := fs.String("year", "", "comma-separated years to keep")
	months := fs.String("month", "", "comma-separated months to keep")
	consignees := fs.String("consignee", "", "comma-separated consignees to keep")
	exporters := fs.String("exporter", "", "comma-separated exporters to keep")
	products := fs.String("product", "", "comma-separated product categories to keep")
	categories := fs.String("categories", "", "comma-separated product candidates (overrides TRADELENS_CATEGORIES)")
	top := fs.Int("top", 0, "ranking size override (0 = configured default)")
	fs.Parse(args)

	if err := runAnalysis(runOptions{
		input:      *input,
		sheet:      *sheet,
		report:     *report,
		export:     *export,
		out:        *out,
		categories: *categories,
		top:        *top,
		selections: map[model.Dimension]string{
			model.DimState:     *states,
			model.DimYear:      *years,
			model.DimMonth:     *months,
			model.DimConsignee: *consignees,
			model.DimExporter:  *exporters,
			model.DimProduct:   *products,
		},
	}); err != nil {
		fmt.Fprintln(os.Stderr, "tradelens run failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tradelens run [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -input       path to a local shipment CSV")
	fmt.Fprintln(os.Stderr, "  -sheet       Google Sheet link to fetch instead of -input")
	fmt.Fprintln(os.Stderr, "  -report      report to build (default: overview)")
	fmt.Fprintln(os.Stderr, "  -export      export format: csv, xlsx, html, sqlite")
	fmt.Fprintln(os.Stderr, "  -out         export destination path")
	fmt.Fprintln(os.Stderr, "  -state       comma-separated consignee states to keep")
	fmt.Fprintln(os.Stderr, "  -year        comma-separated years to keep")
	fmt.Fprintln(os.Stderr, "  -month       comma-separated months to keep")
	fmt.Fprintln(os.Stderr, "  -consignee   comma-separated consignees to keep")
	fmt.Fprintln(os.Stderr, "  -exporter    comma-separated exporters to keep")
	fmt.Fprintln(os.Stderr, "  -product     comma-separated product categories to keep")
	fmt.Fprintln(os.Stderr, "  -categories  comma-separated product candidates")
	fmt.Fprintln(os.Stderr, "  -top         ranking size override")
}

type runOptions struct {
	input      string
	sheet      string
	report     string
	export     string
	out        string
	categories string
	top        int
	selections map[model.Dimension]string
}

func runAnalysis(opts runOptions) error {
	cfg := config.Load()
	ctx := context.Background()

	raw, source, err := loadInput(ctx, cfg, opts)
	if err != nil {
		return err
	}

	candidates := cfg.Categories
	if strings.TrimSpace(opts.categories) != "" {
		candidates = parseList(opts.categories)
	}
	classifier := classify.New(candidates, cfg.ClassifyThreshold)

	manager := session.NewManager()
	sess := manager.Open()
	dataset, err := manager.Load(sess, source, raw, classifier)
	if err != nil {
		var missing *ingest.MissingColumnError
		if errors.As(err, &missing) {
			return fmt.Errorf("input is missing required columns: %s", strings.Join(missing.Columns, ", "))
		}
		return err
	}
	if len(dataset.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d malformed rows\n", len(dataset.Skipped))
		for _, rowErr := range dataset.Skipped {
			fmt.Fprintf(os.Stderr, "  %v\n", rowErr)
		}
	}

	for dim, value := range opts.selections {
		values := parseList(value)
		if len(values) > 0 {
			sess.SetSelection(dim, values)
		}
	}

	filtered := sess.Filtered()
	if len(filtered.Constrained) > 0 {
		fmt.Fprintf(os.Stderr, "filtered to %d of %d records\n", len(filtered.Records), len(dataset.Records))
	}

	insightOpts := insights.Options{
		TopN:             cfg.TopN,
		RollingWindow:    cfg.RollingWindow,
		GrowthAlertPct:   cfg.GrowthAlertPct,
		DropAlertRatio:   cfg.DropAlertRatio,
		ConsistencyRatio: cfg.ConsistencyRatio,
	}
	if opts.top > 0 {
		insightOpts.TopN = opts.top
	}

	reports, err := buildReports(opts.report, filtered.Records, insightOpts)
	if err != nil {
		return err
	}

	for _, rep := range reports {
		printReport(os.Stdout, rep)
	}

	if opts.export == "" {
		return nil
	}
	if len(reports) == 0 {
		return errors.New("nothing to export")
	}
	return writeExport(ctx, opts.export, opts.out, filtered.Records, reports[0])
}

func loadInput(ctx context.Context, cfg config.Config, opts runOptions) ([]byte, string, error) {
	switch {
	case opts.input != "" && opts.sheet != "":
		return nil, "", errors.New("use either -input or -sheet, not both")
	case opts.input != "":
		raw, err := os.ReadFile(opts.input)
		if err != nil {
			return nil, "", err
		}
		return raw, opts.input, nil
	case opts.sheet != "":
		client := sheets.New(sheets.Config{
			SheetName: cfg.SheetName,
			Timeout:   cfg.FetchTimeout,
			UserAgent: cfg.UserAgent,
		})
		raw, err := client.Fetch(ctx, opts.sheet)
		if err != nil {
			return nil, "", err
		}
		return raw, opts.sheet, nil
	default:
		return nil, "", errors.New("one of -input or -sheet is required")
	}
}

func buildReports(name string, records []model.ShipmentRecord, opts insights.Options) ([]insights.Report, error) {
	builders := map[string]func([]model.ShipmentRecord, insights.Options) insights.Report{
		"overview":    insights.MarketOverview,
		"competitors": insights.CompetitorIntelligence,
		"suppliers":   insights.SupplierPerformance,
		"states":      insights.StateInsights,
		"products":    insights.ProductInsights,
		"forecasts":   insights.Forecasts,
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "all" {
		names := []string{"overview", "competitors", "suppliers", "states", "products", "forecasts"}
		reports := make([]insights.Report, 0, len(names))
		for _, n := range names {
			reports = append(reports, builders[n](records, opts))
		}
		return reports, nil
	}

	builder, ok := builders[key]
	if !ok {
		return nil, fmt.Errorf("unknown report: %s", name)
	}
	return []insights.Report{builder(records, opts)}, nil
}

func writeExport(ctx context.Context, format, out string, records []model.ShipmentRecord, report insights.Report) error {
	if strings.TrimSpace(out) == "" {
		return errors.New("-out is required with -export")
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "sqlite":
		return export.WriteSQLite(ctx, out, records, report.Metrics)
	case "csv", "xlsx", "html":
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		err = export.WriteCSV(file, records, report.Metrics)
	case "xlsx":
		err = export.WriteWorkbook(file, records, report)
	case "html":
		err = export.WriteHTML(file, records, report)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

func printReport(w *os.File, report insights.Report) {
	fmt.Fprintf(w, "== %s ==\n", report.Title)
	if len(report.Metrics) > 0 {
		for _, metric := range report.Metrics {
			fmt.Fprintf(w, "%s: %s\n", metric.Label, metric.Value)
		}
		fmt.Fprintln(w)
	}
	for _, table := range report.Tables {
		fmt.Fprintf(w, "-- %s --\n", table.Title)
		tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
		for _, row := range table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
