package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradelens/internal/model"
)

// Column aliases seen across source files. Matching is case-insensitive.
var (
	consigneeAliases = []string{"Consignee"}
	exporterAliases  = []string{"Exporter"}
	markAliases      = []string{"Mark"}
	tonsAliases      = []string{"Quanity (Tons)", "Quantity (Tons)", "Tons", "Quantity"}
	kgsAliases       = []string{"Quanity (Kgs)", "Quantity (Kgs)", "Kgs"}
	monthAliases     = []string{"Month"}
	yearAliases      = []string{"Year"}
	stateAliases     = []string{"Consignee State", "State"}
)

// RowError records a single row that failed normalization. The row is skipped
// and the batch continues.
type RowError struct {
	Line  int
	Field string
	Raw   string
}

func (e RowError) Error() string {
	return fmt.Sprintf("ingest: line %d: cannot parse %s %q", e.Line, e.Field, e.Raw)
}

// MissingColumnError is fatal to the whole ingestion: no partial dataset is
// produced when a required column is absent.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return "ingest: missing required columns: " + strings.Join(e.Columns, ", ")
}

// Result carries the normalized records plus the rows that were skipped.
type Result struct {
	Records []model.ShipmentRecord
	Skipped []RowError
}

type columns struct {
	consignee int
	exporter  int
	mark      int
	quantity  int
	inKgs     bool
	month     int
	year      int
	state     int
}

// Parse reads a CSV stream and normalizes every row into a ShipmentRecord.
// Column presence is validated here, exactly once; downstream code never
// checks for columns again. Extra columns pass through unused.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Field: "row", Raw: err.Error()})
			continue
		}
		record, rowErr := normalizeRow(row, cols, line)
		if rowErr != nil {
			result.Skipped = append(result.Skipped, *rowErr)
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

// ParseBytes is a convenience wrapper for in-memory uploads.
func ParseBytes(data []byte) (*Result, error) {
	return Parse(strings.NewReader(string(data)))
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{consignee: -1, exporter: -1, mark: -1, quantity: -1, month: -1, year: -1, state: -1}

	find := func(aliases []string) int {
		for i, h := range header {
			for _, alias := range aliases {
				if strings.EqualFold(strings.TrimSpace(h), alias) {
					return i
				}
			}
		}
		return -1
	}

	cols.consignee = find(consigneeAliases)
	cols.exporter = find(exporterAliases)
	cols.mark = find(markAliases)
	cols.month = find(monthAliases)
	cols.year = find(yearAliases)
	cols.state = find(stateAliases)

	// Prefer a tons column; fall back to kgs and convert at parse time.
	cols.quantity = find(tonsAliases)
	if cols.quantity == -1 {
		cols.quantity = find(kgsAliases)
		cols.inKgs = cols.quantity != -1
	}

	missing := []string{}
	if cols.consignee == -1 {
		missing = append(missing, "Consignee")
	}
	if cols.exporter == -1 {
		missing = append(missing, "Exporter")
	}
	if cols.mark == -1 {
		missing = append(missing, "Mark")
	}
	if cols.quantity == -1 {
		missing = append(missing, "Quantity")
	}
	if cols.month == -1 {
		missing = append(missing, "Month")
	}
	if cols.year == -1 {
		missing = append(missing, "Year")
	}
	if cols.state == -1 {
		missing = append(missing, "Consignee State")
	}
	if len(missing) > 0 {
		return cols, &MissingColumnError{Columns: missing}
	}
	return cols, nil
}

func normalizeRow(row []string, cols columns, line int) (model.ShipmentRecord, *RowError) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	record := model.ShipmentRecord{
		Consignee: cell(cols.consignee),
		Exporter:  cell(cols.exporter),
		Mark:      cell(cols.mark),
		State:     cell(cols.state),
	}

	monthRaw := cell(cols.month)
	month, ok := model.ParseMonth(monthRaw)
	if !ok {
		return record, &RowError{Line: line, Field: "Month", Raw: monthRaw}
	}
	record.Month = month

	yearRaw := cell(cols.year)
	year, err := strconv.Atoi(yearRaw)
	if err != nil {
		return record, &RowError{Line: line, Field: "Year", Raw: yearRaw}
	}
	record.Year = year

	qtyRaw := cell(cols.quantity)
	quantity, hasQuantity, qtyErr := parseQuantity(qtyRaw, cols.inKgs)
	if qtyErr != nil {
		return record, &RowError{Line: line, Field: "Quantity", Raw: qtyRaw}
	}
	record.Quantity = quantity
	record.HasQuantity = hasQuantity

	return record, nil
}

// parseQuantity strips unit suffixes and thousands separators, then parses a
// non-negative decimal. Canonical unit is metric tons. An empty cell means
// the quantity is missing (the row is retained and excluded from sums); a
// non-empty unparsable or negative cell fails the row.
func parseQuantity(raw string, inKgs bool) (decimal.Decimal, bool, error) {
	cleaned := raw
	for _, suffix := range []string{" kgs", " kg", " tons", " ton"} {
		if len(cleaned) > len(suffix) && strings.EqualFold(cleaned[len(cleaned)-len(suffix):], suffix) {
			cleaned = cleaned[:len(cleaned)-len(suffix)]
			break
		}
	}
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", ""))
	if cleaned == "" {
		return decimal.Zero, false, nil
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, err
	}
	if value.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("negative quantity")
	}
	if inKgs {
		value = value.Div(decimal.NewFromInt(1000))
	}
	return value, true, nil
}
