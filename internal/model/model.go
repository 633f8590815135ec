package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Month is a calendar month, Jan = 0 .. Dec = 11.
type Month int

const (
	Jan Month = iota
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func (m Month) String() string {
	if m < Jan || m > Dec {
		return "???"
	}
	return monthNames[m]
}

// ParseMonth accepts three-letter abbreviations case-insensitively.
// Source files sometimes carry "Sept" for September.
func ParseMonth(value string) (Month, bool) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "Sept") {
		return Sep, true
	}
	for i, name := range monthNames {
		if strings.EqualFold(trimmed, name) {
			return Month(i), true
		}
	}
	return 0, false
}

// Period is a (month, year) time bucket. Chronological ordering always goes
// through SortKey; the display string sorts lexicographically wrong
// ("Feb-2023" > "Jan-2024").
type Period struct {
	Month Month
	Year  int
}

func NewPeriod(month Month, year int) Period {
	return Period{Month: month, Year: year}
}

func (p Period) SortKey() int {
	return p.Year*12 + int(p.Month)
}

func (p Period) Display() string {
	return fmt.Sprintf("%s-%d", p.Month, p.Year)
}

// Dimension names a filterable field of a ShipmentRecord.
type Dimension string

const (
	DimState     Dimension = "state"
	DimYear      Dimension = "year"
	DimMonth     Dimension = "month"
	DimConsignee Dimension = "consignee"
	DimExporter  Dimension = "exporter"
	DimProduct   Dimension = "product"
)

// FilterOrder is the fixed order in which dimension filters are applied.
// The order itself is arbitrary but must never change between runs.
var FilterOrder = []Dimension{DimState, DimYear, DimMonth, DimConsignee, DimExporter, DimProduct}

// AllValue is the sentinel selection meaning "no restriction on this dimension".
const AllValue = "All"

// ShipmentRecord is one imported consignment line. Quantity is canonical
// metric tons. Records are never mutated after normalization; they are only
// filtered and grouped.
type ShipmentRecord struct {
	Consignee       string
	Exporter        string
	Mark            string
	State           string
	Quantity        decimal.Decimal
	HasQuantity     bool
	Month           Month
	Year            int
	ProductCategory string
}

func (r ShipmentRecord) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// DimensionValue returns the record's value for a filter dimension.
func (r ShipmentRecord) DimensionValue(dim Dimension) string {
	switch dim {
	case DimState:
		return r.State
	case DimYear:
		return strconv.Itoa(r.Year)
	case DimMonth:
		return r.Month.String()
	case DimConsignee:
		return r.Consignee
	case DimExporter:
		return r.Exporter
	case DimProduct:
		return r.ProductCategory
	default:
		return ""
	}
}
