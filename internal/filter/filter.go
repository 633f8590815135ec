package filter

import (
	"sort"
	"strconv"

	"tradelens/internal/model"
)

// Selections maps a dimension to the values the user chose for it.
//
// Contract: an empty slice, an absent key, and a slice containing the "All"
// sentinel all mean "no restriction on this dimension". Deselecting every
// option therefore never produces an empty result set. Some source variants
// treated an empty selection as "exclude everything"; that reading is
// rejected here.
type Selections map[model.Dimension][]string

// WithoutDimension returns a copy of the selections with one dimension's
// selection removed. The receiver is not modified.
func (s Selections) WithoutDimension(dim model.Dimension) Selections {
	out := make(Selections, len(s))
	for key, values := range s {
		if key == dim {
			continue
		}
		out[key] = values
	}
	return out
}

// constraining returns the selection as a lookup set, or nil when the
// selection is trivial (absent, empty, or containing the All sentinel).
func constraining(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, value := range values {
		if value == model.AllValue {
			return nil
		}
		set[value] = true
	}
	return set
}

// Result is the reduced record set plus the dimensions that actually
// constrained it, for display and audit.
type Result struct {
	Records     []model.ShipmentRecord
	Constrained []model.Dimension
}

// Apply narrows the record set by each dimension's selection, in the fixed
// order model.FilterOrder. Filtering is monotonic: adding a non-trivial
// selection can only shrink or preserve the result.
func Apply(records []model.ShipmentRecord, selections Selections) Result {
	result := Result{Records: records}
	for _, dim := range model.FilterOrder {
		set := constraining(selections[dim])
		if set == nil {
			continue
		}
		kept := make([]model.ShipmentRecord, 0, len(result.Records))
		for _, record := range result.Records {
			if set[record.DimensionValue(dim)] {
				kept = append(kept, record)
			}
		}
		result.Records = kept
		result.Constrained = append(result.Constrained, dim)
	}
	return result
}

// Candidates computes the selectable values for one dimension given the
// selections already made on the other dimensions. The dimension's own
// selection is ignored so already-chosen values stay selectable. An empty
// upstream result yields an empty candidate list, never an error.
func Candidates(records []model.ShipmentRecord, selections Selections, dim model.Dimension) []string {
	reduced := Apply(records, selections.WithoutDimension(dim)).Records

	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, record := range reduced {
		value := record.DimensionValue(dim)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	sortCandidates(values, dim)
	return values
}

func sortCandidates(values []string, dim model.Dimension) {
	switch dim {
	case model.DimMonth:
		// Calendar order, not alphabetical.
		sort.Slice(values, func(i, j int) bool {
			a, _ := model.ParseMonth(values[i])
			b, _ := model.ParseMonth(values[j])
			return a < b
		})
	case model.DimYear:
		sort.Slice(values, func(i, j int) bool {
			a, _ := strconv.Atoi(values[i])
			b, _ := strconv.Atoi(values[j])
			return a < b
		})
	default:
		sort.Strings(values)
	}
}
