package filter

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"tradelens/internal/model"
)

func testRecords() []model.ShipmentRecord {
	mk := func(consignee, exporter, state, product string, month model.Month, year int, tons int64) model.ShipmentRecord {
		return model.ShipmentRecord{
			Consignee:       consignee,
			Exporter:        exporter,
			State:           state,
			ProductCategory: product,
			Month:           month,
			Year:            year,
			Quantity:        decimal.NewFromInt(tons),
			HasQuantity:     true,
		}
	}
	return []model.ShipmentRecord{
		mk("Acme", "Globex", "Gujarat", "Granite", model.Jan, 2024, 10),
		mk("Acme", "Initech", "Gujarat", "Marble", model.Feb, 2024, 20),
		mk("Bravo", "Globex", "Kerala", "Granite", model.Jan, 2024, 5),
		mk("Bravo", "Hooli", "Kerala", "Quartz", model.Dec, 2023, 8),
		mk("Crest", "Globex", "Tamil Nadu", "Granite", model.Feb, 2024, 12),
	}
}

func TestApplyEmptySelectionsPassThrough(t *testing.T) {
	records := testRecords()
	result := Apply(records, Selections{})
	if len(result.Records) != len(records) {
		t.Fatalf("records = %d, want %d", len(result.Records), len(records))
	}
	if len(result.Constrained) != 0 {
		t.Fatalf("constrained = %v, want none", result.Constrained)
	}
}

func TestApplyAllEquivalence(t *testing.T) {
	records := testRecords()

	// "All" sentinel, empty slice, and omitted key must produce identical results.
	withAll := Apply(records, Selections{model.DimState: {model.AllValue}})
	withEmpty := Apply(records, Selections{model.DimState: {}})
	omitted := Apply(records, Selections{})

	if !reflect.DeepEqual(withAll.Records, withEmpty.Records) || !reflect.DeepEqual(withEmpty.Records, omitted.Records) {
		t.Fatal("All sentinel, empty selection, and omitted key are not equivalent")
	}
	if len(withAll.Constrained) != 0 {
		t.Fatalf("All sentinel must not count as constraining, got %v", withAll.Constrained)
	}
}

func TestApplyConstrainsInFixedOrder(t *testing.T) {
	records := testRecords()
	result := Apply(records, Selections{
		model.DimConsignee: {"Bravo"},
		model.DimState:     {"Kerala"},
	})
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	want := []model.Dimension{model.DimState, model.DimConsignee}
	if !reflect.DeepEqual(result.Constrained, want) {
		t.Fatalf("constrained = %v, want %v (fixed order)", result.Constrained, want)
	}
}

func TestApplyMonotonic(t *testing.T) {
	records := testRecords()
	loose := Selections{model.DimState: {"Gujarat", "Kerala"}}
	tight := Selections{
		model.DimState:    {"Gujarat", "Kerala"},
		model.DimExporter: {"Globex"},
	}
	looseCount := len(Apply(records, loose).Records)
	tightCount := len(Apply(records, tight).Records)
	if tightCount > looseCount {
		t.Fatalf("adding a selection grew the result: %d > %d", tightCount, looseCount)
	}
}

func TestApplyDeterministic(t *testing.T) {
	records := testRecords()
	sel := Selections{model.DimProduct: {"Granite"}, model.DimYear: {"2024"}}
	first := Apply(records, sel)
	for i := 0; i < 5; i++ {
		again := Apply(records, sel)
		if !reflect.DeepEqual(first.Records, again.Records) {
			t.Fatalf("run %d: filter output differs", i)
		}
	}
}

func TestApplySelectionMatchingNothing(t *testing.T) {
	records := testRecords()
	result := Apply(records, Selections{model.DimState: {"Nowhere"}})
	if len(result.Records) != 0 {
		t.Fatalf("records = %d, want 0", len(result.Records))
	}
	if len(result.Constrained) != 1 {
		t.Fatalf("a non-trivial selection must be recorded even when it matches nothing")
	}
}

func TestCandidatesRespectOtherDimensions(t *testing.T) {
	records := testRecords()

	// With Kerala selected, exporters narrow to Kerala's exporters.
	sel := Selections{model.DimState: {"Kerala"}}
	got := Candidates(records, sel, model.DimExporter)
	want := []string{"Globex", "Hooli"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("exporter candidates = %v, want %v", got, want)
	}

	// The dimension's own selection is ignored when computing its candidates.
	sel[model.DimExporter] = []string{"Hooli"}
	got = Candidates(records, sel, model.DimExporter)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("own-dimension selection leaked into candidates: %v", got)
	}
}

func TestCandidatesMonthCalendarOrder(t *testing.T) {
	records := testRecords()
	got := Candidates(records, Selections{}, model.DimMonth)
	want := []string{"Jan", "Feb", "Dec"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("month candidates = %v, want calendar order %v", got, want)
	}
}

func TestCandidatesYearNumericOrder(t *testing.T) {
	records := testRecords()
	got := Candidates(records, Selections{}, model.DimYear)
	want := []string{"2023", "2024"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("year candidates = %v, want %v", got, want)
	}
}

func TestCandidatesEmptyUpstream(t *testing.T) {
	records := testRecords()
	sel := Selections{model.DimState: {"Nowhere"}}
	got := Candidates(records, sel, model.DimExporter)
	if len(got) != 0 {
		t.Fatalf("candidates = %v, want empty", got)
	}
}
