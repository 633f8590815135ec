package session

import (
	"testing"

	"tradelens/internal/classify"
	"tradelens/internal/model"
)

const sampleCSV = `Consignee,Exporter,Mark,Tons,Month,Year,Consignee State
Acme,Globex,GRANITE SLAB,10,Jan,2024,Gujarat
Acme,Initech,MARBLE BLOCK,20,Feb,2024,Gujarat
Bravo,Globex,GRANITE TILE,5,Jan,2024,Kerala
`

func TestLoadClassifiesAndResets(t *testing.T) {
	manager := NewManager()
	session := manager.Open()
	classifier := classify.New([]string{"Granite", "Marble"}, 70)

	dataset, err := manager.Load(session, "upload.csv", []byte(sampleCSV), classifier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dataset.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(dataset.Records))
	}
	if dataset.Records[0].ProductCategory != "Granite" {
		t.Fatalf("category = %q, want Granite", dataset.Records[0].ProductCategory)
	}
	if dataset.Records[1].ProductCategory != "Marble" {
		t.Fatalf("category = %q, want Marble", dataset.Records[1].ProductCategory)
	}

	session.SetSelection(model.DimState, []string{"Kerala"})
	if got := len(session.Filtered().Records); got != 1 {
		t.Fatalf("filtered = %d, want 1", got)
	}

	// Reloading the same bytes resets selections and hits the cache.
	again, err := manager.Load(session, "upload.csv", []byte(sampleCSV), classifier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != dataset {
		t.Fatal("identical upload should reuse the cached dataset")
	}
	if got := len(session.Filtered().Records); got != 3 {
		t.Fatalf("selections must reset on load; filtered = %d, want 3", got)
	}
}

func TestCacheKeyedByClassifierToo(t *testing.T) {
	manager := NewManager()
	session := manager.Open()

	first, err := manager.Load(session, "a", []byte(sampleCSV), classify.New([]string{"Granite"}, 70))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := manager.Load(session, "a", []byte(sampleCSV), classify.New([]string{"Marble"}, 70))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("different candidate lists must not share a cache entry")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	manager := NewManager()
	a := manager.Open()
	b := manager.Open()
	classifier := classify.New([]string{"Granite"}, 70)

	if _, err := manager.Load(a, "a", []byte(sampleCSV), classifier); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := manager.Load(b, "b", []byte(sampleCSV), classifier); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.SetSelection(model.DimConsignee, []string{"Acme"})
	if got := len(b.Filtered().Records); got != 3 {
		t.Fatalf("selection on session a leaked into b: filtered = %d", got)
	}
}

func TestCandidatesCascade(t *testing.T) {
	manager := NewManager()
	session := manager.Open()
	if _, err := manager.Load(session, "a", []byte(sampleCSV), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session.SetSelection(model.DimState, []string{"Kerala"})
	got := session.Candidates(model.DimExporter)
	if len(got) != 1 || got[0] != "Globex" {
		t.Fatalf("exporter candidates = %v, want [Globex]", got)
	}
}

func TestCloseForgetsSession(t *testing.T) {
	manager := NewManager()
	session := manager.Open()
	manager.Close(session.ID)
	if _, ok := manager.Get(session.ID); ok {
		t.Fatal("closed session still registered")
	}
}
