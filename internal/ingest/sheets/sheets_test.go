package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractSheetID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://docs.google.com/spreadsheets/d/abc123/edit#gid=0", "abc123", true},
		{"https://docs.google.com/spreadsheets/d/abc123", "abc123", true},
		{"https://example.com/nothing-here", "", false},
		{"https://docs.google.com/spreadsheets/d//edit", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractSheetID(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractSheetID(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFetchBuildsExportURL(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("Consignee,Tons\nX,10\n"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/spreadsheets/d/", SheetName: "shipments"})
	body, err := client.Fetch(context.Background(), "https://docs.google.com/spreadsheets/d/sheet-1/edit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(body), "Consignee,Tons") {
		t.Fatalf("unexpected body: %q", body)
	}
	if gotPath != "/spreadsheets/d/sheet-1/gviz/tq" {
		t.Fatalf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "tqx=out%3Acsv") && !strings.Contains(gotQuery, "tqx=out:csv") {
		t.Fatalf("query missing csv export flag: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "sheet=shipments") {
		t.Fatalf("query missing sheet name: %q", gotQuery)
	}
}

func TestFetchSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/spreadsheets/d/"})
	_, err := client.Fetch(context.Background(), "https://docs.google.com/spreadsheets/d/sheet-1/edit")
	if err == nil {
		t.Fatal("expected fetch error")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
}

func TestFetchRejectsMalformedLink(t *testing.T) {
	client := New(Config{})
	_, err := client.Fetch(context.Background(), "https://example.com/not-a-sheet")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}
