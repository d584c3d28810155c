package pdftext

import (
	"reflect"
	"testing"

	"podocs/internal"
)

func pages(texts ...string) []internal.PageText {
	out := make([]internal.PageText, 0, len(texts))
	for i, text := range texts {
		out = append(out, internal.PageText{Page: i, Text: text})
	}
	return out
}

func TestDetectBoundariesMultiDocument(t *testing.T) {
	got := DetectBoundaries(pages(
		"Albarán 123\nPágina 1 de 2",
		"Página 2 de 2",
		"Delivery note\nPage 1 of 1",
	))
	want := []internal.PageRange{
		{StartPage: 0, EndPage: 1},
		{StartPage: 2, EndPage: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectBoundaries = %v, want %v", got, want)
	}
}

func TestDetectBoundariesNoMarkers(t *testing.T) {
	got := DetectBoundaries(pages("no pagination here", "still nothing"))
	want := []internal.PageRange{{StartPage: 0, EndPage: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectBoundaries = %v, want %v", got, want)
	}
}

func TestDetectBoundariesFirstMarkerLate(t *testing.T) {
	// Page 0 opens a region even without a marker.
	got := DetectBoundaries(pages("cover sheet", "Seite 1 von 1"))
	want := []internal.PageRange{
		{StartPage: 0, EndPage: 0},
		{StartPage: 1, EndPage: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectBoundaries = %v, want %v", got, want)
	}
}

func TestContinuationVetoesFirstPage(t *testing.T) {
	if isFirstPage("Página 2 de 3") {
		t.Fatal("continuation page treated as first page")
	}
	if !isFirstPage("Página 1 de 3") {
		t.Fatal("first page not recognized")
	}
	if !isFirstPage("GUIA DE REMESSA Nº 9") {
		t.Fatal("guia de remessa not recognized")
	}
}

func TestDetectBoundariesIgnoresPageNumbering(t *testing.T) {
	// Ranges index into the slice even when the entries carry batch-global
	// page numbers, as for a second attachment in a mail.
	got := DetectBoundaries([]internal.PageText{
		{Page: 3, Text: "Albarán 123\nPágina 1 de 2"},
		{Page: 4, Text: "Página 2 de 2"},
	})
	want := []internal.PageRange{{StartPage: 0, EndPage: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectBoundaries = %v, want %v", got, want)
	}
}

func TestDetectBoundariesEmpty(t *testing.T) {
	if got := DetectBoundaries(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSlicePages(t *testing.T) {
	ps := pages("a", "b", "c")
	got := SlicePages(ps, internal.PageRange{StartPage: 1, EndPage: 5})
	if len(got) != 2 || got[0].Text != "b" || got[1].Text != "c" {
		t.Fatalf("unexpected slice: %+v", got)
	}
	if got := SlicePages(ps, internal.PageRange{StartPage: 4, EndPage: 5}); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
