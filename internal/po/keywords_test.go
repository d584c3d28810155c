package po

import "testing"

func TestFindKeywordsCaseAndAccentInsensitive(t *testing.T) {
	hits := FindKeywords("referencia cliente: 80001234")
	if len(hits) == 0 {
		t.Fatal("no keyword hits")
	}
	if hits[0].Pos != 0 {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}

	hits = FindKeywords("SU PEDIDO 50001234")
	if len(hits) == 0 {
		t.Fatal("uppercase keyword missed")
	}
}

func TestFindKeywordsReportLines(t *testing.T) {
	hits := FindKeywords("Factura 99\n\nSu Pedido: 50001234")
	if len(hits) == 0 {
		t.Fatal("no keyword hits")
	}
	if hits[0].Line != 2 || hits[0].Pos != 0 {
		t.Fatalf("unexpected hit location: %+v", hits[0])
	}
}

func TestFindKeywordsLongestFirst(t *testing.T) {
	hits := FindKeywords("V/PEDIDO: 50001234")
	if len(hits) == 0 {
		t.Fatal("no hits")
	}
	if hits[0].Keyword != "V/PEDIDO" || hits[0].Pos != 0 {
		t.Fatalf("expected V/PEDIDO at 0, got %+v", hits[0])
	}
}

func TestFindKeywordsNone(t *testing.T) {
	if hits := FindKeywords("Total: 123.45 EUR"); len(hits) != 0 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}
