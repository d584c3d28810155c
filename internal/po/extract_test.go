package po

import (
	"reflect"
	"strings"
	"testing"

	"podocs/internal"
)

func page(text string) []internal.PageText {
	return []internal.PageText{{Page: 0, Text: text}}
}

func TestExtractKeywordPO(t *testing.T) {
	cfg := DefaultConfig()

	res := Extract(cfg, page("Su Pedido: 50001234\nTotal 99,00"), "")
	if res.POPrimary == nil || *res.POPrimary != "50001234" {
		t.Fatalf("unexpected primary: %+v", res)
	}
	if res.Confidence != confKeywordPO {
		t.Fatalf("unexpected confidence: %v", res.Confidence)
	}
	if res.Method != internal.MethodRegex {
		t.Fatalf("unexpected method: %v", res.Method)
	}
	if len(res.FoundKeywords) == 0 || len(res.Evidence) == 0 {
		t.Fatalf("missing keywords/evidence: %+v", res)
	}
}

func TestExtractBarePOFallback(t *testing.T) {
	cfg := DefaultConfig()

	// No keyword anywhere: the full-page scan still finds the valid run but
	// reports it at reduced confidence. The lead-1 run matches no family and
	// the exclusion label kills nothing else here.
	res := Extract(cfg, page("Cliente: 12345678 PO 53681855"), "")
	if !reflect.DeepEqual(res.PONumbers, []string{"53681855"}) {
		t.Fatalf("unexpected numbers: %v", res.PONumbers)
	}
	if res.Confidence != confBarePO {
		t.Fatalf("unexpected confidence: %v", res.Confidence)
	}
}

func TestExtractKeywordAcrossWhitespaceGap(t *testing.T) {
	cfg := DefaultConfig()

	// Column-aligned PDF text puts hundreds of spaces between the label and
	// the value lines. The keyword window follows lines, not character
	// offsets, so the PO two lines down still lands inside it.
	text := "Su Pedido:\n" +
		strings.Repeat(" ", 500) + "\n" +
		"50001234\n" +
		"Total 99,00"
	res := Extract(cfg, page(text), "")
	if !reflect.DeepEqual(res.PONumbers, []string{"50001234"}) {
		t.Fatalf("unexpected numbers: %v", res.PONumbers)
	}
	if res.Confidence != confKeywordPO {
		t.Fatalf("unexpected confidence: %v", res.Confidence)
	}
}

func TestExtractArticleCodeRejected(t *testing.T) {
	cfg := DefaultConfig()

	res := Extract(cfg, page("R56481001"), "")
	if len(res.PONumbers) != 0 || res.POPrimary != nil {
		t.Fatalf("article code extracted: %+v", res)
	}
	if res.Confidence != 0 {
		t.Fatalf("unexpected confidence: %v", res.Confidence)
	}
}

func TestExtractNegativeContextRejected(t *testing.T) {
	cfg := DefaultConfig()

	res := Extract(cfg, page("Cliente: 50001234"), "")
	if len(res.PONumbers) != 0 {
		t.Fatalf("excluded label extracted: %+v", res)
	}
}

func TestExtractSupplierRule(t *testing.T) {
	cfg := DefaultConfig()

	res := Extract(cfg, page("TAYG S.L.\nSu Pedido: 21234"), "")
	if res.Supplier == nil || *res.Supplier != "TAYG" {
		t.Fatalf("supplier not detected: %+v", res)
	}
	if len(res.PONumbers) != 0 {
		t.Fatalf("short PO accepted for TAYG: %v", res.PONumbers)
	}

	res = Extract(cfg, page("TAYG S.L.\nSu Pedido: 50001234"), "")
	if res.POPrimary == nil || *res.POPrimary != "50001234" {
		t.Fatalf("8-digit PO rejected for TAYG: %+v", res)
	}
}

func TestExtractMultiplePOs(t *testing.T) {
	cfg := DefaultConfig()

	res := Extract(cfg, page("Su Pedido: 50001234 y 41234"), "")
	if !reflect.DeepEqual(res.PONumbers, []string{"50001234", "41234"}) {
		t.Fatalf("unexpected numbers: %v", res.PONumbers)
	}
	if res.POSecondary == nil || *res.POSecondary != "41234" {
		t.Fatalf("unexpected secondary: %+v", res)
	}
}
