package pipeline

import (
	"context"
	"strings"
	"testing"

	"podocs/internal"
	"podocs/internal/config"
	"podocs/internal/pdftext"
	"podocs/internal/po"
)

func TestRunPipelineAWithoutClient(t *testing.T) {
	res := RunPipelineA(context.Background(), nil, config.Config{}, []internal.PageText{{Page: 0, Text: "Su Pedido: 50001234"}})
	if res.POPrimary != nil || len(res.PONumbers) != 0 || res.Confidence != 0 {
		t.Fatalf("skipped result not empty: %+v", res)
	}
	if res.Method != internal.MethodLLM {
		t.Fatalf("unexpected method: %v", res.Method)
	}
}

func TestRunPipelineBRegexOnly(t *testing.T) {
	cfg := config.Config{RegexStrongThreshold: 0.75}
	poCfg := po.DefaultConfig()

	res := RunPipelineB(context.Background(), nil, cfg, poCfg, []internal.PageText{{Page: 0, Text: "Su Pedido: 50001234"}})
	if res.POPrimary == nil || *res.POPrimary != "50001234" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Method != internal.MethodRegex {
		t.Fatalf("unexpected method: %v", res.Method)
	}

	// Weak regex result and no client: the regex result still comes back.
	res = RunPipelineB(context.Background(), nil, cfg, poCfg, []internal.PageText{{Page: 0, Text: "R56481001"}})
	if len(res.PONumbers) != 0 || res.Confidence != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

// A second attachment gets its boundaries detected on its own page sequence;
// only the resulting regions shift into batch-global numbering.
func TestRegionsFromSecondAttachment(t *testing.T) {
	pages := []internal.PageText{
		{Page: 0, Text: "Albarán 456\nPágina 1 de 2\nSu Pedido: 50001234"},
		{Page: 1, Text: "Página 2 de 2"},
	}
	const offset = 3 // first attachment had three pages

	ranges := pdftext.DetectBoundaries(pages)
	for i := range pages {
		pages[i].Page += offset
	}
	regions := regionsFromRanges(pages, ranges, offset)

	if len(regions) != 1 {
		t.Fatalf("unexpected regions: %+v", regions)
	}
	if regions[0].Range.StartPage != 3 || regions[0].Range.EndPage != 4 {
		t.Fatalf("unexpected range: %+v", regions[0].Range)
	}
	if len(regions[0].Pages) != 2 || regions[0].Pages[0].Page != 3 || regions[0].Pages[1].Page != 4 {
		t.Fatalf("unexpected pages: %+v", regions[0].Pages)
	}
	if !strings.Contains(regions[0].Pages[0].Text, "50001234") {
		t.Fatalf("region lost its text: %+v", regions[0].Pages[0])
	}
}

func TestJoinPages(t *testing.T) {
	text := joinPages([]internal.PageText{
		{Page: 0, Text: "first"},
		{Page: 1, Text: "second"},
	})
	if !strings.Contains(text, "--- PAGE 0 ---") || !strings.Contains(text, "--- PAGE 1 ---") {
		t.Fatalf("missing page markers: %q", text)
	}

	long := joinPages([]internal.PageText{{Page: 0, Text: strings.Repeat("x", maxDocumentChars+100)}})
	if len(long) > maxDocumentChars+50 {
		t.Fatalf("text not truncated: %d chars", len(long))
	}
	if !strings.Contains(long, "truncated") {
		t.Fatal("missing truncation marker")
	}
}
