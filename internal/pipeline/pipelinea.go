package pipeline

import (
	"context"
	"fmt"
	"strings"

	"podocs/internal"
	"podocs/internal/config"
	"podocs/internal/llm"
)

// promptA is the flexible, LLM-first extraction prompt. Pipeline A trusts
// the model to handle table cells, multi-column layouts and misaligned text
// that the regex chain cannot see.
const promptA = `You are a document analysis assistant specialising in extracting Purchase Order (PO) numbers from business documents (invoices, delivery notes, packing lists, order confirmations).

TASK: Analyse the provided document text and extract PO numbers.

RULES:
1. Look for PO-introducing keywords such as: Pedido, Encomenda, Requisição, Order, PO, Referência, Ref, Bestellnummer, Nº Pedido, V/REF, V/PEDIDO, Your reference, Votre référence, Su Pedido, and similar terms in Portuguese, English, French, German, Spanish, or Italian.
2. The PO number typically appears AFTER or NEAR these keywords (same line, next line, same column, or adjacent cell in a table).
3. Valid PO patterns are numeric strings that match one of these formats:
   - 8 digits starting with 5, 8, 2, or 0 (e.g. 50001234, 80001234, 20001234, 00001234)
   - 4-8 digits starting with 4 (e.g. 41234, 41234567)
   - 5-6 digits starting with 2 (e.g. 21234, 212345)
4. Extract ALL PO numbers you find. Populate po_primary with the most prominent PO, po_secondary with the second if present, and po_numbers with the complete list.
5. Also try to identify the supplier/vendor name from the document header or signature area.
6. Provide evidence: for each PO found, include the page number (0-based) and a short text snippet showing the PO in context.
7. Set confidence between 0.0 and 1.0:
   - 0.9-1.0: PO clearly found next to a keyword, unambiguous
   - 0.7-0.89: PO found with reasonable context, minor ambiguity
   - 0.5-0.69: PO found but weak evidence or far from keyword
   - 0.0-0.49: no PO found or very uncertain
8. DO NOT invent PO numbers. If you cannot find a valid PO, return null for po_primary and po_secondary with confidence 0.0.
9. Handle complex layouts: POs may appear in table cells, multi-column layouts, or with varying spacing.

Return your analysis as structured JSON with keys: po_primary, po_secondary, po_numbers, supplier, confidence, found_keywords, evidence.`

const maxDocumentChars = 60000

// RunPipelineA runs the LLM-first extraction over one region. A nil client
// means pipeline A is not configured; the region then gets an explicit
// skipped result (empty set, confidence 0) that the engine reconciles as
// SINGLE_PIPELINE or NONE_FOUND.
func RunPipelineA(ctx context.Context, client *llm.Client, cfg config.Config, pages []internal.PageText) internal.PipelineResult {
	if client == nil {
		return SkippedResult(internal.MethodLLM)
	}

	reply, err := client.ExtractStructured(ctx, cfg.PipelineAModel, promptA, joinPages(pages))
	if err != nil {
		// Pipeline failures degrade to an empty result pushed toward
		// review; they never abort the batch.
		return SkippedResult(internal.MethodLLM)
	}
	return replyToResult(reply, internal.MethodLLM)
}

// SkippedResult is the explicit "pipeline found nothing / did not run"
// result. The engine requires this over a null placeholder.
func SkippedResult(method internal.PipelineMethod) internal.PipelineResult {
	return internal.PipelineResult{
		Method:     method,
		Confidence: 0.0,
	}
}

func replyToResult(reply llm.ExtractionReply, method internal.PipelineMethod) internal.PipelineResult {
	result := internal.PipelineResult{
		POPrimary:     reply.POPrimary,
		POSecondary:   reply.POSecondary,
		PONumbers:     reply.PONumbers,
		Supplier:      reply.Supplier,
		Confidence:    reply.Confidence,
		Method:        method,
		FoundKeywords: reply.FoundKeywords,
	}
	for _, ev := range reply.Evidence {
		result.Evidence = append(result.Evidence, internal.Evidence{Page: ev.Page, Snippet: ev.Snippet})
	}
	return result
}

func joinPages(pages []internal.PageText) string {
	parts := make([]string, 0, len(pages))
	for _, pt := range pages {
		parts = append(parts, fmt.Sprintf("--- PAGE %d ---\n%s", pt.Page, pt.Text))
	}
	text := strings.Join(parts, "\n\n")
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars] + "\n\n[... text truncated ...]"
	}
	return text
}
