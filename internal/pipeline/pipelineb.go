package pipeline

import (
	"context"

	"podocs/internal"
	"podocs/internal/config"
	"podocs/internal/llm"
	"podocs/internal/po"
)

// promptB is deliberately stricter than prompt A: pipeline B's LLM fallback
// only fires when the regex chain came up weak, and a conservative second
// opinion keeps the two pipelines independent.
const promptB = `You are a conservative document analysis assistant extracting Purchase Order (PO) numbers from business documents.

TASK: Analyse the provided document text and extract PO numbers ONLY if you have strong evidence.

STRICT RULES:
1. Only accept a PO number if it appears directly adjacent to (same line or immediately next line) a PO-introducing keyword such as: Pedido, Encomenda, Requisição, Order, PO, Referência, Ref, Bestellnummer, Nº Pedido, V/REF, V/PEDIDO, Your reference, Votre référence, Su Pedido, or similar.
2. The PO must be a numeric string matching one of these formats:
   - 8 digits starting with 5, 8, 2, or 0
   - 4-8 digits starting with 4
   - 5-6 digits starting with 2
3. DO NOT accept numbers that are merely nearby but not clearly associated with a PO keyword.
4. DO NOT accept document numbers, invoice numbers, or other identifiers that are not POs.
5. If the evidence is ambiguous, return null and set confidence below 0.5.
6. Extract ALL PO numbers you find. Populate po_primary with the strongest-evidence PO, po_secondary with the second if present, and po_numbers with the complete list.
7. Provide evidence snippets showing the keyword and PO together.
8. Set confidence: 0.9-1.0 PO immediately follows a keyword; 0.7-0.89 PO near a keyword with clear context; 0.3-0.69 uncertain; 0.0-0.29 no PO found.
9. NEVER invent PO numbers. When in doubt, return null.

Return your analysis as structured JSON with keys: po_primary, po_secondary, po_numbers, supplier, confidence, found_keywords, evidence.`

// RunPipelineB runs the regex-first chain and falls back to a conservative
// LLM pass when the regex result is weak. Method reports how the final
// result was produced: REGEX, LLM, or HYBRID when both contributed.
func RunPipelineB(ctx context.Context, client *llm.Client, cfg config.Config, poCfg *po.Config, pages []internal.PageText) internal.PipelineResult {
	regexResult := po.Extract(poCfg, pages, "")

	if regexResult.POPrimary != nil && regexResult.Confidence >= cfg.RegexStrongThreshold {
		return regexResult
	}
	if client == nil {
		return regexResult
	}

	reply, err := client.ExtractStructured(ctx, cfg.PipelineBModel, promptB, joinPages(pages))
	if err != nil {
		return regexResult
	}
	llmResult := replyToResult(reply, internal.MethodLLM)

	// Below the confidence floor the conservative pass counts as no
	// confirmation at all.
	if llmResult.Confidence < cfg.MinConfidence {
		llmResult.POPrimary = nil
		llmResult.POSecondary = nil
		llmResult.PONumbers = nil
	}

	// Re-validate LLM output through the filter chain: the supplier rule and
	// family tables apply to pipeline B regardless of which path produced
	// the numbers.
	llmResult.PONumbers = poCfg.CanonicalSet(llmResult.PONumbers)

	if regexResult.POPrimary != nil && llmResult.POPrimary == nil {
		// Regex found something the conservative pass would not confirm:
		// keep it, capped below the strong threshold.
		merged := regexResult
		merged.Method = internal.MethodHybrid
		if merged.Confidence > 0.6 {
			merged.Confidence = 0.6
		}
		merged.PONumbers = mergeUnique(regexResult.PONumbers, llmResult.PONumbers)
		merged.FoundKeywords = mergeUnique(regexResult.FoundKeywords, llmResult.FoundKeywords)
		merged.Evidence = append(append([]internal.Evidence{}, regexResult.Evidence...), llmResult.Evidence...)
		return merged
	}

	if llmResult.POPrimary != nil && regexResult.POPrimary != nil {
		llmResult.Method = internal.MethodHybrid
		llmResult.PONumbers = mergeUnique(llmResult.PONumbers, regexResult.PONumbers)
		llmResult.FoundKeywords = mergeUnique(llmResult.FoundKeywords, regexResult.FoundKeywords)
		llmResult.Evidence = append(llmResult.Evidence, regexResult.Evidence...)
	}
	if llmResult.Supplier == nil {
		llmResult.Supplier = regexResult.Supplier
	}
	return llmResult
}

func mergeUnique(a, b []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string{}, a...), b...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
