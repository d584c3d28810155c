package intake

import (
	"strings"

	"podocs/internal/util"
)

type DetectResult struct {
	IsDocumentMail bool
	Score          float64
	Reason         string
}

// Document-mail markers across the supplier languages. Matching runs over
// folded (lowercase, accent-free) text so "Albarán" and "albaran" both hit.
var detectKeywords = []string{
	"albaran", "factura", "invoice", "delivery note", "packing list",
	"guia de remessa", "lieferschein", "bon de livraison", "pedido",
	"encomenda", "order confirmation", "po number",
}

// DetectDocumentMail scores whether a message carries supplier documents to
// process. A PDF attachment is the strongest signal; keyword hits in the
// subject or body push borderline messages over the threshold.
func DetectDocumentMail(subject, text string, attachmentNames []string) DetectResult {
	subject = util.FoldText(subject)
	text = util.FoldText(text)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) {
			score += 0.1
		}
	}

	for _, name := range attachmentNames {
		if strings.HasSuffix(strings.ToLower(name), ".pdf") {
			score += 0.5
			break
		}
	}

	if score > 1 {
		score = 1
	}

	isDoc := score >= 0.4
	reason := "rules_negative"
	if isDoc {
		reason = "rules_positive"
	}
	return DetectResult{IsDocumentMail: isDoc, Score: score, Reason: reason}
}
