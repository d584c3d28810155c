package po

import (
	"sort"
	"strings"

	"podocs/internal/util"
)

// POKeywords are the labels that introduce a PO number in supplier documents.
// Matching is case- and accent-insensitive; the list spans Portuguese,
// Spanish, French, German, Italian and English forms.
var POKeywords = []string{
	"Bestellnummer",
	"CDE EDI No",
	"Client ordernumber",
	"Customer PO",
	"Delivery note",
	"Encomenda",
	"Encomenda cliente n.º",
	"ENCOMENDA N.º",
	"N comande client:",
	"N. PEDIDO/ENCOMENDA:",
	"N.PEDIDO",
	"N/REF.",
	"Nº Cmd/Best Nr",
	"Nº de commande",
	"Nº Pdo CLIENTE",
	"Nº Ped. Compra:",
	"Nº Pedido Cliente:",
	"Nº Pedido LM",
	"Nº Pedido:",
	"Nº. de Enc. CI.:",
	"Nostro Ordine",
	"Order Number:",
	"P.Clte",
	"Ped.Cliente",
	"PEDIDO CLIENTE",
	"Pedido del cliente Nº",
	"PEDIDO Nº",
	"PO no / date",
	"Project no:",
	"Ref client:",
	"Réf. BL interne:",
	"REF:",
	"Referência",
	"REFERÊNCIA CLIENTE:",
	"Referencia:",
	"Requisição",
	"S/PEDIDO:",
	"Su Encomenda",
	"Su nº de referencia",
	"Su Nº Pedido",
	"Su número de orden",
	"Su pedido",
	"Su ref.: PEDIDO",
	"SU REFERENCIA",
	"Su Referencia:",
	"V. Requisição",
	"v/ Refª:",
	"V/ Requisição:",
	"V/Doc:",
	"V/REF",
	"V/REFª",
	"V/REQ.",
	"Vossa Encomenda:",
	"Vosso Pedido",
	"Vostro Ordine",
	"Votre comande nº",
	"Votre réf.:",
	"Votre référence de comande:",
	"Your reference",
	"Pedido",
	"V/PEDIDO",
	"Expedição",
	"Nº Expedição:",
	"Votre comande",
	"votre référence",
	"Réf commande",
	"Vx.Enc",
	"Nº pedido cliente:",
	"Ordeno.",
	"Order ref.:",
	"sua encomenda",
	"Ref.pedido cliente",
	"Referencia cliente",
	"Numéro de commande",
	"Numéro de pedido",
	"N.º pedido",
	"Número de orden",
	"Réquisition",
	"V/ PEDIDO",
}

type keywordEntry struct {
	folded   string
	original string
}

// foldedKeywords is sorted longest-first so broader labels win over their
// substrings (e.g. "Nº Pedido Cliente:" before "Pedido").
var foldedKeywords = buildFoldedKeywords()

func buildFoldedKeywords() []keywordEntry {
	out := make([]keywordEntry, 0, len(POKeywords))
	for _, kw := range POKeywords {
		out = append(out, keywordEntry{folded: util.FoldText(kw), original: kw})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].folded) > len(out[j].folded) })
	return out
}

// KeywordHit is one keyword occurrence. Line indexes the lines of the
// original text; Pos is the offset within that line after folding. Anchoring
// to lines keeps hits usable on the original text, where accent folding and
// whitespace collapsing make global folded offsets drift.
type KeywordHit struct {
	Keyword string
	Line    int
	Pos     int
}

// FindKeywords locates every PO-introducing keyword in text, line by line.
// Overlapping hits at the same position are reported once, longest keyword
// first.
func FindKeywords(text string) []KeywordHit {
	var out []KeywordHit
	for li, line := range strings.Split(text, "\n") {
		folded := util.FoldText(line)
		if folded == "" {
			continue
		}
		seen := map[int]struct{}{}
		for _, entry := range foldedKeywords {
			start := 0
			for {
				pos := strings.Index(folded[start:], entry.folded)
				if pos == -1 {
					break
				}
				abs := start + pos
				if _, ok := seen[abs]; !ok {
					out = append(out, KeywordHit{Keyword: entry.original, Line: li, Pos: abs})
					seen[abs] = struct{}{}
				}
				start = abs + 1
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}
