package util

import "testing"

func TestStripAccents(t *testing.T) {
	cases := map[string]string{
		"Página":     "Pagina",
		"Requisição": "Requisicao",
		"Référence":  "Reference",
		"plain":      "plain",
	}
	for in, want := range cases {
		if got := StripAccents(in); got != want {
			t.Fatalf("StripAccents(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldText(t *testing.T) {
	if got := FoldText("  REFERÊNCIA \t Cliente  "); got != "referencia cliente" {
		t.Fatalf("unexpected fold: %q", got)
	}
	if got := FoldText("Su  Pedido:"); got != "su pedido:" {
		t.Fatalf("unexpected fold: %q", got)
	}
}

func TestNormalizeSupplier(t *testing.T) {
	if got := NormalizeSupplier("  tayg  "); got != "TAYG" {
		t.Fatalf("unexpected supplier: %q", got)
	}
}
