package po

import "testing"

func TestMatchFamily(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		run    string
		family string
	}{
		{"50001234", "F5"},
		{"80001234", "F8"},
		{"20001234", "F2"},
		{"00001234", "F0"},
		{"4123", "F4-short"},
		{"41234567", "F4-short"},
		{"21234", "F2-short"},
		{"212345", "F2-short"},
		{"12345678", ""},
		{"2123456", ""},
		{"400", ""},
		{"412345678", ""},
		{"5000123", ""},
	}
	for _, tc := range cases {
		if got := cfg.matchFamily(tc.run); got != tc.family {
			t.Fatalf("matchFamily(%q) = %q, want %q", tc.run, got, tc.family)
		}
	}
}

func TestScanFindsRunsWithContext(t *testing.T) {
	cfg := DefaultConfig()

	cands := cfg.Scan(3, "Pedido: 50001234 total 99")
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", cands)
	}
	c := cands[0]
	if c.Raw != "50001234" || c.Family != "F5" || c.Page != 3 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if c.Prev != ' ' {
		t.Fatalf("unexpected prev rune: %q", c.Prev)
	}
	if c.Context != "Pedido: " {
		t.Fatalf("unexpected context: %q", c.Context)
	}
}

func TestScanKeepsLeadingZeros(t *testing.T) {
	cfg := DefaultConfig()
	cands := cfg.Scan(0, "Nº 00001234")
	if len(cands) != 1 || cands[0].Raw != "00001234" {
		t.Fatalf("leading zeros clipped: %+v", cands)
	}
}

func TestScanMaximalRunsOnly(t *testing.T) {
	cfg := DefaultConfig()
	// A 10-digit run must not yield an 8-digit substring match.
	if cands := cfg.Scan(0, "ref 5000123456"); len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}
