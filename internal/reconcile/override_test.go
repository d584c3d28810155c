package reconcile

import (
	"errors"
	"reflect"
	"testing"

	"podocs/internal"
	"podocs/internal/po"
)

func TestApplyOverride(t *testing.T) {
	cfg := po.DefaultConfig()
	v := Reconcile(cfg, result("50001234"), result("80005678"))

	out, err := ApplyOverride(cfg, v, "53681855")
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != internal.StatusAccepted {
		t.Fatalf("unexpected status: %v", out.Status)
	}
	if out.NextAction != ActionManuallyConfirmed {
		t.Fatalf("unexpected action: %q", out.NextAction)
	}
	if out.RejectReason != nil {
		t.Fatalf("reject reason not cleared: %+v", out.RejectReason)
	}
	if !reflect.DeepEqual(out.DecidedPONumbers, []string{"53681855"}) || *out.DecidedPOPrimary != "53681855" {
		t.Fatalf("unexpected decided POs: %+v", out)
	}
	// The original match status stays for audit.
	if out.MatchStatus != internal.Mismatch {
		t.Fatalf("match status rewritten: %v", out.MatchStatus)
	}
}

func TestApplyOverrideInvalid(t *testing.T) {
	cfg := po.DefaultConfig()
	v := Reconcile(cfg, result(), result())

	for _, bad := range []string{"", "ABC", "12345678", "999"} {
		out, err := ApplyOverride(cfg, v, bad)
		if !errors.Is(err, ErrInvalidPOFormat) {
			t.Fatalf("%q: expected ErrInvalidPOFormat, got %v", bad, err)
		}
		if !reflect.DeepEqual(out, v) {
			t.Fatalf("%q: verdict mutated on error", bad)
		}
	}
}

func TestApplyOverrideMultipleValues(t *testing.T) {
	cfg := po.DefaultConfig()
	v := Reconcile(cfg, result(), result())

	out, err := ApplyOverride(cfg, v, "50001234, 041234/21234")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.DecidedPONumbers, []string{"50001234", "41234", "21234"}) {
		t.Fatalf("unexpected decided set: %v", out.DecidedPONumbers)
	}
	if *out.DecidedPOPrimary != "50001234" || *out.DecidedPOSecondary != "41234" {
		t.Fatalf("unexpected primary/secondary: %+v", out)
	}
}

func TestApplyOverrideIdempotent(t *testing.T) {
	cfg := po.DefaultConfig()
	v := Reconcile(cfg, result("50001234"), result())

	once, err := ApplyOverride(cfg, v, "41234")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ApplyOverride(cfg, once, "41234")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("override not idempotent: %+v vs %+v", once, twice)
	}
}
