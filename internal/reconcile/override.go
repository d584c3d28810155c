package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"podocs/internal"
	"podocs/internal/po"
	"podocs/internal/util"
)

// ErrInvalidPOFormat is returned when an override value cannot be
// canonicalized into any recognized pattern family.
var ErrInvalidPOFormat = errors.New("invalid PO format")

// ApplyOverride replaces the decided PO of a verdict with a reviewer-supplied
// value. The value is re-validated through the normalizer; it may encode
// several POs separated by commas, semicolons, slashes or whitespace, and
// every piece must canonicalize into a recognized family. On success the
// verdict is forced to ACCEPTED; the engine is not re-run and the original
// pipeline results are untouched. Re-applying the same value is a no-op.
func ApplyOverride(cfg *po.Config, v internal.Verdict, newPO string) (internal.Verdict, error) {
	parts := splitOverride(newPO)
	if len(parts) == 0 {
		return v, fmt.Errorf("%w: %q", ErrInvalidPOFormat, newPO)
	}

	values := make([]string, 0, len(parts))
	for _, part := range parts {
		canonical, ok := cfg.CanonicalValid(part)
		if !ok {
			return v, fmt.Errorf("%w: %q", ErrInvalidPOFormat, part)
		}
		values = append(values, canonical)
	}
	values = cfg.CanonicalSet(values)

	out := v
	out.DecidedPONumbers = values
	out.DecidedPOPrimary = util.StringPtr(values[0])
	out.DecidedPOSecondary = nil
	if len(values) > 1 {
		out.DecidedPOSecondary = util.StringPtr(values[1])
	}
	out.Status = internal.StatusAccepted
	out.NextAction = ActionManuallyConfirmed
	out.RejectReason = nil
	return out, nil
}

func splitOverride(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}
