package reconcile

import (
	"podocs/internal"
	"podocs/internal/po"
	"podocs/internal/util"
)

// Next-action strings surfaced to reviewers and the export.
const (
	ActionAutoAccepted      = "none — auto-accepted"
	ActionConfirmSingle     = "confirm single-pipeline result"
	ActionReviewConflict    = "review conflicting POs"
	ActionManualReconcile   = "manual reconciliation required"
	ActionManualEntry       = "manual PO entry required"
	ActionManuallyConfirmed = "none — manually confirmed"
)

// Reconcile compares the A and B results for one region and derives the
// verdict from canonical PO sets alone. Confidence scores ride along for
// review display but never decide the outcome. An empty set stands for
// "found nothing" as well as "pipeline skipped"; both reconcile the same way.
func Reconcile(cfg *po.Config, a, b internal.PipelineResult) internal.Verdict {
	setA := canonicalSet(cfg, a)
	setB := canonicalSet(cfg, b)

	switch {
	case len(setA) == 0 && len(setB) == 0:
		return verdict(internal.NoneFound, nil, internal.StatusReview, ActionManualEntry, "no PO found by either pipeline")

	case len(setA) == 0 || len(setB) == 0:
		decided := setA
		if len(decided) == 0 {
			decided = setB
		}
		return verdict(internal.SinglePipeline, decided, internal.StatusReview, ActionConfirmSingle, "")

	case setsEqual(setA, setB):
		return verdict(internal.MatchOK, setA, internal.StatusAccepted, ActionAutoAccepted, "")

	default:
		common := intersect(setA, setB)
		if len(common) > 0 {
			return verdict(internal.PartialMatch, common, internal.StatusReview, ActionReviewConflict, "pipelines partially agree")
		}
		return verdict(internal.Mismatch, nil, internal.StatusReview, ActionManualReconcile, "pipelines disagree completely")
	}
}

// canonicalSet prefers the full PO set; primary/secondary are the fallback
// for pipelines that only report two slots.
func canonicalSet(cfg *po.Config, r internal.PipelineResult) []string {
	values := r.PONumbers
	if len(values) == 0 {
		if r.POPrimary != nil {
			values = append(values, *r.POPrimary)
		}
		if r.POSecondary != nil {
			values = append(values, *r.POSecondary)
		}
	}
	return cfg.CanonicalSet(values)
}

func verdict(match internal.MatchStatus, decided []string, status internal.FinalStatus, action, reason string) internal.Verdict {
	v := internal.Verdict{
		MatchStatus:      match,
		DecidedPONumbers: decided,
		Status:           status,
		NextAction:       action,
	}
	if len(decided) > 0 {
		v.DecidedPOPrimary = util.StringPtr(decided[0])
	}
	if len(decided) > 1 {
		v.DecidedPOSecondary = util.StringPtr(decided[1])
	}
	if reason != "" {
		v.RejectReason = util.StringPtr(reason)
	}
	return v
}

// setsEqual is full set equality, order-independent; a subset is not a match.
func setsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// intersect keeps a's first-seen order.
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
