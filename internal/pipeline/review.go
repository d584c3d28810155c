package pipeline

import (
	"fmt"

	"podocs/internal"
	"podocs/internal/reconcile"
)

func (s *ProcessingService) ListOpenRejects(limit int) ([]internal.RejectRow, error) {
	return s.db.ListRejects(false, limit)
}

// ResolveReject applies a reviewer-supplied PO to the document behind a
// reject-queue entry. The value is validated through the override path; on
// success the verdict is forced to ACCEPTED and the queue entry closed.
func (s *ProcessingService) ResolveReject(rejectID int, newPO string) (internal.Verdict, error) {
	reject, err := s.db.GetReject(rejectID)
	if err != nil {
		return internal.Verdict{}, err
	}
	if reject == nil {
		return internal.Verdict{}, fmt.Errorf("reject not found: id=%d", rejectID)
	}

	current, err := s.db.GetVerdict(reject.DocumentID)
	if err != nil {
		return internal.Verdict{}, err
	}
	if current == nil {
		return internal.Verdict{}, fmt.Errorf("no verdict for document id=%d", reject.DocumentID)
	}

	updated, err := reconcile.ApplyOverride(s.po, *current, newPO)
	if err != nil {
		return internal.Verdict{}, err
	}
	if err := s.db.UpdateVerdict(reject.DocumentID, updated); err != nil {
		return internal.Verdict{}, err
	}
	if err := s.db.ResolveReject(rejectID, *updated.DecidedPOPrimary); err != nil {
		return internal.Verdict{}, err
	}
	return updated, nil
}
