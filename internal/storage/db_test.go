package storage

import (
	"path/filepath"
	"testing"

	"podocs/internal"
	"podocs/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertBatchIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.UpsertBatch("imap", "<m1@example.com>", "Albarán", "supplier@example.com", "2026-08-01T00:00:00Z", "hash1", "/tmp/raw1.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.UpsertBatch("imap", "<m1@example.com>", "Albarán (updated)", "supplier@example.com", "2026-08-01T00:00:00Z", "hash2", "/tmp/raw2.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a new row: %d vs %d", first.ID, second.ID)
	}
	if second.Hash != "hash2" || second.Subject != "Albarán (updated)" {
		t.Fatalf("upsert did not update fields: %+v", second)
	}

	if err := db.UpdateBatchStatus(first.ID, "processed"); err != nil {
		t.Fatal(err)
	}
	rows, err := db.ListBatchesByStatus("processed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != first.ID {
		t.Fatalf("unexpected list: %+v", rows)
	}
}

func TestVerdictRoundTrip(t *testing.T) {
	db := openTestDB(t)

	batch, err := db.UpsertBatch("local", "m1", "batch.pdf", "", "2026-08-01T00:00:00Z", "h", "/tmp/batch.pdf", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	docID, err := db.InsertDocument(batch.ID, 0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	resA := internal.PipelineResult{
		POPrimary:  util.StringPtr("50001234"),
		PONumbers:  []string{"50001234"},
		Confidence: 0.9,
		Method:     internal.MethodLLM,
		Evidence:   []internal.Evidence{{Page: 0, Snippet: "Su Pedido: 50001234"}},
	}
	resB := internal.PipelineResult{
		POPrimary:  util.StringPtr("80005678"),
		PONumbers:  []string{"80005678"},
		Confidence: 0.85,
		Method:     internal.MethodRegex,
	}
	if err := db.InsertResult(docID, "A", resA); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertResult(docID, "B", resB); err != nil {
		t.Fatal(err)
	}

	v := internal.Verdict{
		MatchStatus:  internal.Mismatch,
		Status:       internal.StatusReview,
		NextAction:   "manual reconciliation required",
		RejectReason: util.StringPtr("pipelines disagree completely"),
	}
	if err := db.InsertVerdict(docID, v); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetVerdict(int(docID))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.MatchStatus != internal.Mismatch || got.Status != internal.StatusReview {
		t.Fatalf("unexpected verdict: %+v", got)
	}
	if got.RejectReason == nil || *got.RejectReason != "pipelines disagree completely" {
		t.Fatalf("unexpected reason: %+v", got.RejectReason)
	}

	// Override path: update to ACCEPTED.
	v.Status = internal.StatusAccepted
	v.NextAction = "none — manually confirmed"
	v.RejectReason = nil
	v.DecidedPONumbers = []string{"50001234"}
	v.DecidedPOPrimary = util.StringPtr("50001234")
	if err := db.UpdateVerdict(int(docID), v); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetVerdict(int(docID))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != internal.StatusAccepted || got.RejectReason != nil || len(got.DecidedPONumbers) != 1 {
		t.Fatalf("update lost fields: %+v", got)
	}

	rows, err := db.GetExportRows(batch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 export row, got %d", len(rows))
	}
	row := rows[0]
	if row.POPrimaryA == nil || *row.POPrimaryA != "50001234" || row.MethodB != "REGEX" {
		t.Fatalf("unexpected export row: %+v", row)
	}
	if row.Status != "ACCEPTED" {
		t.Fatalf("unexpected status: %q", row.Status)
	}
}

func TestRejectQueue(t *testing.T) {
	db := openTestDB(t)

	batch, err := db.UpsertBatch("local", "m1", "batch.pdf", "", "2026-08-01T00:00:00Z", "h", "/tmp/batch.pdf", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	docID, err := db.InsertDocument(batch.ID, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InsertReject(docID, "MISMATCH", "pipelines disagree completely"); err != nil {
		t.Fatal(err)
	}

	open, err := db.ListRejects(false, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].Resolved {
		t.Fatalf("unexpected open rejects: %+v", open)
	}

	if err := db.ResolveReject(open[0].ID, "50001234"); err != nil {
		t.Fatal(err)
	}
	open, err = db.ListRejects(false, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Fatalf("reject still open: %+v", open)
	}
	resolved, err := db.ListRejects(true, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 1 || resolved[0].ResolvedPO == nil || *resolved[0].ResolvedPO != "50001234" {
		t.Fatalf("unexpected resolved rejects: %+v", resolved)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetMetadata("missing"); err != nil || v != nil {
		t.Fatalf("unexpected: %v %v", v, err)
	}
	if err := db.SetMetadata("lastRun", "2026-08-28"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("lastRun", "2026-08-29"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("lastRun")
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != "2026-08-29" {
		t.Fatalf("unexpected value: %v", v)
	}
}
