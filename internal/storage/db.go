package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"podocs/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  batchId INTEGER NOT NULL,
  docIndex INTEGER NOT NULL,
  pageStart INTEGER NOT NULL,
  pageEnd INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(batchId, docIndex),
  FOREIGN KEY(batchId) REFERENCES batches(id)
);

CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  pipeline TEXT NOT NULL,
  poPrimary TEXT,
  poSecondary TEXT,
  poNumbersJson TEXT NOT NULL,
  supplier TEXT,
  confidence REAL NOT NULL,
  method TEXT NOT NULL,
  keywordsJson TEXT NOT NULL,
  evidenceJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(documentId, pipeline),
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS verdicts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL UNIQUE,
  matchStatus TEXT NOT NULL,
  decidedPoPrimary TEXT,
  decidedPoSecondary TEXT,
  decidedPoNumbersJson TEXT NOT NULL,
  status TEXT NOT NULL,
  nextAction TEXT NOT NULL,
  rejectReason TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS rejects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  matchStatus TEXT NOT NULL,
  reason TEXT,
  resolved INTEGER NOT NULL DEFAULT 0,
  resolvedPo TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_rejects_resolved ON rejects(resolved);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  batchId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(batchId) REFERENCES batches(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertBatch(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.BatchRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO batches (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.BatchRow{}, err
	}

	row, err := d.GetBatchByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.BatchRow{}, err
	}
	if row == nil {
		return internal.BatchRow{}, errors.New("failed to upsert batch")
	}
	return *row, nil
}

func (d *DB) GetBatchByProviderMessageID(provider, messageID string) (*internal.BatchRow, error) {
	var row internal.BatchRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM batches WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetBatchByID(id int) (*internal.BatchRow, error) {
	var row internal.BatchRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM batches WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustBatchByProviderMessageID(provider, messageID string) (internal.BatchRow, error) {
	row, err := d.GetBatchByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.BatchRow{}, err
	}
	if row == nil {
		return internal.BatchRow{}, fmt.Errorf("batch not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListBatchesByStatus(status string, limit int) ([]internal.BatchRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM batches WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.BatchRow
	for rows.Next() {
		var row internal.BatchRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateBatchStatus(batchID int, status string) error {
	_, err := d.conn.Exec(`UPDATE batches SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, batchID)
	return err
}

// ClearBatchProcessing drops every document, result, verdict and reject
// derived from a batch so reprocessing starts clean.
func (d *DB) ClearBatchProcessing(batchID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id FROM documents WHERE batchId = ?`, batchID)
	if err != nil {
		return err
	}
	var docIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		docIDs = append(docIDs, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range docIDs {
		if _, err := tx.Exec(`DELETE FROM rejects WHERE documentId = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM verdicts WHERE documentId = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM results WHERE documentId = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertDocument(batchID, docIndex, pageStart, pageEnd int) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO documents (batchId, docIndex, pageStart, pageEnd)
VALUES (?, ?, ?, ?)
`, batchID, docIndex, pageStart, pageEnd)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) GetDocument(documentID int) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, batchId, docIndex, pageStart, pageEnd FROM documents WHERE id = ?
`, documentID).Scan(&row.ID, &row.BatchID, &row.DocIndex, &row.PageStart, &row.PageEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) InsertResult(documentID int64, pipeline string, result internal.PipelineResult) error {
	numbersJSON, _ := json.Marshal(result.PONumbers)
	keywordsJSON, _ := json.Marshal(result.FoundKeywords)
	evidenceJSON, _ := json.Marshal(result.Evidence)

	_, err := d.conn.Exec(`
INSERT INTO results (documentId, pipeline, poPrimary, poSecondary, poNumbersJson, supplier, confidence, method, keywordsJson, evidenceJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, documentID, pipeline, result.POPrimary, result.POSecondary, string(numbersJSON), result.Supplier, result.Confidence, string(result.Method), string(keywordsJSON), string(evidenceJSON))
	return err
}

func (d *DB) InsertVerdict(documentID int64, v internal.Verdict) error {
	numbersJSON, _ := json.Marshal(v.DecidedPONumbers)
	_, err := d.conn.Exec(`
INSERT INTO verdicts (documentId, matchStatus, decidedPoPrimary, decidedPoSecondary, decidedPoNumbersJson, status, nextAction, rejectReason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, documentID, string(v.MatchStatus), v.DecidedPOPrimary, v.DecidedPOSecondary, string(numbersJSON), string(v.Status), v.NextAction, v.RejectReason)
	return err
}

func (d *DB) UpdateVerdict(documentID int, v internal.Verdict) error {
	numbersJSON, _ := json.Marshal(v.DecidedPONumbers)
	_, err := d.conn.Exec(`
UPDATE verdicts SET
  matchStatus = ?,
  decidedPoPrimary = ?,
  decidedPoSecondary = ?,
  decidedPoNumbersJson = ?,
  status = ?,
  nextAction = ?,
  rejectReason = ?,
  updatedAt = CURRENT_TIMESTAMP
WHERE documentId = ?
`, string(v.MatchStatus), v.DecidedPOPrimary, v.DecidedPOSecondary, string(numbersJSON), string(v.Status), v.NextAction, v.RejectReason, documentID)
	return err
}

func (d *DB) GetVerdict(documentID int) (*internal.Verdict, error) {
	var v internal.Verdict
	var numbersJSON string
	err := d.conn.QueryRow(`
SELECT matchStatus, decidedPoPrimary, decidedPoSecondary, decidedPoNumbersJson, status, nextAction, rejectReason
FROM verdicts WHERE documentId = ?
`, documentID).Scan(&v.MatchStatus, &v.DecidedPOPrimary, &v.DecidedPOSecondary, &numbersJSON, &v.Status, &v.NextAction, &v.RejectReason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(numbersJSON), &v.DecidedPONumbers)
	return &v, nil
}

func (d *DB) InsertReject(documentID int64, matchStatus, reason string) error {
	_, err := d.conn.Exec(`
INSERT INTO rejects (documentId, matchStatus, reason) VALUES (?, ?, ?)
`, documentID, matchStatus, reason)
	return err
}

func (d *DB) GetReject(rejectID int) (*internal.RejectRow, error) {
	var row internal.RejectRow
	var resolved int
	err := d.conn.QueryRow(`
SELECT id, documentId, matchStatus, reason, resolved, resolvedPo, createdAt, updatedAt
FROM rejects WHERE id = ?
`, rejectID).Scan(&row.ID, &row.DocumentID, &row.MatchStatus, &row.Reason, &resolved, &row.ResolvedPO, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Resolved = resolved != 0
	return &row, nil
}

func (d *DB) ListRejects(resolved bool, limit int) ([]internal.RejectRow, error) {
	flag := 0
	if resolved {
		flag = 1
	}
	rows, err := d.conn.Query(`
SELECT id, documentId, matchStatus, reason, resolved, resolvedPo, createdAt, updatedAt
FROM rejects WHERE resolved = ? ORDER BY createdAt ASC LIMIT ?
`, flag, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RejectRow
	for rows.Next() {
		var row internal.RejectRow
		var resolvedFlag int
		if err := rows.Scan(&row.ID, &row.DocumentID, &row.MatchStatus, &row.Reason, &resolvedFlag, &row.ResolvedPO, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.Resolved = resolvedFlag != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) ResolveReject(rejectID int, resolvedPO string) error {
	_, err := d.conn.Exec(`
UPDATE rejects SET resolved = 1, resolvedPo = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, resolvedPO, rejectID)
	return err
}

func (d *DB) InsertRun(traceID string, batchID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, batchId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, batchID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// GetExportRows flattens a batch's documents, both pipeline results and the
// verdict into export rows, in original region order.
func (d *DB) GetExportRows(batchID int) ([]internal.VerdictExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  doc.docIndex,
  doc.pageStart,
  doc.pageEnd,
  ra.supplier, ra.poPrimary, ra.poNumbersJson, ra.confidence, ra.method,
  rb.supplier, rb.poPrimary, rb.poNumbersJson, rb.confidence, rb.method,
  v.matchStatus,
  v.decidedPoPrimary,
  v.decidedPoNumbersJson,
  v.status,
  v.nextAction,
  v.rejectReason
FROM documents doc
JOIN verdicts v ON v.documentId = doc.id
LEFT JOIN results ra ON ra.documentId = doc.id AND ra.pipeline = 'A'
LEFT JOIN results rb ON rb.documentId = doc.id AND rb.pipeline = 'B'
WHERE doc.batchId = ?
ORDER BY doc.docIndex ASC
`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.VerdictExportRow
	for rows.Next() {
		var row internal.VerdictExportRow
		var numbersA, numbersB, decided sql.NullString
		var confA, confB sql.NullFloat64
		var methodA, methodB sql.NullString
		if err := rows.Scan(
			&row.DocIndex, &row.PageStart, &row.PageEnd,
			&row.SupplierA, &row.POPrimaryA, &numbersA, &confA, &methodA,
			&row.SupplierB, &row.POPrimaryB, &numbersB, &confB, &methodB,
			&row.MatchStatus, &row.DecidedPO, &decided, &row.Status, &row.NextAction, &row.Reason,
		); err != nil {
			return nil, err
		}
		if numbersA.Valid {
			_ = json.Unmarshal([]byte(numbersA.String), &row.PONumbersA)
		}
		if numbersB.Valid {
			_ = json.Unmarshal([]byte(numbersB.String), &row.PONumbersB)
		}
		if decided.Valid {
			_ = json.Unmarshal([]byte(decided.String), &row.DecidedSet)
		}
		row.ConfidenceA = confA.Float64
		row.ConfidenceB = confB.Float64
		row.MethodA = methodA.String
		row.MethodB = methodB.String
		out = append(out, row)
	}

	return out, rows.Err()
}

// DocumentIDsForBatch returns document ids in region order.
func (d *DB) DocumentIDsForBatch(batchID int) ([]int, error) {
	rows, err := d.conn.Query(`SELECT id FROM documents WHERE batchId = ? ORDER BY docIndex ASC`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
