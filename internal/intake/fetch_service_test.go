package intake

import (
	"path/filepath"
	"testing"

	"podocs/internal"
	"podocs/internal/storage"
)

type staticSource struct {
	messages []internal.FetchedMailMessage
}

func (s *staticSource) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	return s.messages, nil
}

func TestFetchAndStoreScreensNonDocumentMail(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	docMail := []byte("From: supplier@example.com\r\n" +
		"Subject: Factura y albaran agosto\r\n" +
		"Message-ID: <doc-1@example.com>\r\n" +
		"\r\n" +
		"Su Pedido: 50001234\r\n")
	newsletter := []byte("From: news@example.com\r\n" +
		"Subject: Weekly newsletter\r\n" +
		"Message-ID: <news-1@example.com>\r\n" +
		"\r\n" +
		"Hello world\r\n")

	source := &staticSource{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<doc-1@example.com>", Subject: "Factura y albaran agosto", From: "supplier@example.com", ReceivedAt: "2026-08-28T00:00:00Z", Raw: docMail},
		{Provider: "imap", MessageID: "<news-1@example.com>", Subject: "Weekly newsletter", From: "news@example.com", ReceivedAt: "2026-08-28T00:00:00Z", Raw: newsletter},
	}}

	res, err := NewFetchService(db, filepath.Join(tmp, "raw"), source).FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fetched != 2 || res.Stored != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	batches, err := db.ListBatchesByStatus("fetched", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || batches[0].MessageID != "<doc-1@example.com>" {
		t.Fatalf("unexpected batches: %+v", batches)
	}
}
