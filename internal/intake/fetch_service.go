package intake

import (
	"strings"

	"podocs/internal"
	"podocs/internal/storage"
)

// MailSource is a provider-specific inbox reader. Implementations hand back
// the raw RFC 5322 bytes so detection and extraction both work off the same
// stored artifact.
type MailSource interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}

type FetchService struct {
	source MailSource
	store  *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawMailDir string, source MailSource) *FetchService {
	return &FetchService{
		source: source,
		store:  NewMailStoreService(db, rawMailDir),
	}
}

// FetchAndStore pulls messages from the source and stores the ones that look
// like supplier document batches. Newsletters and other inbox noise are
// screened out before they ever become batch rows. A message whose MIME
// structure cannot be parsed is stored anyway rather than silently dropped.
func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.source.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if parsed, err := ParseMailRaw(msg.Raw); err == nil {
			subject := parsed.Subject
			if strings.TrimSpace(subject) == "" {
				subject = msg.Subject
			}
			if !DetectDocumentMail(subject, parsed.Text, parsed.AttachmentNames).IsDocumentMail {
				res.Skipped++
				continue
			}
		}
		if _, err := s.store.Store(msg); err != nil {
			return res, err
		}
		res.Stored++
	}

	return res, nil
}
