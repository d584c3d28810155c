package pipeline

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"podocs/internal"
	"podocs/internal/config"
	"podocs/internal/intake"
	"podocs/internal/llm"
	"podocs/internal/pdftext"
	"podocs/internal/po"
	"podocs/internal/reconcile"
	"podocs/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
	llm *llm.Client
	po  *po.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{
		db:  db,
		cfg: cfg,
		llm: llm.NewClient(cfg),
		po:  po.NewConfig(po.DefaultFamilies(), po.DefaultExclusionLabels(), po.DefaultSupplierRules(), cfg.AllowLeadingZeroEquiv),
	}
}

type ProcessResult struct {
	BatchID   int
	Documents int
	Accepted  int
	Review    int
}

// region is one document slice of a batch, carrying its page range and the
// already-extracted page texts.
type region struct {
	Range internal.PageRange
	Pages []internal.PageText
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	batch, err := s.db.MustBatchByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessBatch(ctx, batch)
}

func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListBatchesByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedBatches := 0
	processedDocs := 0
	for _, batch := range pending {
		if provider != "" && batch.Provider != provider {
			continue
		}
		res, err := s.ProcessBatch(ctx, batch)
		if err != nil {
			return processedBatches, processedDocs, err
		}
		processedBatches++
		processedDocs += res.Documents
	}
	return processedBatches, processedDocs, nil
}

// ProcessLocalPDF registers a PDF on disk as a local-provider batch and
// processes it immediately.
func (s *ProcessingService) ProcessLocalPDF(ctx context.Context, path string) (ProcessResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{}, err
	}
	hashBytes := sha256.Sum256(content)
	hash := hex.EncodeToString(hashBytes[:])

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	batch, err := s.db.UpsertBatch("local", hash, filepath.Base(path), "", time.Now().UTC().Format(time.RFC3339), hash, abs, "fetched")
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessBatch(ctx, batch)
}

// ProcessBatch splits the batch into document regions, runs both extraction
// pipelines per region and reconciles them into a verdict. Every non-accepted
// verdict also lands a row in the reject queue.
func (s *ProcessingService) ProcessBatch(ctx context.Context, batch internal.BatchRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(batch.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	regions, isDoc, err := s.buildRegions(batch, raw)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.ClearBatchProcessing(batch.ID); err != nil {
		return ProcessResult{}, err
	}

	if !isDoc {
		_ = s.db.UpdateBatchStatus(batch.ID, "skipped")
		_ = s.db.InsertRun(traceID(), batch.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"documents": 0, "accepted": 0, "review": 0})
		return ProcessResult{BatchID: batch.ID}, nil
	}

	resultsA := make([]internal.PipelineResult, len(regions))
	resultsB := make([]internal.PipelineResult, len(regions))
	verdicts := make([]internal.Verdict, len(regions))

	// Regions run across a bounded worker pool; results are indexed so the
	// persistence pass below restores original region order.
	workers := s.cfg.RegionWorkers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range regions {
		wg.Add(1)
		go func(i int, pages []internal.PageText) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			a, b := s.runPipelines(ctx, pages)
			resultsA[i] = a
			resultsB[i] = b
			verdicts[i] = reconcile.Reconcile(s.po, a, b)
		}(i, regions[i].Pages)
	}
	wg.Wait()

	accepted, review := 0, 0
	for i, reg := range regions {
		docID, err := s.db.InsertDocument(batch.ID, i, reg.Range.StartPage, reg.Range.EndPage)
		if err != nil {
			return ProcessResult{}, err
		}
		if err := s.db.InsertResult(docID, "A", resultsA[i]); err != nil {
			return ProcessResult{}, err
		}
		if err := s.db.InsertResult(docID, "B", resultsB[i]); err != nil {
			return ProcessResult{}, err
		}
		if err := s.db.InsertVerdict(docID, verdicts[i]); err != nil {
			return ProcessResult{}, err
		}

		if verdicts[i].Status == internal.StatusAccepted {
			accepted++
			continue
		}
		review++
		reason := ""
		if verdicts[i].RejectReason != nil {
			reason = *verdicts[i].RejectReason
		}
		if err := s.db.InsertReject(docID, string(verdicts[i].MatchStatus), reason); err != nil {
			return ProcessResult{}, err
		}
	}

	if err := s.db.UpdateBatchStatus(batch.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), batch.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"documents": len(regions), "accepted": accepted, "review": review})

	return ProcessResult{BatchID: batch.ID, Documents: len(regions), Accepted: accepted, Review: review}, nil
}

// runPipelines executes A and B concurrently over one region. The pipelines
// share no state, so a plain join is enough.
func (s *ProcessingService) runPipelines(ctx context.Context, pages []internal.PageText) (a, b internal.PipelineResult) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a = RunPipelineA(ctx, s.llm, s.cfg, pages)
	}()
	go func() {
		defer wg.Done()
		b = RunPipelineB(ctx, s.llm, s.cfg, s.po, pages)
	}()
	wg.Wait()
	return a, b
}

// buildRegions turns the batch's raw content into document regions. A .pdf
// rawRef is processed directly; anything else is parsed as a mail message
// whose PDF attachments concatenate into one page sequence. A mail that does
// not look like a document batch returns isDoc=false.
func (s *ProcessingService) buildRegions(batch internal.BatchRow, raw []byte) ([]region, bool, error) {
	if strings.HasSuffix(strings.ToLower(batch.RawRef), ".pdf") {
		pages, err := pdftext.PageTexts(raw)
		if err != nil {
			return nil, false, err
		}
		return regionsFromRanges(pages, pdftext.DetectBoundaries(pages), 0), true, nil
	}

	mail, err := intake.ParseMailRaw(raw)
	if err != nil {
		return nil, false, err
	}
	detect := intake.DetectDocumentMail(firstNonEmpty(mail.Subject, batch.Subject), mail.Text, mail.AttachmentNames)
	if !detect.IsDocumentMail {
		return nil, false, nil
	}

	var regions []region
	offset := 0
	for _, att := range mail.PDFs {
		pages, err := pdftext.PageTexts(att.Content)
		if err != nil {
			// One unreadable attachment should not sink the batch.
			continue
		}
		// Boundaries are detected per attachment, then page numbers continue
		// across attachments so evidence pages stay unambiguous within the
		// batch.
		ranges := pdftext.DetectBoundaries(pages)
		for i := range pages {
			pages[i].Page += offset
		}
		regions = append(regions, regionsFromRanges(pages, ranges, offset)...)
		offset += len(pages)
	}

	if len(regions) == 0 && strings.TrimSpace(mail.Text) != "" {
		body := []internal.PageText{{Page: offset, Text: mail.Text}}
		regions = append(regions, region{
			Range: internal.PageRange{StartPage: offset, EndPage: offset},
			Pages: body,
		})
	}

	return regions, true, nil
}

// regionsFromRanges slices the page sequence by the detected ranges. Ranges
// from DetectBoundaries index into the sequence; offset shifts them into
// batch-global page numbers.
func regionsFromRanges(pages []internal.PageText, ranges []internal.PageRange, offset int) []region {
	out := make([]region, 0, len(ranges))
	for _, rng := range ranges {
		out = append(out, region{
			Range: internal.PageRange{StartPage: rng.StartPage + offset, EndPage: rng.EndPage + offset},
			Pages: pdftext.SlicePages(pages, rng),
		})
	}
	return out
}

// ExportBatch writes the batch's verdict rows to an xlsx workbook.
func (s *ProcessingService) ExportBatch(batchID int, outputPath string) (int, error) {
	rows, err := s.db.GetExportRows(batchID)
	if err != nil {
		return 0, err
	}
	if err := ExportVerdictRowsToXLSX(rows, outputPath); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
