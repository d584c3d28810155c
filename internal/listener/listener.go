package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"podocs/internal/config"
	"podocs/internal/intake"
	gmailconnector "podocs/internal/intake/gmail"
	imapconnector "podocs/internal/intake/imap"
	"podocs/internal/pipeline"
	"podocs/internal/storage"
)

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := intake.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedBatches, processedDocs, err := processor.ProcessPending(ctx, s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportProcessed(processor, provider); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d skipped=%d batches=%d documents=%d\n", provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Skipped, processedBatches, processedDocs)
	return nil
}

func (s *Service) exportProcessed(processor *pipeline.ProcessingService, provider string) error {
	batches, err := s.db.ListBatchesByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		if batch.Provider != provider {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", batch.ID, sanitizeMessageID(batch.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		count, err := processor.ExportBatch(batch.ID, outputPath)
		if err != nil {
			return err
		}
		if count == 0 {
			continue
		}
		_ = s.db.UpdateBatchStatus(batch.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (intake.MailSource, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
