package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"podocs/internal/config"
	"podocs/internal/intake"
	gmailconnector "podocs/internal/intake/gmail"
	imapconnector "podocs/internal/intake/imap"
	"podocs/internal/listener"
	"podocs/internal/pipeline"
	"podocs/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := intake.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n", *provider, result.Fetched, result.Stored, result.Skipped)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed batch id=%d documents=%d accepted=%d review=%d\n", res.BatchID, res.Documents, res.Accepted, res.Review)
			return
		}
		processedBatches, processedDocs, err := processor.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending batches=%d documents=%d\n", processedBatches, processedDocs)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input batch PDF path")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		processor := pipeline.NewProcessingService(db, cfg)
		res, err := processor.ProcessLocalPDF(context.Background(), *input)
		must(err)
		count, err := processor.ExportBatch(res.BatchID, *output)
		must(err)
		fmt.Printf("run done documents=%d accepted=%d review=%d rows=%d output=%s\n", res.Documents, res.Accepted, res.Review, count, *output)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batchID := fs.Int("batchId", 0, "internal batch id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *batchID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--batchId and --out are required"))
		}
		processor := pipeline.NewProcessingService(db, cfg)
		count, err := processor.ExportBatch(*batchID, *out)
		must(err)
		if count == 0 {
			must(fmt.Errorf("no export rows for batchId=%d", *batchID))
		}
		fmt.Printf("exported %d rows to %s\n", count, *out)
	case "review:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 50, "max entries")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		rejects, err := processor.ListOpenRejects(*limit)
		must(err)
		for _, r := range rejects {
			fmt.Printf("reject id=%d documentId=%d matchStatus=%s reason=%q createdAt=%s\n", r.ID, r.DocumentID, r.MatchStatus, r.Reason, r.CreatedAt)
		}
		fmt.Printf("open rejects: %d\n", len(rejects))
	case "review:resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rejectID := fs.Int("rejectId", 0, "reject queue entry id")
		poValue := fs.String("po", "", "confirmed PO number(s)")
		_ = fs.Parse(os.Args[2:])
		if *rejectID == 0 || strings.TrimSpace(*poValue) == "" {
			must(fmt.Errorf("--rejectId and --po are required"))
		}
		processor := pipeline.NewProcessingService(db, cfg)
		verdict, err := processor.ResolveReject(*rejectID, *poValue)
		must(err)
		fmt.Printf("resolved reject id=%d po=%s status=%s\n", *rejectID, strings.Join(verdict.DecidedPONumbers, ","), verdict.Status)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (intake.MailSource, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: podocs <command>")
	fmt.Println("commands:")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  run --input=./batch.pdf --output=./out/result.xlsx")
	fmt.Println("  export:xlsx --batchId=1 --out=./out/result.xlsx")
	fmt.Println("  review:list [--limit=50]")
	fmt.Println("  review:resolve --rejectId=1 --po=50001234")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
