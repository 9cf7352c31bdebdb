package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"leadscore/internal/appconfig"
	"leadscore/internal/jurisdiction"
	"leadscore/internal/leadscoring"
	"leadscore/internal/report"
	"leadscore/internal/vectorsearch"
)

// score-lead runs one scoring session from the command line: lead text
// from a file or stdin, report markdown to stdout, optional PDF.
func main() {
	configPath := flag.String("config", "", "Path to yaml config file")
	leadFile := flag.String("lead", "", "File with the lead description (default stdin)")
	leadID := flag.String("lead-id", "", "Lead ID (generated when empty)")
	pdfOut := flag.String("pdf", "", "Write a PDF report to this path")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	description, err := readLead(*leadFile)
	if err != nil {
		log.Fatal(err)
	}
	id := *leadID
	if id == "" {
		id = uuid.NewString()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := jurisdiction.OpenStore(cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	calibrator := jurisdiction.NewCalibrator(cfg.Jurisdiction)
	if persisted, err := store.LoadResults(); err == nil && len(persisted) > 0 {
		calibrator.Replace(persisted)
	}

	searcher, err := vectorsearch.NewWeaviateSearcher(cfg.Weaviate.Scheme, cfg.Weaviate.Host, cfg.Weaviate.ClassName)
	if err != nil {
		log.Fatal(err)
	}

	model, err := leadscoring.NewAnthropicModelFromEnv(cfg.Scoring.ModelTimeout)
	if err != nil {
		log.Fatal(err)
	}
	tools := leadscoring.NewRegistry(
		leadscoring.NewFileContextTool(leadscoring.NewLocalFileRetriever(cfg.CaseFilesDir), leadscoring.NewSummarizer(model)),
		leadscoring.NewVectorContextTool(searcher, 0),
	)
	scorer, err := leadscoring.NewScorer(model, tools, leadscoring.NewAdjuster(calibrator), cfg.Scoring)
	if err != nil {
		log.Fatal(err)
	}

	matches, err := searcher.Search(ctx, description, 5)
	if err != nil {
		log.Printf("score-lead: historical search failed, scoring without context: %v", err)
	}
	historicalContext := vectorsearch.FormatContext(matches)

	lead := leadscoring.Lead{ID: id, Description: description}
	result := scorer.Score(ctx, lead, historicalContext)

	md := report.BuildMarkdown(result, lead)
	fmt.Print(md)

	if *pdfOut != "" {
		pdf, err := report.NewChromiumPDFRenderer().Render(ctx, md)
		if err != nil {
			log.Fatalf("pdf render: %v", err)
		}
		if err := os.WriteFile(*pdfOut, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		log.Printf("wrote %s", *pdfOut)
	}

	if result.StopReason == leadscoring.StopModelError {
		os.Exit(1)
	}
}

func readLead(path string) (string, error) {
	var blob []byte
	var err error
	if path == "" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read lead description: %w", err)
	}
	description := strings.TrimSpace(string(blob))
	if description == "" {
		return "", fmt.Errorf("lead description is empty")
	}
	return description, nil
}
