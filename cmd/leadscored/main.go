package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leadscore/internal/appconfig"
	"leadscore/internal/httpapi"
	"leadscore/internal/jurisdiction"
	"leadscore/internal/leadscoring"
	"leadscore/internal/vectorsearch"
)

func main() {
	configPath := flag.String("config", "", "Path to yaml config file")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	store, err := jurisdiction.OpenStore(cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	calibrator := jurisdiction.NewCalibrator(cfg.Jurisdiction)
	if persisted, err := store.LoadResults(); err != nil {
		log.Printf("leadscored: no persisted calibration loaded: %v", err)
	} else if len(persisted) > 0 {
		calibrator.Replace(persisted)
		log.Printf("leadscored: loaded %d jurisdiction modifiers from store", len(persisted))
	}

	searcher, err := vectorsearch.NewWeaviateSearcher(cfg.Weaviate.Scheme, cfg.Weaviate.Host, cfg.Weaviate.ClassName)
	if err != nil {
		log.Fatal(err)
	}

	model, err := leadscoring.NewAnthropicModelFromEnv(cfg.Scoring.ModelTimeout)
	if err != nil {
		log.Fatal(err)
	}

	summarizer := leadscoring.NewSummarizer(model)
	tools := leadscoring.NewRegistry(
		leadscoring.NewFileContextTool(leadscoring.NewLocalFileRetriever(cfg.CaseFilesDir), summarizer),
		leadscoring.NewVectorContextTool(searcher, 0),
	)

	scorer, err := leadscoring.NewScorer(model, tools, leadscoring.NewAdjuster(calibrator), cfg.Scoring)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TranscriptDir != "" {
		sink, err := leadscoring.NewJSONLTranscript(cfg.TranscriptDir)
		if err != nil {
			log.Fatal(err)
		}
		scorer = scorer.WithTranscript(sink)
	}

	aggregator := jurisdiction.NewAggregator(jurisdiction.NewWeighting(cfg.Jurisdiction))
	recalibrator := jurisdiction.NewRecalibrator(store, aggregator, calibrator)

	handler := httpapi.NewServer(scorer, searcher, recalibrator, calibrator, store)
	server := &http.Server{Addr: cfg.ListenAddr, Handler: handler}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("leadscored listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
