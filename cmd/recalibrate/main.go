package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"leadscore/internal/appconfig"
	"leadscore/internal/jurisdiction"
)

// recalibrate recomputes jurisdiction aggregates and shrinkage
// modifiers from the case corpus and persists them.
func main() {
	configPath := flag.String("config", "", "Path to yaml config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := jurisdiction.OpenStore(cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	aggregator := jurisdiction.NewAggregator(jurisdiction.NewWeighting(cfg.Jurisdiction))
	calibrator := jurisdiction.NewCalibrator(cfg.Jurisdiction)
	recalibrator := jurisdiction.NewRecalibrator(store, aggregator, calibrator)

	results, err := recalibrator.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%-30s %12s %12s %10s\n", "JURISDICTION", "SHRUNK EST", "CONFIDENCE", "MODIFIER")
	for _, r := range results {
		fmt.Printf("%-30s %12.2f %12.3f %10.3f\n", r.Jurisdiction, r.ShrunkEstimate, r.ShrinkageConfidence, r.Modifier)
	}
	log.Printf("recalibrated %d jurisdictions into %s", len(results), cfg.SQLitePath)
}
