package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"MetalPulse/internal/backfill"
	"MetalPulse/internal/config"
	"MetalPulse/internal/model"
	"MetalPulse/internal/recorder"
	"MetalPulse/internal/source"
)

// One-time bulk historical load. Historical data comes from the primary REST
// source only; Stooq has no timeframe endpoint.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	start := flag.String("start", "", "start date (YYYY-MM-DD); default now minus configured backfill years")
	end := flag.String("end", "", "end date (YYYY-MM-DD); default today (UTC)")
	chunkDays := flag.Int("chunk", 0, "max days per timeframe request; default from config")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	now := time.Now().UTC()
	if *end == "" {
		*end = now.Format(model.DateLayout)
	}
	if *start == "" {
		*start = now.AddDate(-cfg.Backfill.Years, 0, 0).Format(model.DateLayout)
	}
	if *chunkDays == 0 {
		*chunkDays = cfg.Backfill.ChunkDays
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Data.SeriesFile), 0o755); err != nil {
		log.Fatalf("[FATAL] create data dir: %v", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	r := &backfill.Reconciler{
		Fetcher: source.NewMetalpriceFetcher(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Base,
			cfg.SymbolCodes(), cfg.Source.ShapeKey, cfg.Proxy),
		Base:       cfg.Base,
		Symbols:    cfg.SymbolCodes(),
		MaxDays:    *chunkDays,
		SeriesPath: cfg.Data.SeriesFile,
		MetaPath:   cfg.Data.MetaFile,
		Recorder:   rec,
	}

	log.Printf("[INFO] backfilling %s -> %s (chunks of %d days)", *start, *end, *chunkDays)
	if err := r.Run(context.Background(), *start, *end); err != nil {
		log.Fatalf("[FATAL] backfill: %v", err)
	}
}
