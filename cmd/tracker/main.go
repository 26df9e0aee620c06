package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"MetalPulse/internal/api"
	"MetalPulse/internal/config"
	"MetalPulse/internal/recorder"
	"MetalPulse/internal/scheduler"
	"MetalPulse/internal/source"
	"MetalPulse/internal/updater"

	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MetalPulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Optional rotating log file
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			log.Fatalf("[FATAL] create log dir: %v", err)
		}
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		})
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Data.SeriesFile), 0o755); err != nil {
		log.Fatalf("[FATAL] create data dir: %v", err)
	}

	// Init fetchers: REST API for precious metals, Stooq CSV closes for the
	// futures-proxied base metals, merged into one daily snapshot.
	fetchers := []source.Fetcher{
		source.NewMetalpriceFetcher(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Base,
			cfg.MetalpriceSymbols(), cfg.Source.ShapeKey, cfg.Proxy),
	}
	if len(cfg.Source.StooqTickers) > 0 {
		fetchers = append(fetchers, source.NewStooqFetcher(cfg.Source.StooqTickers, cfg.Proxy))
	}
	fetcher := &source.Composite{Fetchers: fetchers}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init recorder
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

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init daily updater and scheduler
	upd := &updater.Updater{
		Fetcher:    fetcher,
		Base:       cfg.Base,
		Symbols:    cfg.SymbolCodes(),
		SeriesPath: cfg.Data.SeriesFile,
		MetaPath:   cfg.Data.MetaFile,
		Force:      os.Getenv("FORCE_UPDATE") == "1",
		Recorder:   rec,
	}
	sched := scheduler.NewScheduler(ctx, upd)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Chart API
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(&api.Server{
			SeriesPath: cfg.Data.SeriesFile,
			MetaPath:   cfg.Data.MetaFile,
			Names:      cfg.SymbolNames(),
		}),
	}
	go func() {
		log.Printf("[INFO] chart api listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] api server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily update now")
		go sched.RunDailyNow()
	}

	log.Println("[INFO] MetalPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] api shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] MetalPulse stopped")
}
