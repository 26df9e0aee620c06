package updater

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"MetalPulse/internal/model"
	"MetalPulse/internal/recorder"
	"MetalPulse/internal/series"
	"MetalPulse/internal/source"
)

// ValidationError reports a fetched rate that cannot be stored. It aborts
// the daily update; no row is written.
type ValidationError struct {
	Symbol  string
	Value   float64
	Missing bool
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("rate for %s missing from latest response", e.Symbol)
	}
	return fmt.Sprintf("invalid rate for %s: %v", e.Symbol, e.Value)
}

// Updater performs the daily single-row append-or-replace reflecting the
// latest snapshot.
type Updater struct {
	Fetcher    source.Fetcher
	Base       string
	Symbols    []string
	SeriesPath string
	MetaPath   string
	Force      bool // update even if meta says today is already done
	Recorder   recorder.Recorder
	Now        func() time.Time // defaults to time.Now
}

func (u *Updater) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// Run fetches the latest snapshot, validates it against the configured
// symbol set, and upserts today's row. Re-running within the same UTC day
// replaces the row whole, so reruns are idempotent at the row level. On any
// fetch or validation error nothing is written.
func (u *Updater) Run(ctx context.Context) error {
	today := u.now().UTC().Format(model.DateLayout)

	meta, err := series.LoadMeta(u.MetaPath)
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	if !u.Force && strings.HasPrefix(meta.LastUpdatedUTC, today) {
		log.Printf("[INFO] already updated today (%s), skipping", today)
		return nil
	}

	latest, err := u.Fetcher.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest: %w", err)
	}

	rates, err := validateRates(latest.Rates, u.Symbols)
	if err != nil {
		return err
	}

	s, err := series.Load(u.SeriesPath)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	s.Base = u.Base
	s.Symbols = u.Symbols
	series.AppendOrReplace(s, model.Row{Date: today, Rates: rates})
	if err := series.Save(u.SeriesPath, s); err != nil {
		return fmt.Errorf("save series: %w", err)
	}

	newMeta := &model.Meta{
		Base:    u.Base,
		Symbols: u.Symbols,
		Note:    fmt.Sprintf("daily update via %s (snapshot %s)", u.Fetcher.Name(), latest.Date),
	}
	if err := series.SaveMeta(u.MetaPath, newMeta); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := u.Recorder.RecordDailyUpdate(&recorder.DailyUpdateEvent{
		Date:       today,
		SourceDate: latest.Date,
		Base:       u.Base,
		Source:     u.Fetcher.Name(),
		NumRates:   len(rates),
	}); err != nil {
		log.Printf("[ERROR] record daily update: %v", err)
	}

	log.Printf("[INFO] daily update: wrote %d rates for %s", len(rates), today)
	return nil
}

// validateRates requires every configured symbol to carry a finite, positive
// rate. Symbols in the response that aren't configured are ignored.
func validateRates(rates map[string]float64, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		v, ok := rates[sym]
		if !ok {
			return nil, &ValidationError{Symbol: sym, Missing: true}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, &ValidationError{Symbol: sym, Value: v}
		}
		out[sym] = v
	}
	return out, nil
}
