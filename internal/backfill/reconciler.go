package backfill

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"MetalPulse/internal/model"
	"MetalPulse/internal/recorder"
	"MetalPulse/internal/series"
	"MetalPulse/internal/source"
)

// Chunk is one bounded date span of a backfill window, inclusive on both ends.
type Chunk struct {
	Start string
	End   string
}

// Chunks partitions [start, end] (inclusive ISO dates) into contiguous,
// non-overlapping chunks of at most maxDays calendar days. Boundaries are
// adjacent: the next chunk starts the day after the previous one ends, so
// the window is covered with no gaps and no overlaps.
func Chunks(start, end string, maxDays int) ([]Chunk, error) {
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", end, err)
	}
	if e.Before(s) {
		return nil, fmt.Errorf("end date %s before start date %s", end, start)
	}
	if maxDays < 1 {
		return nil, fmt.Errorf("chunk size must be at least 1 day, got %d", maxDays)
	}

	var chunks []Chunk
	for cur := s; !cur.After(e); {
		chunkEnd := cur.AddDate(0, 0, maxDays-1)
		if chunkEnd.After(e) {
			chunkEnd = e
		}
		chunks = append(chunks, Chunk{
			Start: cur.Format(model.DateLayout),
			End:   chunkEnd.Format(model.DateLayout),
		})
		cur = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks, nil
}

// Reconciler performs a chunked historical backfill into the series store.
type Reconciler struct {
	Fetcher    source.Fetcher
	Base       string
	Symbols    []string
	MaxDays    int
	SeriesPath string
	MetaPath   string
	Recorder   recorder.Recorder
}

// Run fetches the whole [start, end] window chunk by chunk, then merges the
// accumulated rows into the store with a single merge and a single save.
// Any chunk fetch failure aborts the run before anything is written: a store
// with unexplained date gaps is worse than no backfill at all.
func (r *Reconciler) Run(ctx context.Context, start, end string) error {
	began := time.Now()

	chunks, err := Chunks(start, end, r.MaxDays)
	if err != nil {
		return err
	}

	var incoming []model.Row
	for i, c := range chunks {
		rates, err := r.Fetcher.FetchTimeframe(ctx, c.Start, c.End)
		if err != nil {
			return fmt.Errorf("chunk %s..%s: %w", c.Start, c.End, err)
		}
		rows := buildRows(rates, r.Symbols)
		incoming = append(incoming, rows...)
		log.Printf("[INFO] backfill chunk %d/%d %s -> %s: %d rows", i+1, len(chunks), c.Start, c.End, len(rows))
	}

	s, err := series.Load(r.SeriesPath)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	s.Base = r.Base
	s.Symbols = r.Symbols
	s.Rows = series.MergeRows(s.Rows, incoming)
	if err := series.Save(r.SeriesPath, s); err != nil {
		return fmt.Errorf("save series: %w", err)
	}

	meta := &model.Meta{
		Base:    r.Base,
		Symbols: r.Symbols,
		Note:    fmt.Sprintf("backfilled %s..%s in %d timeframe calls", start, end, len(chunks)),
	}
	if err := series.SaveMeta(r.MetaPath, meta); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := r.Recorder.RecordBackfillRun(&recorder.BackfillRunEvent{
		StartDate:  start,
		EndDate:    end,
		Chunks:     len(chunks),
		RowsMerged: len(incoming),
		Duration:   time.Since(began),
	}); err != nil {
		log.Printf("[ERROR] record backfill run: %v", err)
	}

	log.Printf("[INFO] backfill complete: %d rows merged, store now has %d rows", len(incoming), len(s.Rows))
	return nil
}

// buildRows converts a date→rates mapping into rows, keeping only finite
// values of configured symbols. Dates left with zero valid symbols are
// omitted entirely rather than stored as empty rows.
func buildRows(rates map[string]map[string]float64, symbols []string) []model.Row {
	rows := make([]model.Row, 0, len(rates))
	for date, perDay := range rates {
		if date == "" {
			continue
		}
		row := model.Row{Date: date, Rates: make(map[string]float64, len(symbols))}
		for _, sym := range symbols {
			v, ok := perDay[sym]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			row.Rates[sym] = v
		}
		if len(row.Rates) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
