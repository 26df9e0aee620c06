package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MetalPulse/internal/model"
)

// Composite merges latest snapshots from several sources into one, dated
// today (UTC). Each member contributes the symbols it serves; later members
// win on overlap. Any member failure fails the whole fetch, so a daily
// update never commits a half-fetched snapshot.
//
// Historical timeframe fetches go to the primary (first) source only.
type Composite struct {
	Fetchers []Fetcher
}

func (c *Composite) Name() string {
	names := make([]string, len(c.Fetchers))
	for i, f := range c.Fetchers {
		names[i] = f.Name()
	}
	return strings.Join(names, "+")
}

func (c *Composite) FetchLatest(ctx context.Context) (*Latest, error) {
	merged := &Latest{
		Date:  time.Now().UTC().Format(model.DateLayout),
		Rates: make(map[string]float64),
	}
	for _, f := range c.Fetchers {
		l, err := f.FetchLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s latest: %w", f.Name(), err)
		}
		if merged.Base == "" {
			merged.Base = l.Base
		}
		for sym, v := range l.Rates {
			merged.Rates[sym] = v
		}
	}
	return merged, nil
}

func (c *Composite) FetchTimeframe(ctx context.Context, startDate, endDate string) (map[string]map[string]float64, error) {
	if len(c.Fetchers) == 0 {
		return nil, fmt.Errorf("composite: no fetchers configured")
	}
	return c.Fetchers[0].FetchTimeframe(ctx, startDate, endDate)
}
