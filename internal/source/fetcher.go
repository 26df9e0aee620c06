package source

import (
	"context"
	"fmt"
)

// Latest is a point-in-time rate snapshot from an external source. Date is
// the source's own snapshot date ("YYYY-MM-DD", UTC).
type Latest struct {
	Base  string
	Date  string
	Rates map[string]float64
}

// Fetcher defines the interface for fetching commodity price data. The
// pipeline calls fetchers sequentially, never concurrently.
type Fetcher interface {
	FetchLatest(ctx context.Context) (*Latest, error)
	FetchTimeframe(ctx context.Context, startDate, endDate string) (map[string]map[string]float64, error)
	Name() string
}

// ShapeError reports an external response missing the expected rates
// structure. It aborts the enclosing operation; nothing is written.
type ShapeError struct {
	Source string
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %s", e.Source, e.Detail)
}
