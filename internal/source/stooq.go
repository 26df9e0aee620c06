package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StooqFetcher implements the latest-snapshot half of Fetcher using Stooq's
// daily CSV downloads. It covers symbols that the primary API doesn't carry
// (base metals via futures proxies, e.g. XCU -> HG.F). Historical timeframe
// fetches are not supported.
type StooqFetcher struct {
	BaseURL string
	Tickers map[string]string // symbol code -> stooq ticker
	Client  *http.Client
}

// NewStooqFetcher creates a new fetcher with optional proxy support.
func NewStooqFetcher(tickers map[string]string, proxyURL string) *StooqFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &StooqFetcher{
		BaseURL: "https://stooq.com",
		Tickers: tickers,
		Client: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

// FetchLatest downloads each configured ticker's daily CSV and returns the
// last close per symbol. Date is the most recent exchange date seen across
// tickers.
func (f *StooqFetcher) FetchLatest(ctx context.Context) (*Latest, error) {
	// Stable fetch order regardless of map iteration.
	syms := make([]string, 0, len(f.Tickers))
	for sym := range f.Tickers {
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	latest := &Latest{Rates: make(map[string]float64, len(syms))}
	for _, sym := range syms {
		date, closeVal, err := f.fetchDailyClose(ctx, f.Tickers[sym])
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", sym, f.Tickers[sym], err)
		}
		latest.Rates[sym] = closeVal
		if date > latest.Date {
			latest.Date = date
		}
	}
	return latest, nil
}

// FetchTimeframe is not available from Stooq's CSV endpoint.
func (f *StooqFetcher) FetchTimeframe(_ context.Context, startDate, endDate string) (map[string]map[string]float64, error) {
	return nil, fmt.Errorf("stooq: timeframe %s..%s not supported", startDate, endDate)
}

// fetchDailyClose downloads the daily OHLC CSV for a ticker and returns the
// last row's date and close.
func (f *StooqFetcher) fetchDailyClose(ctx context.Context, ticker string) (string, float64, error) {
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", f.BaseURL, strings.ToLower(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	// Stooq sometimes blocks generic clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MetalPulse/1.0)")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetch csv: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read csv: %w", err)
	}

	return parseDailyCSV(f.Name(), strings.TrimSpace(string(body)))
}

func parseDailyCSV(sourceName, text string) (string, float64, error) {
	if text == "" {
		return "", 0, &ShapeError{Source: sourceName, Detail: "empty response"}
	}
	low := strings.ToLower(text)
	if strings.Contains(low, "<html") || strings.Contains(low, "<!doctype html") {
		return "", 0, &ShapeError{Source: sourceName, Detail: fmt.Sprintf("HTML instead of CSV: %.80s", text)}
	}

	lines := strings.Split(text, "\n")
	header := strings.TrimPrefix(strings.TrimSpace(lines[0]), "\ufeff")
	lowHeader := strings.ToLower(header)
	if !strings.Contains(lowHeader, "date") || !strings.Contains(lowHeader, "close") {
		return "", 0, &ShapeError{Source: sourceName, Detail: fmt.Sprintf("unexpected header: %q", header)}
	}

	delimiter := ','
	if strings.Contains(header, ";") && !strings.Contains(header, ",") {
		delimiter = ';'
	}
	r := csv.NewReader(strings.NewReader(header + "\n" + strings.Join(lines[1:], "\n")))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return "", 0, &ShapeError{Source: sourceName, Detail: "no data rows"}
	}

	dateIdx, closeIdx := -1, -1
	for i, col := range records[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = i
		case "close":
			closeIdx = i
		}
	}
	last := records[len(records)-1]
	if dateIdx < 0 || closeIdx < 0 || dateIdx >= len(last) || closeIdx >= len(last) {
		return "", 0, &ShapeError{Source: sourceName, Detail: "missing date/close columns"}
	}

	date := strings.TrimSpace(last[dateIdx])
	closeVal, err := strconv.ParseFloat(strings.TrimSpace(last[closeIdx]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse close %q: %w", last[closeIdx], err)
	}
	if date == "" {
		return "", 0, &ShapeError{Source: sourceName, Detail: "empty date in last row"}
	}
	return date, closeVal, nil
}
