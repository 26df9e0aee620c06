package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MetalPulse/internal/model"
)

// MetalpriceFetcher implements Fetcher against the MetalpriceAPI REST
// endpoints (latest and timeframe).
type MetalpriceFetcher struct {
	BaseURL  string
	APIKey   string
	Base     string
	Symbols  []string
	ShapeKey string // top-level key holding the rates mapping; the other of rates/data is tried as fallback
	Client   *http.Client
}

// NewMetalpriceFetcher creates a new fetcher with optional proxy support.
func NewMetalpriceFetcher(baseURL, apiKey, base string, symbols []string, shapeKey, proxyURL string) *MetalpriceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.metalpriceapi.com/v1"
	}
	if shapeKey == "" {
		shapeKey = "rates"
	}
	return &MetalpriceFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Base:     base,
		Symbols:  symbols,
		ShapeKey: shapeKey,
		Client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
	}
}

func (f *MetalpriceFetcher) Name() string { return "metalpriceapi" }

// FetchLatest fetches the current snapshot. The snapshot date comes from the
// response timestamp when present, falling back to today (UTC).
func (f *MetalpriceFetcher) FetchLatest(ctx context.Context) (*Latest, error) {
	q := url.Values{}
	q.Set("api_key", f.APIKey)
	q.Set("base", f.Base)
	q.Set("currencies", strings.Join(f.Symbols, ","))
	payload, err := f.get(ctx, f.BaseURL+"/latest?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch latest: %w", err)
	}
	if success, ok := payload["success"].(bool); ok && !success {
		return nil, fmt.Errorf("fetch latest: api error: %v", payload["error"])
	}

	raw, err := f.extractRates(payload)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC().Format(model.DateLayout)
	if ts, ok := payload["timestamp"].(float64); ok {
		date = time.Unix(int64(ts), 0).UTC().Format(model.DateLayout)
	}

	base := f.Base
	if b, ok := payload["base"].(string); ok && b != "" {
		base = b
	}

	rates := make(map[string]float64, len(f.Symbols))
	for _, sym := range f.Symbols {
		if v, ok := pickRate(raw, base, sym); ok {
			rates[sym] = v
		}
	}
	return &Latest{Base: base, Date: date, Rates: rates}, nil
}

// FetchTimeframe fetches the date→rates mapping for a bounded span.
func (f *MetalpriceFetcher) FetchTimeframe(ctx context.Context, startDate, endDate string) (map[string]map[string]float64, error) {
	q := url.Values{}
	q.Set("api_key", f.APIKey)
	q.Set("base", f.Base)
	q.Set("currencies", strings.Join(f.Symbols, ","))
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	payload, err := f.get(ctx, f.BaseURL+"/timeframe?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch timeframe %s..%s: %w", startDate, endDate, err)
	}
	if success, ok := payload["success"].(bool); ok && !success {
		return nil, fmt.Errorf("fetch timeframe %s..%s: api error: %v", startDate, endDate, payload["error"])
	}

	raw, err := f.extractRates(payload)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]float64, len(raw))
	for date, v := range raw {
		if date == "" {
			continue
		}
		perDay, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rates := make(map[string]float64, len(perDay))
		for sym, rv := range perDay {
			if fv, ok := rv.(float64); ok {
				rates[sym] = fv
			}
		}
		out[date] = rates
	}
	return out, nil
}

func (f *MetalpriceFetcher) get(ctx context.Context, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

// extractRates pulls the rates mapping out of a response payload. The
// primary top-level key is configurable because the API has shipped both
// "rates" and "data"; the other is always tried as fallback.
func (f *MetalpriceFetcher) extractRates(payload map[string]any) (map[string]any, error) {
	keys := []string{f.ShapeKey, "data"}
	if f.ShapeKey == "data" {
		keys[1] = "rates"
	}
	for _, k := range keys {
		if m, ok := payload[k].(map[string]any); ok {
			return m, nil
		}
	}
	return nil, &ShapeError{
		Source: f.Name(),
		Detail: fmt.Sprintf("no %s mapping, keys: %v", strings.Join(keys, "/"), payloadKeys(payload)),
	}
}

// pickRate tolerates plain and pair-style rate keys (XAU, USDXAU, XAUUSD).
func pickRate(raw map[string]any, base, sym string) (float64, bool) {
	for _, k := range []string{sym, base + sym, sym + base} {
		if v, ok := raw[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

func payloadKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	return keys
}
