package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestFetcher(ts *httptest.Server, shapeKey string) *MetalpriceFetcher {
	f := NewMetalpriceFetcher(ts.URL, "test-key", "USD", []string{"XAU", "XAG"}, shapeKey, "")
	f.Client = ts.Client()
	return f
}

func TestFetchLatest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key in query: %s", r.URL.RawQuery)
		}
		// Pair-style key for XAG, plain for XAU; timestamp is 2024-06-15 UTC.
		w.Write([]byte(`{"success":true,"base":"USD","timestamp":1718409600,
			"rates":{"XAU":2300.5,"USDXAG":29.4,"EUR":0.9}}`))
	}))
	defer ts.Close()

	latest, err := newTestFetcher(ts, "rates").FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("fetch latest: %v", err)
	}
	if latest.Date != "2024-06-15" {
		t.Errorf("expected date from timestamp, got %s", latest.Date)
	}
	if latest.Rates["XAU"] != 2300.5 {
		t.Errorf("expected XAU=2300.5, got %v", latest.Rates["XAU"])
	}
	if latest.Rates["XAG"] != 29.4 {
		t.Errorf("expected pair-style key resolved for XAG, got %v", latest.Rates["XAG"])
	}
	if _, ok := latest.Rates["EUR"]; ok {
		t.Error("unrequested symbol leaked into rates")
	}
}

func TestFetchLatest_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"code":101,"info":"invalid key"}}`))
	}))
	defer ts.Close()

	if _, err := newTestFetcher(ts, "rates").FetchLatest(context.Background()); err == nil {
		t.Fatal("expected error for success=false response")
	}
}

func TestFetchTimeframe_ShapeKeyFallback(t *testing.T) {
	// Response uses "data" even though the configured primary key is "rates".
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"data":{
			"2024-01-01":{"XAU":2050,"XAG":23.1},
			"2024-01-02":{"XAU":2060}}}`))
	}))
	defer ts.Close()

	rates, err := newTestFetcher(ts, "rates").FetchTimeframe(context.Background(), "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("fetch timeframe: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(rates))
	}
	if rates["2024-01-01"]["XAG"] != 23.1 {
		t.Errorf("unexpected rates: %v", rates["2024-01-01"])
	}
}

func TestFetchTimeframe_ShapeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"rates":"not-a-mapping"}`))
	}))
	defer ts.Close()

	_, err := newTestFetcher(ts, "rates").FetchTimeframe(context.Background(), "2024-01-01", "2024-01-02")
	var serr *ShapeError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}

func TestFetchLatest_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	if _, err := newTestFetcher(ts, "rates").FetchLatest(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
