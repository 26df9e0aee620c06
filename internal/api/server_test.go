package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"MetalPulse/internal/model"
	"MetalPulse/internal/series"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	seriesPath := filepath.Join(dir, "series.json")
	metaPath := filepath.Join(dir, "meta.json")

	err := series.Save(seriesPath, &model.Series{
		Base:    "USD",
		Symbols: []string{"XAU", "XAG"},
		Rows: []model.Row{
			{Date: "2024-06-01", Rates: map[string]float64{"XAU": 50, "XAG": 10}},
			{Date: "2024-06-02", Rates: map[string]float64{"XAU": 100}},
		},
	})
	if err != nil {
		t.Fatalf("seed series: %v", err)
	}
	if err := series.SaveMeta(metaPath, &model.Meta{Base: "USD", Symbols: []string{"XAU", "XAG"}}); err != nil {
		t.Fatalf("seed meta: %v", err)
	}

	s := &Server{
		SeriesPath: seriesPath,
		MetaPath:   metaPath,
		Names:      map[string]string{"XAU": "Gold"},
		Now:        func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) },
	}
	return s, NewRouter(s)
}

func doGet(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandleTraces_Defaults(t *testing.T) {
	_, h := newTestServer(t)
	rec := doGet(t, h, "/api/traces")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Traces []model.Trace `json:"traces"`
		Layout model.Layout  `json:"layout"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Traces) != 2 {
		t.Fatalf("expected all symbols by default, got %d traces", len(resp.Traces))
	}
	if resp.Traces[0].Name != "Gold" || resp.Traces[1].Name != "XAG" {
		t.Errorf("unexpected trace names: %s, %s", resp.Traces[0].Name, resp.Traces[1].Name)
	}
	if resp.Layout.YAxisTitle != "Price (USD)" {
		t.Errorf("unexpected layout title: %s", resp.Layout.YAxisTitle)
	}
}

func TestHandleTraces_SelectionAndNormalize(t *testing.T) {
	_, h := newTestServer(t)
	rec := doGet(t, h, "/api/traces?symbols=XAU,UNKNOWN&range=1m&normalize=true&log=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp struct {
		Traces []model.Trace `json:"traces"`
		Layout model.Layout  `json:"layout"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Unknown symbols are ignored, never an error.
	if len(resp.Traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(resp.Traces))
	}
	if resp.Traces[0].Y[0] != 100 || resp.Traces[0].Y[1] != 200 {
		t.Errorf("expected normalized values, got %v", resp.Traces[0].Y)
	}
	if !resp.Layout.LogScale || resp.Layout.YAxisTitle != "Index (first value = 100)" {
		t.Errorf("unexpected layout: %+v", resp.Layout)
	}
}

func TestHandleTraces_UnknownRangeFallsBack(t *testing.T) {
	_, h := newTestServer(t)
	rec := doGet(t, h, "/api/traces?range=bogus")
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown range must not fail, got status %d", rec.Code)
	}
}

func TestHandleSeriesAndMeta(t *testing.T) {
	_, h := newTestServer(t)

	rec := doGet(t, h, "/api/series")
	if rec.Code != http.StatusOK {
		t.Fatalf("series status %d", rec.Code)
	}
	var s model.Series
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(s.Rows) != 2 || s.Base != "USD" {
		t.Errorf("unexpected series: %+v", s)
	}

	rec = doGet(t, h, "/api/meta")
	if rec.Code != http.StatusOK {
		t.Fatalf("meta status %d", rec.Code)
	}
	var m model.Meta
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if m.LastUpdatedUTC == "" {
		t.Error("meta missing last_updated_utc")
	}
}
