package series

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"MetalPulse/internal/model"
)

func TestMergeRows_ReplacesWholeRow(t *testing.T) {
	existing := []model.Row{{Date: "2024-01-01", Rates: map[string]float64{"XAU": 10}}}
	incoming := []model.Row{{Date: "2024-01-01", Rates: map[string]float64{"XAG": 5}}}

	got := MergeRows(existing, incoming)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	// Full row replace, not a rates-level union.
	if _, ok := got[0].Rates["XAU"]; ok {
		t.Error("XAU survived the replace; rates must not be deep-merged")
	}
	if got[0].Rates["XAG"] != 5 {
		t.Errorf("expected XAG=5, got %v", got[0].Rates["XAG"])
	}
}

func TestMergeRows_Idempotent(t *testing.T) {
	existing := []model.Row{
		{Date: "2024-01-03", Rates: map[string]float64{"XAU": 3}},
		{Date: "2024-01-01", Rates: map[string]float64{"XAU": 1}},
	}
	incoming := []model.Row{
		{Date: "2024-01-02", Rates: map[string]float64{"XAU": 2}},
		{Date: "2024-01-03", Rates: map[string]float64{"XAU": 30}},
	}

	once := MergeRows(existing, incoming)
	twice := MergeRows(once, incoming)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge is not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestMergeRows_SortedUnique(t *testing.T) {
	got := MergeRows(
		[]model.Row{{Date: "2024-02-01"}, {Date: "2023-12-31"}},
		[]model.Row{{Date: "2024-01-15"}, {Date: "2024-02-01"}},
	)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique dates, got %d", len(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Date < got[j].Date }) {
		t.Errorf("merged rows not sorted: %v", got)
	}
}

func TestAppendOrReplace(t *testing.T) {
	s := &model.Series{Rows: []model.Row{
		{Date: "2024-01-01", Rates: map[string]float64{"XAU": 1}},
		{Date: "2024-01-03", Rates: map[string]float64{"XAU": 3}},
	}}

	AppendOrReplace(s, model.Row{Date: "2024-01-02", Rates: map[string]float64{"XAU": 2}})
	if len(s.Rows) != 3 || s.Rows[1].Date != "2024-01-02" {
		t.Fatalf("expected inserted row sorted into place, got %v", s.Rows)
	}

	AppendOrReplace(s, model.Row{Date: "2024-01-03", Rates: map[string]float64{"XAG": 9}})
	if len(s.Rows) != 3 {
		t.Fatalf("replace must not grow the series, got %d rows", len(s.Rows))
	}
	if _, ok := s.Rows[2].Rates["XAU"]; ok {
		t.Error("same-date replace must swap the whole row")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file must yield an empty series, got error: %v", err)
	}
	if len(s.Rows) != 0 || s.Base != "" {
		t.Errorf("expected zero-value series, got %+v", s)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")
	in := &model.Series{
		Base:    "USD",
		Symbols: []string{"XAU", "XAG"},
		Rows: []model.Row{
			{Date: "2024-01-01", Rates: map[string]float64{"XAU": 2063.5, "XAG": 23.8}},
		},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\nin:  %+v\nout: %+v", in, out)
	}
}

func TestSaveMeta_StampsLastUpdated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := SaveMeta(path, &model.Meta{Base: "USD", Symbols: []string{"XAU"}}); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	m, err := LoadMeta(path)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if m.LastUpdatedUTC == "" {
		t.Error("expected LastUpdatedUTC to be stamped on save")
	}
}
