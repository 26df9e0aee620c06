package series

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"MetalPulse/internal/model"
)

// Load reads the series document from a JSON file. Returns an empty series
// if the file doesn't exist.
func Load(path string) (*model.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Series{}, nil
		}
		return nil, err
	}
	var s model.Series
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the series document whole to a JSON file. There are no
// partial writes: every successful mutation batch overwrites the file.
func Save(path string, s *model.Series) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadMeta reads the meta side-car. Returns a zero meta if the file doesn't
// exist.
func LoadMeta(path string) (*model.Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Meta{}, nil
		}
		return nil, err
	}
	var m model.Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMeta stamps LastUpdatedUTC and writes the meta side-car.
func SaveMeta(path string, m *model.Meta) error {
	m.LastUpdatedUTC = time.Now().UTC().Format("2006-01-02 15:04:05")
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MergeRows merges incoming rows into existing ones keyed by date. An
// incoming row fully replaces any existing row with the same date; rates are
// not deep-merged. The result is sorted ascending by date and unique per
// date. Applying the same incoming batch twice yields the same result as
// applying it once.
func MergeRows(existing, incoming []model.Row) []model.Row {
	byDate := make(map[string]model.Row, len(existing)+len(incoming))
	for _, r := range existing {
		byDate[r.Date] = r
	}
	for _, r := range incoming {
		byDate[r.Date] = r
	}
	merged := make([]model.Row, 0, len(byDate))
	for _, r := range byDate {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	return merged
}

// AppendOrReplace upserts a single row by date: an existing row for the same
// date is fully replaced, otherwise the row is appended and the series
// re-sorted. Re-running within the same day is idempotent at the row level.
func AppendOrReplace(s *model.Series, row model.Row) {
	for i := range s.Rows {
		if s.Rows[i].Date == row.Date {
			s.Rows[i] = row
			return
		}
	}
	s.Rows = append(s.Rows, row)
	sort.Slice(s.Rows, func(i, j int) bool { return s.Rows[i].Date < s.Rows[j].Date })
}
