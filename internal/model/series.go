package model

// DateLayout is the calendar-date format used everywhere: UTC, no time
// component. Lexicographic ordering of these strings equals chronological
// ordering, so rows compare and sort as plain strings.
const DateLayout = "2006-01-02"

// Row holds one calendar date's rates keyed by symbol code. The map may be
// partial: not every symbol is present on every date.
type Row struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Series is the authoritative persisted price series. Symbols is the
// canonical display order. Rows stays sorted ascending by date and unique
// per date after every mutation.
type Series struct {
	Base    string   `json:"base"`
	Symbols []string `json:"symbols"`
	Rows    []Row    `json:"rows"`
}

// Meta is a derived side-car summary. Never authoritative.
type Meta struct {
	LastUpdatedUTC string   `json:"last_updated_utc"`
	Base           string   `json:"base"`
	Symbols        []string `json:"symbols"`
	Note           string   `json:"note,omitempty"`
}
