package model

// Selection is transient per-request chart state. Selected is a membership
// set; iteration order always comes from Series.Symbols, not from the map.
type Selection struct {
	Selected  map[string]bool
	Range     string
	LogScale  bool
	Normalize bool
}

// Trace is one symbol's (x, y) sequence for the chart sink. X and Y stay
// aligned: a date appears in X only when the symbol had a rate that day.
type Trace struct {
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// Layout carries the axis title and scale flag for the chart sink.
type Layout struct {
	YAxisTitle string `json:"y_axis_title"`
	LogScale   bool   `json:"log_scale"`
}
