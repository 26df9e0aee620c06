package chart

import (
	"fmt"
	"time"

	"MetalPulse/internal/model"
	"MetalPulse/internal/series"
)

// BuildTraces projects the selected symbols over the range-filtered rows
// into per-symbol (x, y) sequences for the chart sink. Symbols are iterated
// in the series' configured order, never the selection set's order. Rows
// missing a symbol are skipped, not interpolated or zero-filled, so a
// trace's x/y lengths equal the count of rows where the symbol is present.
// A selected symbol with no surviving points still yields a trace with
// empty x/y.
func BuildTraces(s *model.Series, sel model.Selection, names map[string]string, now time.Time) []model.Trace {
	filtered := series.FilterByRange(s.Rows, sel.Range, now)
	traces := make([]model.Trace, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if !sel.Selected[sym] {
			continue
		}
		tr := model.Trace{Name: displayName(names, sym), X: []string{}, Y: []float64{}}
		for _, row := range filtered {
			v, ok := row.Rates[sym]
			if !ok {
				continue
			}
			tr.X = append(tr.X, row.Date)
			tr.Y = append(tr.Y, v)
		}
		if sel.Normalize {
			// Each symbol normalizes against its own first in-range value.
			tr.Y = Normalize(tr.Y)
		}
		traces = append(traces, tr)
	}
	return traces
}

// BuildLayout produces the chart layout for a selection.
func BuildLayout(sel model.Selection, base string) model.Layout {
	title := fmt.Sprintf("Price (%s)", base)
	if sel.Normalize {
		title = "Index (first value = 100)"
	}
	return model.Layout{YAxisTitle: title, LogScale: sel.LogScale}
}

func displayName(names map[string]string, sym string) string {
	if n, ok := names[sym]; ok && n != "" {
		return n
	}
	return sym
}
