package source

import "context"

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Latest         *Latest
	Timeframe      map[string]map[string]float64
	LatestErr      error
	TimeframeErr   error
	TimeframeCalls [][2]string // recorded (start, end) pairs
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchLatest(_ context.Context) (*Latest, error) {
	if m.LatestErr != nil {
		return nil, m.LatestErr
	}
	return m.Latest, nil
}

func (m *MockFetcher) FetchTimeframe(_ context.Context, startDate, endDate string) (map[string]map[string]float64, error) {
	m.TimeframeCalls = append(m.TimeframeCalls, [2]string{startDate, endDate})
	if m.TimeframeErr != nil {
		return nil, m.TimeframeErr
	}
	out := make(map[string]map[string]float64)
	for date, rates := range m.Timeframe {
		if date >= startDate && date <= endDate {
			out[date] = rates
		}
	}
	return out, nil
}
