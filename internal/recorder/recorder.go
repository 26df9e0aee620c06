package recorder

import "time"

// DailyUpdateEvent records one successful daily update.
type DailyUpdateEvent struct {
	Date       string // row date written to the series
	SourceDate string // snapshot date reported by the source
	Base       string
	Source     string
	NumRates   int
}

// BackfillRunEvent records one completed backfill run.
type BackfillRunEvent struct {
	StartDate  string
	EndDate    string
	Chunks     int
	RowsMerged int
	Duration   time.Duration
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordDailyUpdate(evt *DailyUpdateEvent) error
	RecordBackfillRun(evt *BackfillRunEvent) error
	Close() error
}
