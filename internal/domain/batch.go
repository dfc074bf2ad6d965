package domain

import "time"

// BatchReport is the tally of a batch run.
type BatchReport struct {
	Mode       Mode      `json:"mode"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	Stopped    bool      `json:"stopped"`
	Aborted    bool      `json:"aborted"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewBatchReport creates an empty report for the given mode.
func NewBatchReport(mode Mode) *BatchReport {
	return &BatchReport{
		Mode:      mode,
		Errors:    make([]string, 0),
		StartedAt: time.Now().UTC(),
	}
}

// Record tallies a non-completed outcome.
func (r *BatchReport) Record(o StepOutcome) {
	switch o.Status {
	case StepSuccess:
		r.Processed++
	case StepSkipped:
		r.Skipped++
	case StepFailed:
		r.Errors = append(r.Errors, o.Message())
	}
}

// Finish stamps the report.
func (r *BatchReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration returns how long the run took.
func (r *BatchReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Status is a point-in-time view of a pipeline.
type Status struct {
	Mode         Mode         `json:"mode"`
	InputPath    string       `json:"input_path"`
	InputExists  bool         `json:"input_exists"`
	Remaining    int          `json:"remaining"`
	OutputPath   string       `json:"output_path"`
	OutputExists bool         `json:"output_exists"`
	Translated   int          `json:"translated"`
	Running      bool         `json:"running"`
	LastRun      *BatchReport `json:"last_run,omitempty"`
}
