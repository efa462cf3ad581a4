package model

import "time"

// StageStatus describes the outcome of a single pipeline stage.
type StageStatus string

const (
	StagePassed  StageStatus = "passed"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Name     string        `json:"name"`
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Reason   string        `json:"reason,omitempty"` // why a stage was skipped
	Duration time.Duration `json:"duration"`
}

// RunResult contains the results of a full pipeline run.
type RunResult struct {
	Timestamp    time.Time     `json:"timestamp"`
	DryRun       bool          `json:"dryRun"`
	Spec         *ReleaseSpec  `json:"spec,omitempty"`
	Stages       []StageResult `json:"stages,omitempty"`
	Cleanup      *StageResult  `json:"cleanup,omitempty"` // best-effort, excluded from counts
	ReleaseURL   string        `json:"releaseUrl,omitempty"`
	PassedCount  int           `json:"passedCount"`
	SkippedCount int           `json:"skippedCount"`
	FailedCount  int           `json:"failedCount"`
	Error        string        `json:"error,omitempty"`
}

// Finalize recomputes the per-status counts from the stage list.
func (r *RunResult) Finalize() {
	r.PassedCount, r.SkippedCount, r.FailedCount = 0, 0, 0
	for _, s := range r.Stages {
		switch s.Status {
		case StagePassed:
			r.PassedCount++
		case StageSkipped:
			r.SkippedCount++
		case StageFailed:
			r.FailedCount++
		}
	}
}

// Succeeded reports whether the run completed without a failed stage.
func (r *RunResult) Succeeded() bool {
	return r.FailedCount == 0 && r.Error == ""
}

// ValidationResult contains the results of validating a trigger tag without
// running the pipeline.
type ValidationResult struct {
	Timestamp  time.Time    `json:"timestamp"`
	Spec       *ReleaseSpec `json:"spec"`
	NotesBytes int          `json:"notesBytes"`
	TagsSeen   int          `json:"tagsSeen"`
	Error      string       `json:"error,omitempty"`
}
