// Package pipeline sequences the release stages: ordered, fail-fast, no
// retries, with one best-effort cleanup stage that always runs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// Stage is a single step in the pipeline.
type Stage struct {
	Name string
	// Skip, when set, is consulted before Run; a true result records the
	// stage as skipped with the returned reason.
	Skip func() (bool, string)
	Run  func(ctx context.Context) error
}

// Pipeline executes stages in order. The first failure aborts the remaining
// stages; the cleanup stage runs regardless of the outcome.
type Pipeline struct {
	Verbose bool
	Log     io.Writer

	stages  []Stage
	cleanup *Stage
}

// New creates a pipeline from an ordered stage list and an optional cleanup
// stage.
func New(stages []Stage, cleanup *Stage) *Pipeline {
	return &Pipeline{Log: os.Stderr, stages: stages, cleanup: cleanup}
}

// Execute runs the pipeline. The returned result always includes one entry
// per stage; stages after a failure are recorded as skipped. Cleanup errors
// are recorded but never fail the run.
func (p *Pipeline) Execute(ctx context.Context) (result *model.RunResult) {
	result = &model.RunResult{Timestamp: time.Now()}

	defer func() {
		if p.cleanup != nil {
			result.Cleanup = p.runCleanup(ctx)
		}
		result.Finalize()
	}()

	aborted := false
	for _, st := range p.stages {
		if aborted {
			result.Stages = append(result.Stages, model.StageResult{
				Name:   st.Name,
				Status: model.StageSkipped,
				Reason: "pipeline aborted",
			})
			continue
		}

		if st.Skip != nil {
			if skip, reason := st.Skip(); skip {
				p.logf("skipping %s: %s\n", st.Name, reason)
				result.Stages = append(result.Stages, model.StageResult{
					Name:   st.Name,
					Status: model.StageSkipped,
					Reason: reason,
				})
				continue
			}
		}

		p.logf("stage %s\n", st.Name)
		start := time.Now()
		err := st.Run(ctx)
		sr := model.StageResult{
			Name:     st.Name,
			Status:   model.StagePassed,
			Duration: time.Since(start),
		}
		if err != nil {
			sr.Status = model.StageFailed
			sr.Error = err.Error()
			result.Error = fmt.Sprintf("stage %s: %v", st.Name, err)
			aborted = true
		}
		result.Stages = append(result.Stages, sr)
	}

	return result
}

func (p *Pipeline) runCleanup(ctx context.Context) *model.StageResult {
	p.logf("stage %s (always)\n", p.cleanup.Name)
	start := time.Now()
	sr := &model.StageResult{
		Name:   p.cleanup.Name,
		Status: model.StagePassed,
	}
	if err := p.cleanup.Run(ctx); err != nil {
		// Best effort: surface the error in the report, not the exit code.
		sr.Error = err.Error()
		p.logf("cleanup %s: %v\n", p.cleanup.Name, err)
	}
	sr.Duration = time.Since(start)
	return sr
}

func (p *Pipeline) logf(format string, args ...any) {
	if !p.Verbose {
		return
	}
	w := p.Log
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
