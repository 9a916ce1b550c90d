package runstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filemanager/internal/pipeline"
)

// Recorder writes run.json and failure.json for pipeline runs.
//
// Callers Start a run before the pipeline executes and Finish it with the
// pipeline's result and error.
type Recorder struct {
	Store *Store
	// Now defaults to time.Now().UTC.
	Now func() time.Time
}

func (r *Recorder) NewRunID() string {
	return uuid.NewString()
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Start persists a running record for plan and returns it.
func (r *Recorder) Start(planHash string, fileCount int) (Run, error) {
	if r == nil || r.Store == nil {
		return Run{}, errors.New("Store is required")
	}
	run := Run{
		RunID:     r.NewRunID(),
		PlanHash:  planHash,
		StartTime: r.now(),
		Status:    StatusRunning,
		Stage:     string(pipeline.StagePending),
		FileCount: fileCount,
	}
	if err := r.Store.SaveRun(run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Finish updates run from the pipeline outcome and persists it. When
// runErr is non-nil the classified failure is saved as well.
func (r *Recorder) Finish(run Run, res *pipeline.Result, traceHash string, runErr error) (Run, error) {
	if r == nil || r.Store == nil {
		return run, errors.New("Store is required")
	}
	end := r.now()
	run.EndTime = &end
	if res != nil {
		run.Stage = string(res.Stage)
		run.NameCount = len(res.Names)
	}
	if traceHash != "" {
		h := traceHash
		run.TraceHash = &h
	}
	run.Status = StatusSucceeded
	if runErr != nil {
		run.Status = StatusFailed
	}
	if err := r.Store.SaveRun(run); err != nil {
		return run, err
	}
	if runErr == nil {
		return run, nil
	}
	f, err := FailureFromError(runErr)
	if err != nil {
		return run, err
	}
	if err := r.Store.SaveFailure(run.RunID, f); err != nil {
		return run, fmt.Errorf("record failure: %w", err)
	}
	return run, nil
}
