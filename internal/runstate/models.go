package runstate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Run is the persistent metadata of one pipeline invocation.
//
// end_time and trace_hash are nullable: a run that never finished has
// neither, and trace_hash is only set when a trace was collected.
type Run struct {
	RunID     string     `json:"run_id"`
	PlanHash  string     `json:"plan_hash"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    RunStatus  `json:"status"`
	Stage     string     `json:"stage"`
	FileCount int        `json:"file_count"`
	NameCount int        `json:"name_count"`
	TraceHash *string    `json:"trace_hash"`
}

func (r Run) Validate() error {
	var errs []error
	if strings.TrimSpace(r.RunID) == "" {
		errs = append(errs, errors.New("run_id is required"))
	}
	if strings.ContainsAny(r.RunID, `/\`) || r.RunID == "." || r.RunID == ".." {
		errs = append(errs, fmt.Errorf("run_id %q is not a valid directory name", r.RunID))
	}
	if strings.TrimSpace(r.PlanHash) == "" {
		errs = append(errs, errors.New("plan_hash is required"))
	}
	if r.StartTime.IsZero() {
		errs = append(errs, errors.New("start_time is required"))
	}
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		errs = append(errs, errors.New("end_time must not precede start_time"))
	}
	switch r.Status {
	case StatusRunning, StatusSucceeded, StatusFailed:
	default:
		errs = append(errs, fmt.Errorf("invalid status %q", r.Status))
	}
	if strings.TrimSpace(r.Stage) == "" {
		errs = append(errs, errors.New("stage is required"))
	}
	if r.FileCount < 0 {
		errs = append(errs, errors.New("file_count must be >= 0"))
	}
	if r.NameCount < 0 {
		errs = append(errs, errors.New("name_count must be >= 0"))
	}
	if r.TraceHash != nil && strings.TrimSpace(*r.TraceHash) == "" {
		errs = append(errs, errors.New("trace_hash must not be empty when provided"))
	}
	return errors.Join(errs...)
}

type FailureClass string

const (
	FailureClassDirectory FailureClass = "directory"
	FailureClassWrite     FailureClass = "write"
	FailureClassRead      FailureClass = "read"
	FailureClassSystem    FailureClass = "system"
)

// Failure is the recorded reason a run stopped.
type Failure struct {
	FailureClass FailureClass `json:"failure_class"`
	Stage        string       `json:"stage"`
	Path         *string      `json:"path,omitempty"`
	ErrorCode    string       `json:"error_code"`
	ErrorMessage string       `json:"error_message"`
}

func (f Failure) Validate() error {
	var errs []error
	switch f.FailureClass {
	case FailureClassDirectory, FailureClassWrite, FailureClassRead, FailureClassSystem:
	default:
		errs = append(errs, fmt.Errorf("invalid failure_class %q", f.FailureClass))
	}
	if f.Path != nil && strings.TrimSpace(*f.Path) == "" {
		errs = append(errs, errors.New("path must not be empty when provided"))
	}
	if strings.TrimSpace(f.ErrorCode) == "" {
		errs = append(errs, errors.New("error_code is required"))
	}
	if strings.TrimSpace(f.ErrorMessage) == "" {
		errs = append(errs, errors.New("error_message is required"))
	}
	return errors.Join(errs...)
}
