package pipeline

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"

	"filemanager/internal/files"
)

// Error codes attached to stage failures.
const (
	CodeDirectoryFailed platformerrors.ErrorCode = "DIRECTORY_FAILED"
	CodeWriteFailed     platformerrors.ErrorCode = "WRITE_FAILED"
	CodeReadFailed      platformerrors.ErrorCode = "READ_FAILED"
	CodeCancelled       platformerrors.ErrorCode = "CANCELLED"
)

// StageError reports the stage that aborted a run.
//
// Stage is the stage the run was trying to reach; Reached is the last stage
// it completed. Err carries a coded platform error wrapping the underlying
// I/O failure.
type StageError struct {
	Stage   Stage
	Reached Stage
	Path    string
	Err     error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("stage %s failed at %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Code returns the platform error code of the failure.
func (e *StageError) Code() platformerrors.ErrorCode {
	if e == nil {
		return platformerrors.CodeUnknown
	}
	return platformerrors.GetCode(e.Err)
}

func stageFailure(target, reached Stage, code platformerrors.ErrorCode, msg string, err error) error {
	path := ""
	var opErr *files.OpError
	if errors.As(err, &opErr) {
		path = opErr.Path
	}
	perr := platformerrors.Wrap(err, code, msg)
	perr = platformerrors.WithContextMap(perr, map[string]interface{}{
		"stage": string(target),
		"path":  path,
	})
	return &StageError{Stage: target, Reached: reached, Path: path, Err: perr}
}
