package runstate

import (
	"errors"

	platformerrors "github.com/jmgilman/go/errors"

	"filemanager/internal/pipeline"
)

// FailureFromError classifies err into the failure taxonomy.
//
// Stage failures map by their error code; anything else, including
// cancellation, is a system failure.
func FailureFromError(err error) (Failure, error) {
	if err == nil {
		return Failure{}, errors.New("nil error")
	}

	var se *pipeline.StageError
	if errors.As(err, &se) && se != nil {
		code := se.Code()
		f := Failure{
			FailureClass: classFor(code),
			Stage:        string(se.Stage),
			ErrorCode:    string(code),
			ErrorMessage: nonEmptyOr(rootMessage(se.Err), se.Error()),
		}
		if se.Path != "" {
			p := se.Path
			f.Path = &p
		}
		return f, nil
	}

	return Failure{
		FailureClass: FailureClassSystem,
		Stage:        "",
		ErrorCode:    string(platformerrors.GetCode(err)),
		ErrorMessage: err.Error(),
	}, nil
}

func classFor(code platformerrors.ErrorCode) FailureClass {
	switch code {
	case pipeline.CodeDirectoryFailed:
		return FailureClassDirectory
	case pipeline.CodeWriteFailed:
		return FailureClassWrite
	case pipeline.CodeReadFailed:
		return FailureClassRead
	default:
		return FailureClassSystem
	}
}

// rootMessage returns the message of the innermost error in the chain,
// which is the I/O error itself rather than the stage prose around it.
func rootMessage(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func nonEmptyOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
