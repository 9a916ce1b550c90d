package files

import "fmt"

// Operations reported by OpError.
const (
	OpMkdir = "mkdir"
	OpStat  = "stat"
	OpWrite = "write"
	OpRead  = "read"
)

// OpError records the operation and path that failed.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op, path string, err error) error {
	return &OpError{Op: op, Path: path, Err: err}
}
