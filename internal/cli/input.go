package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"

	"filemanager/internal/config"
	"filemanager/internal/pipeline"
)

const (
	ExitSuccess           = 0
	ExitPipelineFailure   = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

type TraceConfig struct {
	Enabled bool
	Path    string
}

// Flags holds the raw command-line values before canonicalization.
type Flags struct {
	WorkDir     string
	ConfigPath  string
	DataDir     string
	FileCount   int
	SummaryPath string
	TracePath   string
	Record      bool
	Verbose     bool
}

// Invocation is the canonical description of a run.
//
// WorkDir is absolute and every other path is resolved against it, so
// nothing downstream consults the process current working directory.
// The pointer overrides are set only for flags given explicitly; they win
// over the config file and the environment.
type Invocation struct {
	WorkDir        string
	ConfigPath     string
	ConfigRequired bool
	DataDir        *string
	FileCount      *int
	SummaryPath    *string
	Trace          TraceConfig
	Record         bool
	Verbose        bool
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation canonicalizes raw flag values. changed reports whether a
// flag was set on the command line; cwd is used only when --workdir is
// omitted.
func ParseInvocation(f Flags, changed func(name string) bool, cwd string) (Invocation, error) {
	if changed == nil {
		changed = func(string) bool { return false }
	}

	workDir := strings.TrimSpace(f.WorkDir)
	if workDir == "" {
		workDir = cwd
	}
	if strings.TrimSpace(workDir) == "" {
		return Invocation{}, invalidInvocationf("--workdir is required")
	}
	if !filepath.IsAbs(workDir) {
		if strings.TrimSpace(cwd) == "" || !filepath.IsAbs(cwd) {
			return Invocation{}, invalidInvocationf("--workdir must be an absolute path (got %q)", workDir)
		}
		workDir = filepath.Join(cwd, workDir)
	}
	workDir = filepath.Clean(workDir)

	inv := Invocation{
		WorkDir: workDir,
		Record:  f.Record,
		Verbose: f.Verbose,
	}

	if strings.TrimSpace(f.ConfigPath) != "" {
		p, err := resolveUnderWorkDir(workDir, f.ConfigPath)
		if err != nil {
			return Invocation{}, err
		}
		inv.ConfigPath = p
		inv.ConfigRequired = true
	} else {
		inv.ConfigPath = filepath.Join(workDir, config.FileName)
	}

	if changed("data-dir") {
		if _, err := resolveUnderWorkDir(workDir, f.DataDir); err != nil {
			return Invocation{}, err
		}
		v := f.DataDir
		inv.DataDir = &v
	}
	if changed("count") {
		if f.FileCount < 0 {
			return Invocation{}, invalidInvocationf("--count must be >= 0 (got %d)", f.FileCount)
		}
		v := f.FileCount
		inv.FileCount = &v
	}
	if changed("summary") {
		if _, err := resolveUnderWorkDir(workDir, f.SummaryPath); err != nil {
			return Invocation{}, err
		}
		v := f.SummaryPath
		inv.SummaryPath = &v
	}
	if strings.TrimSpace(f.TracePath) != "" {
		p, err := resolveUnderWorkDir(workDir, f.TracePath)
		if err != nil {
			return Invocation{}, err
		}
		inv.Trace = TraceConfig{Enabled: true, Path: p}
	}
	return inv, nil
}

func resolveUnderWorkDir(workDir, p string) (string, error) {
	resolved, err := resolvePath(workDir, p)
	if err != nil {
		return "", invalidInvocationf("%v", err)
	}
	return resolved, nil
}

// resolvePath cleans p and, when relative, joins it to workDir.
func resolvePath(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("path must not be empty")
	}
	clean := filepath.Clean(p)
	if clean == "." {
		return "", errors.New("path must not be '.'")
	}
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	// WorkDir is absolute, so Join does not consult process CWD.
	return filepath.Clean(filepath.Join(workDir, clean)), nil
}

// ExitCode maps an error to a semantic exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return ExitPipelineFailure
	}
	if platformerrors.GetCode(err) == platformerrors.CodeInvalidConfig {
		return ExitConfigError
	}
	return ExitInternalError
}
