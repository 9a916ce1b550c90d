package cli

import (
	"context"
	"fmt"
	"io"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"filemanager/internal/config"
	"filemanager/internal/console"
	"filemanager/internal/pipeline"
	"filemanager/internal/runstate"
	"filemanager/internal/trace"
)

// Env carries the process-level dependencies of a run. Zero values fall
// back to the local filesystem and discarded output.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	FS     core.FS
	// Logger, when set, replaces the logger built from the configured level.
	Logger *zap.Logger
}

type CLIResult struct {
	ExitCode  int
	RunID     string
	TraceHash string
	Pipeline  *pipeline.Result
}

// Execute maps a canonical Invocation to a pipeline run.
//
// Responsibilities:
//   - Resolve configuration (defaults, YAML, environment, then flags).
//   - Run the pipeline with progress on stdout and logs on stderr.
//   - Write the trace, even for a failed run, when one is requested.
//   - Persist run records when recording is enabled.
//   - Translate outcomes to semantic exit codes.
func Execute(ctx context.Context, inv Invocation, env Env) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if env.Stdout == nil {
		env.Stdout = io.Discard
	}

	fsys := env.FS
	if fsys == nil {
		fsys = billy.NewLocal()
	}

	cfg, err := resolveConfig(fsys, inv)
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, err
	}

	log := env.Logger
	if log == nil {
		level := cfg.Level()
		if inv.Verbose {
			level = zapcore.DebugLevel
		}
		log = NewLogger(env.Stderr, level)
		defer func() { _ = log.Sync() }()
	}

	plan, err := resolvePlan(cfg, inv.WorkDir)
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, err
	}
	tracePath := inv.Trace.Path
	if !inv.Trace.Enabled && cfg.TracePath != "" {
		if tracePath, err = resolvePath(inv.WorkDir, cfg.TracePath); err != nil {
			res.ExitCode = ExitConfigError
			return res, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid trace_path")
		}
	}

	p, err := pipeline.New(fsys, plan)
	if err != nil {
		res.ExitCode = ExitCode(err)
		return res, err
	}
	events := trace.NewRecorder()
	p.Printer = console.New(env.Stdout)
	p.Logger = log
	p.Sink = events
	p.Root = inv.WorkDir

	log.Debug("resolved plan",
		zap.String("workdir", inv.WorkDir),
		zap.String("data_dir", plan.Dir),
		zap.Int("file_count", plan.FileCount),
		zap.String("summary", plan.SummaryPath),
		zap.Int("records", len(plan.Dataset)),
	)

	// Recording is best-effort: a store that cannot be written must not
	// stop the run itself.
	var recorder *runstate.Recorder
	var run runstate.Run
	if inv.Record || cfg.RecordRuns {
		recorder, run = startRecording(fsys, inv.WorkDir, p.PlanHash(), plan.FileCount, log)
		res.RunID = run.RunID
	}

	defer func() {
		if r := recover(); r != nil {
			res.ExitCode = ExitInternalError
			execErr = fmt.Errorf("panic: %v", r)
			if recorder != nil {
				_, _ = recorder.Finish(run, res.Pipeline, "", execErr)
			}
		}
	}()

	pres, runErr := p.Run(ctx)
	res.Pipeline = pres

	tr := events.Trace(p.PlanHash())
	if h, err := tr.Hash(); err == nil {
		res.TraceHash = h
	} else {
		log.Warn("trace hash unavailable", zap.Error(err))
	}
	var traceErr error
	if tracePath != "" {
		traceErr = writeTrace(fsys, tracePath, tr)
		if traceErr != nil {
			log.Error("failed to write trace", zap.String("path", tracePath), zap.Error(traceErr))
		}
	}

	if recorder != nil {
		if _, err := recorder.Finish(run, pres, res.TraceHash, runErr); err != nil {
			log.Warn("failed to record run", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}

	if runErr != nil {
		log.Error("run failed", zap.Error(runErr))
		res.ExitCode = ExitCode(runErr)
		return res, runErr
	}
	if traceErr != nil {
		res.ExitCode = ExitInternalError
		return res, fmt.Errorf("write trace: %w", traceErr)
	}
	res.ExitCode = ExitSuccess
	return res, nil
}

// resolveConfig layers flags over the loaded configuration and validates
// the result once.
func resolveConfig(fsys core.FS, inv Invocation) (*config.Config, error) {
	if err := config.LoadDotEnv(fsys, inv.WorkDir); err != nil {
		return nil, err
	}
	cfg, err := config.Load(fsys, inv.ConfigPath, inv.ConfigRequired)
	if err != nil {
		return nil, err
	}
	if inv.DataDir != nil {
		cfg.DataDir = *inv.DataDir
	}
	if inv.FileCount != nil {
		cfg.FileCount = *inv.FileCount
	}
	if inv.SummaryPath != nil {
		cfg.SummaryPath = *inv.SummaryPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid configuration")
	}
	return cfg, nil
}

// resolvePlan turns the configured paths into absolute ones under workDir.
func resolvePlan(cfg *config.Config, workDir string) (pipeline.Plan, error) {
	plan := cfg.Plan()
	dir, err := resolvePath(workDir, plan.Dir)
	if err != nil {
		return pipeline.Plan{}, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid data_dir")
	}
	summary, err := resolvePath(workDir, plan.SummaryPath)
	if err != nil {
		return pipeline.Plan{}, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid summary_path")
	}
	plan.Dir = dir
	plan.SummaryPath = summary
	return plan, nil
}

func startRecording(fsys core.FS, workDir, planHash string, fileCount int, log *zap.Logger) (*runstate.Recorder, runstate.Run) {
	store, err := runstate.NewStore(fsys, workDir)
	if err != nil {
		log.Warn("run recording disabled", zap.Error(err))
		return nil, runstate.Run{}
	}
	rec := &runstate.Recorder{Store: store}
	run, err := rec.Start(planHash, fileCount)
	if err != nil {
		log.Warn("run recording disabled", zap.Error(err))
		return nil, runstate.Run{}
	}
	log.Debug("recording run", zap.String("run_id", run.RunID))
	return rec, run
}

func writeTrace(fsys core.FS, path string, tr trace.ExecutionTrace) error {
	b, err := tr.CanonicalJSON()
	if err != nil {
		return err
	}
	return runstate.WriteFileAtomic(fsys, path, b, 0o644)
}
