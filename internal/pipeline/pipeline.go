package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"
	"go.uber.org/zap"

	"filemanager/internal/console"
	"filemanager/internal/files"
	"filemanager/internal/trace"
)

// Pipeline runs the six file-management stages in order against a
// filesystem.
type Pipeline struct {
	FS   core.FS
	Plan Plan

	// Printer receives the human-readable progress output. Nil discards it.
	Printer *console.Printer
	// Logger receives structured diagnostics. Nil disables logging.
	Logger *zap.Logger
	// Sink receives trace events. Nil disables tracing.
	Sink trace.Sink
	// Root, when set, is stripped from paths recorded in trace events so
	// that traces do not depend on where the working directory lives.
	Root string
}

// Result describes how far a run got and what it produced. It is returned
// alongside errors so callers can report partial progress.
type Result struct {
	Stage      Stage
	PlanHash   string
	DirCreated bool
	Files      []string
	Names      []string
	Skipped    int
}

// New validates the plan and returns a Pipeline bound to fsys.
func New(fsys core.FS, plan Plan) (*Pipeline, error) {
	if fsys == nil {
		return nil, fmt.Errorf("nil filesystem")
	}
	if err := plan.Validate(); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid plan")
	}
	return &Pipeline{FS: fsys, Plan: plan}, nil
}

// Run executes every stage once, strictly in order. The first failure
// aborts the run; files already written stay on disk. ctx is consulted
// between stages only.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p == nil || p.FS == nil {
		return nil, fmt.Errorf("nil pipeline")
	}
	out := p.Printer
	if out == nil {
		out = console.New(nil)
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	planHash := p.PlanHash()
	log = log.With(zap.String("plan_hash", planHash))

	res := &Result{Stage: StagePending, PlanHash: planHash}
	advance := func(to Stage) error {
		from := res.Stage
		if err := Transition(&res.Stage, from, to); err != nil {
			return err
		}
		log.Info("stage complete", zap.String("stage", string(to)))
		return nil
	}
	checkCtx := func(target Stage) error {
		if err := ctx.Err(); err != nil {
			return stageFailure(target, res.Stage, CodeCancelled, "run cancelled", err)
		}
		return nil
	}

	out.Banner("File Manager")
	out.Blank()

	// DirectoryInitializer
	if err := checkCtx(StageInit); err != nil {
		return res, err
	}
	created, err := files.EnsureDir(p.FS, p.Plan.Dir)
	if err != nil {
		return res, stageFailure(StageInit, res.Stage, CodeDirectoryFailed, "create working directory", err)
	}
	res.DirCreated = created
	if created {
		p.record(trace.TraceEvent{Kind: trace.EventDirectoryCreated, Subject: p.rel(p.Plan.Dir)})
		out.Step("created directory: %s", p.rel(p.Plan.Dir))
	} else {
		p.record(trace.TraceEvent{Kind: trace.EventDirectoryExisted, Subject: p.rel(p.Plan.Dir)})
		out.Step("directory already exists: %s", p.rel(p.Plan.Dir))
	}
	if err := advance(StageInit); err != nil {
		return res, err
	}

	// FileNamePlanner
	if err := checkCtx(StagePlanned); err != nil {
		return res, err
	}
	res.Files = files.PlanFiles(p.Plan.Dir, p.Plan.FileCount)
	out.Step("planned %d files", len(res.Files))
	if err := advance(StagePlanned); err != nil {
		return res, err
	}

	// TableWriter
	if err := checkCtx(StageWritten); err != nil {
		return res, err
	}
	rows := len(p.Plan.Dataset)
	err = files.WriteTables(p.FS, res.Files, p.Plan.Dataset, func(path string) {
		p.record(trace.TraceEvent{Kind: trace.EventFileWritten, Subject: p.rel(path), Count: rows})
		log.Debug("wrote data file", zap.String("path", path), zap.Int("rows", rows))
		out.Step("wrote table data to %s", filepath.Base(path))
	})
	if err != nil {
		return res, stageFailure(StageWritten, res.Stage, CodeWriteFailed, "write data file", err)
	}
	if err := advance(StageWritten); err != nil {
		return res, err
	}

	// FileReporter
	if err := checkCtx(StageReported); err != nil {
		return res, err
	}
	out.Blank()
	out.Banner("File contents")
	out.Blank()
	rep := &reportRenderer{p: p, printer: out, paths: res.Files}
	if err := files.Report(p.FS, res.Files, rep); err != nil {
		return res, stageFailure(StageReported, res.Stage, CodeReadFailed, "read data file for report", err)
	}
	if err := advance(StageReported); err != nil {
		return res, err
	}

	// ColumnExtractor
	if err := checkCtx(StageExtracted); err != nil {
		return res, err
	}
	ex, err := files.ExtractNames(p.FS, res.Files)
	if err != nil {
		return res, stageFailure(StageExtracted, res.Stage, CodeReadFailed, "read data file for extraction", err)
	}
	for _, f := range ex.Files {
		subject := p.rel(f.Path)
		for _, s := range f.Skipped {
			p.record(trace.TraceEvent{Kind: trace.EventLineSkipped, Subject: subject, Line: s.Line, Reason: s.Reason})
			log.Debug("skipped line", zap.String("path", f.Path), zap.Int("line", s.Line), zap.String("reason", s.Reason))
		}
		p.record(trace.TraceEvent{Kind: trace.EventNamesExtracted, Subject: subject, Count: len(f.Names)})
	}
	res.Names = ex.Names
	res.Skipped = ex.Skipped()
	out.Step("extracted %d names", len(res.Names))
	if err := advance(StageExtracted); err != nil {
		return res, err
	}

	// SummaryWriter
	if err := checkCtx(StageSummarized); err != nil {
		return res, err
	}
	if err := files.WriteSummary(p.FS, p.Plan.SummaryPath, res.Names); err != nil {
		return res, stageFailure(StageSummarized, res.Stage, CodeWriteFailed, "write summary file", err)
	}
	p.record(trace.TraceEvent{Kind: trace.EventSummaryWritten, Subject: p.rel(p.Plan.SummaryPath), Count: len(res.Names)})
	out.Step("summary saved: %s", p.rel(p.Plan.SummaryPath))
	out.Detail("%d names", len(res.Names))
	if err := advance(StageSummarized); err != nil {
		return res, err
	}

	out.Blank()
	out.Banner("All tasks completed")
	return res, nil
}

// PlanHash returns the hash of the plan with its paths taken relative to
// Root, so identical runs in different working directories share it.
func (p *Pipeline) PlanHash() string {
	plan := p.Plan
	plan.Dir = p.rel(plan.Dir)
	plan.SummaryPath = p.rel(plan.SummaryPath)
	return plan.Hash()
}

func (p *Pipeline) record(e trace.TraceEvent) {
	trace.SafeRecord(p.Sink, e)
}

// rel returns path relative to Root when it lies inside it.
func (p *Pipeline) rel(path string) string {
	if p.Root == "" {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(p.Root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

// reportRenderer prints each file and records that it was reported. Report
// visits paths in order, so the n-th call belongs to paths[n].
type reportRenderer struct {
	p       *Pipeline
	printer *console.Printer
	paths   []string
	n       int
}

func (r *reportRenderer) File(name string, content []byte) {
	r.printer.File(name, content)
	if r.n < len(r.paths) {
		r.p.record(trace.TraceEvent{Kind: trace.EventFileReported, Subject: r.p.rel(r.paths[r.n])})
	}
	r.n++
}
