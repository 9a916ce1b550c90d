package runstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmgilman/go/fs/billy"

	"filemanager/internal/pipeline"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestRecorder_SuccessfulRun(t *testing.T) {
	store, _ := newMemStore(t)
	rec := &Recorder{Store: store, Now: fixedClock()}

	run, err := rec.Start("plan-hash", 5)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := uuid.Parse(run.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %q", run.RunID)
	}

	res := &pipeline.Result{Stage: pipeline.StageSummarized, Names: make([]string, 25)}
	run, err = rec.Finish(run, res, "trace-hash", nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	loaded, err := store.LoadRun(run.RunID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.Status != StatusSucceeded || loaded.Stage != "SUMMARIZED" || loaded.NameCount != 25 {
		t.Fatalf("unexpected run: %+v", loaded)
	}
	if loaded.TraceHash == nil || *loaded.TraceHash != "trace-hash" {
		t.Fatalf("expected trace hash, got %+v", loaded.TraceHash)
	}
	if loaded.EndTime == nil || !loaded.EndTime.After(loaded.StartTime) {
		t.Fatalf("expected end time after start time: %+v", loaded)
	}
	if _, err := store.LoadFailure(run.RunID); err == nil {
		t.Fatalf("expected no failure record for successful run")
	}
}

func TestRecorder_FailedRunRecordsClassifiedFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "data")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fsys := billy.NewLocal()
	plan := pipeline.DefaultPlan()
	plan.Dir = blocker
	plan.SummaryPath = filepath.Join(base, "summary.txt")
	p, err := pipeline.New(fsys, plan)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	store, err := NewStore(fsys, base)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	rec := &Recorder{Store: store}
	run, err := rec.Start(plan.Hash(), plan.FileCount)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	res, runErr := p.Run(context.Background())
	if runErr == nil {
		t.Fatalf("expected pipeline failure")
	}
	if _, err := rec.Finish(run, res, "", runErr); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	loaded, err := store.LoadRun(run.RunID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.Status != StatusFailed || loaded.Stage != "PENDING" || loaded.TraceHash != nil {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	f, err := store.LoadFailure(run.RunID)
	if err != nil {
		t.Fatalf("LoadFailure: %v", err)
	}
	if f.FailureClass != FailureClassDirectory || f.Stage != "INIT" || f.ErrorCode != "DIRECTORY_FAILED" {
		t.Fatalf("unexpected failure: %#v", f)
	}
	if f.Path == nil || *f.Path != blocker {
		t.Fatalf("expected failure path %s, got %v", blocker, f.Path)
	}

	ids, err := store.ListRunIDs()
	if err != nil || len(ids) != 1 || ids[0] != run.RunID {
		t.Fatalf("expected one listed run, got %v (%v)", ids, err)
	}
}

func TestRecorder_RequiresStore(t *testing.T) {
	var rec *Recorder
	if _, err := rec.Start("p", 1); err == nil {
		t.Fatalf("expected error for nil recorder")
	}
	if _, err := (&Recorder{}).Finish(Run{}, nil, "", errors.New("x")); err == nil {
		t.Fatalf("expected error for missing store")
	}
}
