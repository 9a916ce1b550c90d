package runstate

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmgilman/go/fs/billy"
)

func newMemStore(t *testing.T) (*Store, *billy.MemoryFS) {
	t.Helper()
	fsys := billy.NewMemory()
	store, err := NewStore(fsys, "/work")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, fsys
}

func TestStore_SaveAndLoadRun_NullableFieldsArePresent(t *testing.T) {
	store, fsys := newMemStore(t)

	run := Run{
		RunID:     "run-123",
		PlanHash:  "ph-abc",
		StartTime: time.Unix(1, 2).UTC(),
		Status:    StatusRunning,
		Stage:     "PENDING",
		FileCount: 5,
	}
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	data, err := fsys.ReadFile("/work/.filemanager/runs/run-123/run.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{`"end_time": null`, `"trace_hash": null`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s; got: %s", want, string(data))
		}
	}

	loaded, err := store.LoadRun("run-123")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.RunID != run.RunID || loaded.PlanHash != run.PlanHash || loaded.FileCount != 5 {
		t.Fatalf("loaded run mismatch: %+v", loaded)
	}
	if loaded.EndTime != nil || loaded.TraceHash != nil {
		t.Fatalf("expected nil optional fields; got %+v", loaded)
	}
}

func TestStore_SaveRun_LeavesNoTemporaryFiles(t *testing.T) {
	store, fsys := newMemStore(t)
	run := Run{RunID: "r", PlanHash: "p", StartTime: time.Unix(1, 0).UTC(), Status: StatusRunning, Stage: "PENDING"}
	for i := 0; i < 3; i++ {
		run.NameCount = i
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	entries, err := fsys.ReadDir("/work/.filemanager/runs/r")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "run.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only run.json, got %v", names)
	}
	loaded, err := store.LoadRun("r")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loaded.NameCount != 2 {
		t.Fatalf("expected last write to win, got %d", loaded.NameCount)
	}
}

func TestStore_SaveRun_RejectsInvalidRecords(t *testing.T) {
	store, _ := newMemStore(t)
	bad := []Run{
		{},
		{RunID: "../escape", PlanHash: "p", StartTime: time.Unix(1, 0), Status: StatusRunning, Stage: "PENDING"},
		{RunID: "r", PlanHash: "p", StartTime: time.Unix(1, 0), Status: "weird", Stage: "PENDING"},
		{RunID: "r", PlanHash: "p", StartTime: time.Unix(1, 0), Status: StatusRunning, Stage: "PENDING", NameCount: -1},
	}
	for i, run := range bad {
		if err := store.SaveRun(run); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestStore_LoadRun_RejectsUnknownFieldsAndTrailingContent(t *testing.T) {
	store, fsys := newMemStore(t)
	dir := "/work/.filemanager/runs/r"
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	valid := `{"run_id":"r","plan_hash":"p","start_time":"2026-01-01T00:00:00Z","end_time":null,"status":"running","stage":"PENDING","file_count":0,"name_count":0,"trace_hash":null}`

	if err := fsys.WriteFile(filepath.Join(dir, "run.json"), []byte(valid[:len(valid)-1]+`,"extra":1}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := store.LoadRun("r"); err == nil {
		t.Fatalf("expected unknown field error")
	}

	if err := fsys.WriteFile(filepath.Join(dir, "run.json"), []byte(valid+"{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := store.LoadRun("r"); err == nil {
		t.Fatalf("expected trailing content error")
	}

	if err := fsys.WriteFile(filepath.Join(dir, "run.json"), []byte(valid), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := store.LoadRun("r"); err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
}

func TestStore_ListRunIDs_SortedAndDirsOnly(t *testing.T) {
	store, fsys := newMemStore(t)

	ids, err := store.ListRunIDs()
	if err != nil {
		t.Fatalf("ListRunIDs on empty store: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no runs, got %v", ids)
	}

	for _, id := range []string{"b", "a", "c"} {
		run := Run{RunID: id, PlanHash: "p", StartTime: time.Unix(1, 0).UTC(), Status: StatusRunning, Stage: "PENDING"}
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	if err := fsys.WriteFile("/work/.filemanager/runs/stray.json", []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ids, err = store.ListRunIDs()
	if err != nil {
		t.Fatalf("ListRunIDs: %v", err)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestStore_SaveAndLoadFailure(t *testing.T) {
	store, _ := newMemStore(t)

	if _, err := store.LoadFailure("r"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist for missing failure, got %v", err)
	}

	path := "/work/data"
	f := Failure{FailureClass: FailureClassDirectory, Stage: "INIT", Path: &path, ErrorCode: "DIRECTORY_FAILED", ErrorMessage: "not a directory"}
	if err := store.SaveFailure("r", f); err != nil {
		t.Fatalf("SaveFailure: %v", err)
	}
	loaded, err := store.LoadFailure("r")
	if err != nil {
		t.Fatalf("LoadFailure: %v", err)
	}
	if loaded.FailureClass != FailureClassDirectory || loaded.Path == nil || *loaded.Path != path {
		t.Fatalf("unexpected failure: %#v", loaded)
	}

	if err := store.SaveFailure("r", Failure{FailureClass: "bogus", ErrorCode: "X", ErrorMessage: "m"}); err == nil {
		t.Fatalf("expected invalid failure_class error")
	}
}

func TestNewStore_RequiresArguments(t *testing.T) {
	if _, err := NewStore(nil, "/work"); err == nil {
		t.Fatalf("expected error for nil fs")
	}
	if _, err := NewStore(billy.NewMemory(), " "); err == nil {
		t.Fatalf("expected error for blank baseDir")
	}
}
