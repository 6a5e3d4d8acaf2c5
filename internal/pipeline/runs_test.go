package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/lunchbot/internal/menu"
)

var wednesday = time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC)

func TestRun_StateTransitions(t *testing.T) {
	run := newRun("run-1", wednesday, false)
	if run.Status != StatusRunning || run.Date != "2026-10-14" {
		t.Fatalf("unexpected initial state %q %q", run.Status, run.Date)
	}

	transitions := []struct {
		status RunStatus
		phase  string
	}{
		{StatusRunning, "building"},
		{StatusRunning, "posting"},
		{StatusCompleted, "done"},
	}
	for _, tr := range transitions {
		before := run.UpdatedAt
		time.Sleep(time.Millisecond)
		run.SetStatus(tr.status, tr.phase)

		if run.Status != tr.status || run.Phase != tr.phase {
			t.Errorf("expected %q/%q, got %q/%q", tr.status, tr.phase, run.Status, run.Phase)
		}
		if !run.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q, %q)", tr.status, tr.phase)
		}
	}
}

func TestRun_SnapshotCopiesReport(t *testing.T) {
	run := newRun("run-2", wednesday, true)
	run.SetReport(&Report{
		Sections: make([]menu.MenuSection, 3),
		Dropped:  []menu.DroppedBlock{{Index: 4, Length: 2}},
		Text:     "*Grill*\n",
	})
	run.AddTriggered("burrito")
	run.AddError("trigger pho: no image found")

	snap := run.Snapshot()
	if snap.Sections != 3 || snap.Message != "*Grill*\n" || !snap.DryRun {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if len(snap.Dropped) != 1 || snap.Dropped[0].Length != 2 {
		t.Errorf("unexpected dropped %v", snap.Dropped)
	}

	snap.Triggered[0] = "mutated"
	if run.Snapshot().Triggered[0] != "burrito" {
		t.Error("expected snapshot slices to be copies")
	}
}

func TestRun_SnapshotSlicesNotNil(t *testing.T) {
	snap := newRun("run-3", wednesday, false).Snapshot()
	if snap.Errors == nil || snap.Triggered == nil || snap.Dropped == nil {
		t.Errorf("expected non-nil slices, got %+v", snap)
	}
}

func TestRunStore_PutGet(t *testing.T) {
	store := NewRunStore(time.Hour)
	store.Put(newRun("store-1", wednesday, false))

	got := store.Get("store-1")
	if got == nil || got.ID != "store-1" {
		t.Fatalf("expected to get run back, got %v", got)
	}
	if store.Get("missing") != nil {
		t.Error("expected nil for missing run")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 run, got %d", store.Len())
	}
}

func TestRunStore_TTLCleanup(t *testing.T) {
	store := NewRunStore(50 * time.Millisecond)
	store.Put(newRun("old", wednesday, false))

	time.Sleep(100 * time.Millisecond)
	store.Put(newRun("new", wednesday, false))
	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired run to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh run to survive cleanup")
	}
}
