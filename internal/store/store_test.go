package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	runs := []Run{
		{StartedAt: base, FinishedAt: base.Add(time.Second), Outcome: OutcomeOK, WorldCount: 20},
		{StartedAt: base.Add(10 * time.Minute), FinishedAt: base.Add(11 * time.Minute), Outcome: OutcomePartial, FailedBranches: "korea,exchange"},
		{StartedAt: base.Add(20 * time.Minute), FinishedAt: base.Add(21 * time.Minute), Outcome: OutcomeOK, Forced: true},
	}
	for _, r := range runs {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, err := s.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if !all[0].Forced || all[2].WorldCount != 20 {
		t.Fatalf("expected newest first, got %+v", all)
	}
	for _, r := range all {
		if len(r.ID) != 36 {
			t.Fatalf("expected generated uuid, got %q", r.ID)
		}
	}

	partial, err := s.ListRuns(ctx, Filter{Outcome: OutcomePartial})
	if err != nil {
		t.Fatalf("list partial: %v", err)
	}
	if len(partial) != 1 {
		t.Fatalf("expected 1 partial run, got %d", len(partial))
	}
	if got := partial[0].Branches(); len(got) != 2 || got[0] != "korea" || got[1] != "exchange" {
		t.Fatalf("unexpected failed branches %v", got)
	}

	limited, err := s.ListRuns(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(limited))
	}
}

func TestListRunsSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	old := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	_ = s.SaveRun(ctx, Run{StartedAt: old, FinishedAt: old, Outcome: OutcomeOK})
	_ = s.SaveRun(ctx, Run{StartedAt: recent, FinishedAt: recent, Outcome: OutcomeFailed})

	got, err := s.ListRuns(ctx, Filter{Since: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Outcome != OutcomeFailed {
		t.Fatalf("expected only the recent run, got %+v", got)
	}
}
