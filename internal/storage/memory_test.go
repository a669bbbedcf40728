package storage

import (
	"context"
	"testing"

	"genetics/internal/model"
)

func newInitializedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	run := model.RunRecord{VersionedRecord: Versioned(), ID: "run-1", CreatedAtUTC: "2026-01-01T00:00:00Z", FinalMax: 25}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if loaded.FinalMax != 25 {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected not found without error, got ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreRejectsRunWithoutID(t *testing.T) {
	store := newInitializedMemoryStore(t)
	if err := store.SaveRun(context.Background(), model.RunRecord{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), model.RunRecord{ID: "run-1"}); err == nil {
		t.Fatal("expected error before init")
	}
}

func TestMemoryStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)
	for _, run := range []model.RunRecord{
		{ID: "old", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{ID: "new", CreatedAtUTC: "2026-03-01T00:00:00Z"},
		{ID: "mid", CreatedAtUTC: "2026-02-01T00:00:00Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "new" || runs[1].ID != "mid" || runs[2].ID != "old" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestMemoryStoreGenerationHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	input := []model.GenerationSummary{
		{Generation: 1, Elite: "0101", X: 4.9, Max: 24.99, Avg: 12.1},
		{Generation: 2, Elite: "0111", X: 5.0, Max: 25, Avg: 18.4},
	}
	if err := store.SaveGenerationHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	input[0].Max = -1

	output, ok, err := store.GetGenerationHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted history")
	}
	if len(output) != 2 || output[0].Max != 24.99 || output[1].Elite != "0111" {
		t.Fatalf("unexpected history: %+v", output)
	}

	output[1].X = 0
	again, _, _ := store.GetGenerationHistory(ctx, "run-1")
	if again[1].X != 5.0 {
		t.Fatal("expected stored history to be isolated from caller mutation")
	}
}
