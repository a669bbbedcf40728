package stats

import (
	"os"
	"path/filepath"
	"testing"

	"genetics/internal/evo"
	"genetics/internal/model"
)

func sampleHistory() []model.GenerationSummary {
	return []model.GenerationSummary{
		{Generation: 1, Elite: "0110", X: 4.5, Max: 24.75, Avg: 10, Min: -3, StdDev: 8.5},
		{Generation: 2, Elite: "1110", X: 4.75, Max: 24.9375, Avg: 15.25, Min: 1, StdDev: 6},
		{Generation: 3, Elite: "1010", X: 5, Max: 25, Avg: 20.5, Min: 9, StdDev: 4.25},
	}
}

func TestWriteAndReadRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	cfg := evo.DefaultConfig()
	cfg.Seed = 42

	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:            "run-123",
			Name:             "Genetics",
			Config:           cfg,
			ChromosomeLength: cfg.Length(),
			Resolution:       cfg.Step(),
			TraceMode:        "first",
		},
		Status:      model.RunStatusCompleted,
		Generations: sampleHistory(),
		Summary:     SummarizeHistory(sampleHistory()),
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range []string{"config.json", "history.json", "history.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	loadedCfg, ok, err := ReadRunConfig(baseDir, "run-123")
	if err != nil || !ok {
		t.Fatalf("read config: ok=%t err=%v", ok, err)
	}
	if loadedCfg.Seed != 42 || loadedCfg.ChromosomeLength != cfg.Length() || loadedCfg.Interval != cfg.Interval {
		t.Fatalf("unexpected config: %+v", loadedCfg)
	}

	loaded, ok, err := ReadRunArtifacts(baseDir, "run-123")
	if err != nil || !ok {
		t.Fatalf("read artifacts: ok=%t err=%v", ok, err)
	}
	if len(loaded.Generations) != 3 || loaded.Summary.FinalMax != 25 {
		t.Fatalf("unexpected artifacts: %+v", loaded)
	}

	series, ok, err := ReadHistorySeries(baseDir, "run-123")
	if err != nil || !ok {
		t.Fatalf("read series: ok=%t err=%v", ok, err)
	}
	if len(series) != 3 || series[1].Elite != "1110" || series[1].Max != 24.9375 || series[2].StdDev != 4.25 {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReadMissingArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	if _, ok, err := ReadRunConfig(baseDir, "nope"); ok || err != nil {
		t.Fatalf("expected missing config, got ok=%t err=%v", ok, err)
	}
	if _, ok, err := ReadRunArtifacts(baseDir, "nope"); ok || err != nil {
		t.Fatalf("expected missing artifacts, got ok=%t err=%v", ok, err)
	}
	if _, ok, err := ReadHistorySeries(baseDir, "nope"); ok || err != nil {
		t.Fatalf("expected missing series, got ok=%t err=%v", ok, err)
	}
}

func TestRunIndexOrderingAndReplace(t *testing.T) {
	baseDir := t.TempDir()

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list empty index: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}

	for _, entry := range []RunIndexEntry{
		{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", FinalMax: 1},
		{RunID: "b", CreatedAtUTC: "2026-02-01T00:00:00Z", FinalMax: 2},
		{RunID: "c", CreatedAtUTC: "2026-02-01T00:00:00Z", FinalMax: 3},
		{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", FinalMax: 10},
	} {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].RunID != "c" || entries[1].RunID != "b" || entries[2].RunID != "a" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[2].FinalMax != 10 {
		t.Fatalf("expected replaced entry, got %+v", entries[2])
	}

	if err := AppendRunIndex(baseDir, RunIndexEntry{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReadHistorySeriesRejectsMalformedRow(t *testing.T) {
	baseDir := t.TempDir()
	runDir := filepath.Join(baseDir, "run-1")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := "generation,elite,x,max,avg,min,std_dev\n1,01,abc,1,1,1,0\n"
	if err := os.WriteFile(filepath.Join(runDir, "history.csv"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadHistorySeries(baseDir, "run-1"); err == nil {
		t.Fatal("expected parse error")
	}
}
