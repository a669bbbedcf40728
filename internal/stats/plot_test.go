package stats

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFitnessPlotPNG(t *testing.T) {
	history := sampleHistory()
	path := filepath.Join(t.TempDir(), "plots", "run.png")
	err := WriteFitnessPlot(path, "run-123", []PlotSeries{
		{Label: "MAX", Points: Series(MaxColumn(history))},
		{Label: "AVG", Points: Series(AvgColumn(history))},
	})
	if err != nil {
		t.Fatalf("write plot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty plot image")
	}
}

func TestWriteFitnessPlotRejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFitnessPlot(filepath.Join(dir, "a.png"), "empty", nil); err == nil {
		t.Fatal("expected error without series")
	}
	if err := WriteFitnessPlot(filepath.Join(dir, "b.png"), "empty", []PlotSeries{{Label: "MAX"}}); err == nil {
		t.Fatal("expected error for empty series")
	}
}
