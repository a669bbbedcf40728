package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"genetics/internal/model"
)

func TestDecodeRunFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("run_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	run, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if run.ID != "run-fixture-1" || run.Length != 22 || run.Seed != 7 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Status != model.RunStatusCompleted {
		t.Fatalf("unexpected status: %s", run.Status)
	}
}

func TestDecodeRunRejectsOldSchema(t *testing.T) {
	data, err := os.ReadFile(fixturePath("run_v0.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestRunCodecRoundTrip(t *testing.T) {
	input := model.RunRecord{
		VersionedRecord: Versioned(),
		ID:              "run-1",
		CreatedAtUTC:    "2026-03-01T10:00:00Z",
		PopulationSize:  4,
		Left:            0,
		Right:           15,
		A:               -1,
		B:               10,
		Precision:       2,
		Length:          11,
		Steps:           5,
		Status:          model.RunStatusFailed,
		Error:           "degenerate fitness",
	}
	data, err := EncodeRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(input, output) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", input, output)
	}
}

func TestDecodeGenerationHistoryMalformed(t *testing.T) {
	if _, err := DecodeGenerationHistory([]byte(`{"generation":1}`)); err == nil {
		t.Fatal("expected error for non-array history payload")
	}
}

func TestSortRunsNewestFirst(t *testing.T) {
	runs := []model.RunRecord{
		{ID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{ID: "c", CreatedAtUTC: "2026-02-01T00:00:00Z"},
		{ID: "b", CreatedAtUTC: "2026-02-01T00:00:00Z"},
	}
	sortRunsNewestFirst(runs)
	got := []string{runs[0].ID, runs[1].ID, runs[2].ID}
	if !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}
