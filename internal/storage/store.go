package storage

import (
	"context"

	"genetics/internal/model"
)

// Store defines persistence operations for run summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns stored runs, newest first.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveGenerationHistory(ctx context.Context, runID string, history []model.GenerationSummary) error
	GetGenerationHistory(ctx context.Context, runID string) ([]model.GenerationSummary, bool, error)
}
