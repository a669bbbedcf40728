// Package genetics is the programmatic entry point for running and
// inspecting genetic-algorithm runs that maximise a quadratic over an
// interval.
package genetics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"genetics/internal/evo"
	"genetics/internal/model"
	"genetics/internal/report"
	"genetics/internal/stats"
	"genetics/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultDBPath       = "genetics.db"
	defaultRunsLimit    = 20

	// createdAtLayout is fixed width so timestamps order lexically.
	createdAtLayout = "2006-01-02T15:04:05.000000000Z"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       *slog.Logger
}

type Client struct {
	store       storage.Store
	initialized bool
	logger      *slog.Logger

	artifactsDir string
}

type RunRequest struct {
	// RunID is generated when empty.
	RunID  string
	Name   string
	Config evo.Config
	Trace  report.TraceMode
	// Report receives the human-readable report; nil disables it.
	Report io.Writer
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Seed         int64
	Length       int
	Step         float64
	History      []evo.Summary
	Final        evo.Summary
	Stats        stats.HistorySummary
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	Name           string
	CreatedAtUTC   string
	Seed           int64
	PopulationSize int
	Steps          int
	Generations    int
	Status         string
	FinalX         float64
	FinalMax       float64
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type PlotRequest struct {
	RunIDs []string
	Latest bool
	// Mean plots the generation-wise average MAX of all runs instead of one
	// line per run.
	Mean bool
	Out  string
}

type PlotSummary struct {
	RunIDs []string
	Path   string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("store ready", "backend", storeKind)

	return &Client{
		store:        store,
		logger:       logger,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.initialized = true
	return nil
}

// Run executes one run, writes its report to req.Report and persists its
// summaries. A run aborted by the engine is still persisted with a failed
// status and the engine error is returned alongside the partial summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	cfg := req.Config
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if req.Trace == "" {
		req.Trace = report.TraceFirst
	}

	engine, err := evo.NewEngine(cfg)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.logger.Info("run started",
		"run_id", runID,
		"seed", cfg.Seed,
		"population", cfg.PopulationSize,
		"steps", cfg.Steps,
		"length", engine.Length(),
	)

	var observe func(evo.GenerationTrace) error
	var printer *report.Printer
	if req.Report != nil {
		printer = report.NewPrinter(req.Report, cfg)
		printer.Input(cfg)
		printer.Population("Initial population", engine.Population())
		observe = printer.Observer(req.Trace)
	}

	result, runErr := engine.Run(ctx, observe)
	if printer != nil {
		printer.Evolution(cfg.Steps, result.History)
		if runErr == nil {
			runErr = printer.Err()
		}
	}

	history := generationSummaries(result.History)
	summary := RunSummary{
		RunID:   runID,
		Seed:    cfg.Seed,
		Length:  engine.Length(),
		Step:    engine.Step(),
		History: result.History,
		Final:   result.Final,
		Stats:   stats.SummarizeHistory(history),
	}

	record := model.RunRecord{
		VersionedRecord:      storage.Versioned(),
		ID:                   runID,
		Name:                 req.Name,
		CreatedAtUTC:         now.Format(createdAtLayout),
		PopulationSize:       cfg.PopulationSize,
		Left:                 cfg.Interval.Left,
		Right:                cfg.Interval.Right,
		A:                    cfg.Fitness.A,
		B:                    cfg.Fitness.B,
		C:                    cfg.Fitness.C,
		Precision:            cfg.Precision,
		Length:               engine.Length(),
		CrossoverProbability: cfg.CrossoverProbability,
		MutationProbability:  cfg.MutationProbability,
		Steps:                cfg.Steps,
		Seed:                 cfg.Seed,
		EliteIdentity:        string(engine.Config().EliteIdentity),
		SearchMode:           string(engine.Config().SearchMode),
		Generations:          len(history),
		Status:               model.RunStatusCompleted,
		FinalX:               result.Final.X,
		FinalMax:             result.Final.Max,
		FinalAvg:             result.Final.Avg,
	}
	if runErr != nil {
		record.Status = model.RunStatusFailed
		record.Error = runErr.Error()
	}

	// Persist even when ctx was cancelled mid-run.
	runDir, err := c.persist(context.WithoutCancel(ctx), record, history, stats.RunConfig{
		RunID:            runID,
		Name:             req.Name,
		Config:           engine.Config(),
		ChromosomeLength: engine.Length(),
		Resolution:       engine.Step(),
		TraceMode:        string(req.Trace),
	}, summary.Stats)
	if err != nil {
		return summary, errors.Join(runErr, err)
	}
	summary.ArtifactsDir = runDir

	if runErr != nil {
		c.logger.Warn("run failed", "run_id", runID, "generations", len(history), "err", runErr)
		return summary, runErr
	}
	c.logger.Info("run finished",
		"run_id", runID,
		"x", result.Final.X,
		"max", result.Final.Max,
		"avg", result.Final.Avg,
		"artifacts", runDir,
	)
	return summary, nil
}

func (c *Client) persist(ctx context.Context, record model.RunRecord, history []model.GenerationSummary, cfg stats.RunConfig, summary stats.HistorySummary) (string, error) {
	if err := c.store.SaveRun(ctx, record); err != nil {
		return "", fmt.Errorf("save run %s: %w", record.ID, err)
	}
	if err := c.store.SaveGenerationHistory(ctx, record.ID, history); err != nil {
		return "", fmt.Errorf("save generation history %s: %w", record.ID, err)
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config:      cfg,
		Status:      record.Status,
		Error:       record.Error,
		Generations: history,
		Summary:     summary,
	})
	if err != nil {
		return "", fmt.Errorf("write artifacts %s: %w", record.ID, err)
	}
	if err := stats.AppendRunIndex(c.artifactsDir, runIndexEntry(record)); err != nil {
		return "", fmt.Errorf("append run index: %w", err)
	}
	c.logger.Debug("run persisted", "run_id", record.ID, "dir", runDir)
	return filepath.Clean(runDir), nil
}

// Runs lists runs newest first. Runs known to the store take precedence
// over entries that only exist in the on-disk index.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	stored, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stored))
	merged := make([]stats.RunIndexEntry, 0, len(stored)+len(entries))
	for _, record := range stored {
		seen[record.ID] = struct{}{}
		merged = append(merged, runIndexEntry(record))
	}
	for _, entry := range entries {
		if _, ok := seen[entry.RunID]; ok {
			continue
		}
		merged = append(merged, entry)
	}
	sortIndexNewestFirst(merged)
	if len(merged) > req.Limit {
		merged = merged[:req.Limit]
	}

	out := make([]RunItem, 0, len(merged))
	for _, e := range merged {
		out = append(out, RunItem{
			RunID:          e.RunID,
			Name:           e.Name,
			CreatedAtUTC:   e.CreatedAtUTC,
			Seed:           e.Seed,
			PopulationSize: e.PopulationSize,
			Steps:          e.Steps,
			Generations:    e.Generations,
			Status:         e.Status,
			FinalX:         e.FinalX,
			FinalMax:       e.FinalMax,
		})
	}
	return out, nil
}

// History returns the per-generation summaries of a run, read from the
// store or, for runs recorded by another process, from its artifacts.
func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.GenerationSummary, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, errors.New("history requires run id or latest")
	}

	history, err := c.history(ctx, runID)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

// Plot renders the fitness curves of one or more runs to an image file.
func (c *Client) Plot(ctx context.Context, req PlotRequest) (PlotSummary, error) {
	if len(req.RunIDs) > 0 && req.Latest {
		return PlotSummary{}, errors.New("use either run ids or latest")
	}
	runIDs := append([]string(nil), req.RunIDs...)
	if req.Latest {
		runID, err := c.resolveRunID(ctx, "", true)
		if err != nil {
			return PlotSummary{}, err
		}
		runIDs = []string{runID}
	}
	if len(runIDs) == 0 {
		return PlotSummary{}, errors.New("plot requires run ids or latest")
	}

	histories := make([][]model.GenerationSummary, 0, len(runIDs))
	for _, runID := range runIDs {
		history, err := c.history(ctx, runID)
		if err != nil {
			return PlotSummary{}, err
		}
		if len(history) == 0 {
			return PlotSummary{}, fmt.Errorf("run %s has no generations to plot", runID)
		}
		histories = append(histories, history)
	}

	var (
		series []stats.PlotSeries
		title  string
	)
	switch {
	case len(runIDs) == 1:
		title = runIDs[0]
		series = []stats.PlotSeries{
			{Label: "MAX", Points: stats.Series(stats.MaxColumn(histories[0]))},
			{Label: "AVG", Points: stats.Series(stats.AvgColumn(histories[0]))},
		}
	case req.Mean:
		title = fmt.Sprintf("mean of %d runs", len(runIDs))
		maxLists := make([][]float64, 0, len(histories))
		avgLists := make([][]float64, 0, len(histories))
		for _, history := range histories {
			maxLists = append(maxLists, stats.MaxColumn(history))
			avgLists = append(avgLists, stats.AvgColumn(history))
		}
		series = []stats.PlotSeries{
			{Label: "mean MAX", Points: stats.AverageSeries(maxLists)},
			{Label: "mean AVG", Points: stats.AverageSeries(avgLists)},
		}
	default:
		title = fmt.Sprintf("%d runs", len(runIDs))
		for i, history := range histories {
			series = append(series, stats.PlotSeries{Label: shortID(runIDs[i]), Points: stats.Series(stats.MaxColumn(history))})
		}
	}

	out := req.Out
	if out == "" {
		if len(runIDs) == 1 {
			out = filepath.Join(c.artifactsDir, runIDs[0], "fitness.png")
		} else {
			out = filepath.Join(c.artifactsDir, "fitness-compare.png")
		}
	}
	if err := stats.WriteFitnessPlot(out, title, series); err != nil {
		return PlotSummary{}, err
	}
	c.logger.Info("plot written", "path", out, "runs", len(runIDs))
	return PlotSummary{RunIDs: runIDs, Path: filepath.Clean(out)}, nil
}

func (c *Client) history(ctx context.Context, runID string) ([]model.GenerationSummary, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetGenerationHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return history, nil
	}
	artifacts, ok, err := stats.ReadRunArtifacts(c.artifactsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("history not found for run id: %s", runID)
	}
	return artifacts.Generations, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if !latest {
		return runID, nil
	}
	runs, err := c.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[0].RunID, nil
}

func generationSummaries(history []evo.Summary) []model.GenerationSummary {
	out := make([]model.GenerationSummary, 0, len(history))
	for _, s := range history {
		out = append(out, model.GenerationSummary{
			Generation: s.Generation,
			Elite:      s.Elite.String(),
			X:          s.X,
			Max:        s.Max,
			Avg:        s.Avg,
			Min:        s.Min,
			StdDev:     s.StdDev,
		})
	}
	return out
}

func runIndexEntry(record model.RunRecord) stats.RunIndexEntry {
	return stats.RunIndexEntry{
		RunID:          record.ID,
		Name:           record.Name,
		PopulationSize: record.PopulationSize,
		Steps:          record.Steps,
		Generations:    record.Generations,
		Seed:           record.Seed,
		Status:         record.Status,
		FinalX:         record.FinalX,
		FinalMax:       record.FinalMax,
		CreatedAtUTC:   record.CreatedAtUTC,
	}
}

func sortIndexNewestFirst(entries []stats.RunIndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
