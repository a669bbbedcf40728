package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"genetics/internal/evo"
	"genetics/internal/model"
)

const (
	runIndexFile   = "run_index.json"
	configFile     = "config.json"
	historyFile    = "history.json"
	historyCSVFile = "history.csv"
)

// RunConfig is the configuration of a run as written to config.json,
// including the derived encoding.
type RunConfig struct {
	RunID string `json:"run_id"`
	Name  string `json:"name,omitempty"`
	evo.Config
	ChromosomeLength int     `json:"length"`
	Resolution       float64 `json:"step"`
	TraceMode        string  `json:"trace_mode,omitempty"`
}

type RunArtifacts struct {
	Config      RunConfig                 `json:"config"`
	Status      string                    `json:"status"`
	Error       string                    `json:"error,omitempty"`
	Generations []model.GenerationSummary `json:"generations"`
	Summary     HistorySummary            `json:"summary"`
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	Name           string  `json:"name,omitempty"`
	PopulationSize int     `json:"population_size"`
	Steps          int     `json:"steps"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	Status         string  `json:"status"`
	FinalX         float64 `json:"final_x"`
	FinalMax       float64 `json:"final_max"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, historyFile), artifacts); err != nil {
		return "", err
	}
	if err := WriteHistorySeries(runDir, artifacts.Generations); err != nil {
		return "", err
	}
	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the run index newest first; a missing index is
// empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	if err != nil || !ok {
		return RunConfig{}, ok, err
	}
	return cfg, true, nil
}

func ReadRunArtifacts(baseDir, runID string) (RunArtifacts, bool, error) {
	var artifacts RunArtifacts
	ok, err := readJSON(filepath.Join(baseDir, runID, historyFile), &artifacts)
	if err != nil || !ok {
		return RunArtifacts{}, ok, err
	}
	return artifacts, true, nil
}

// WriteHistorySeries writes the per-generation summaries as CSV for
// spreadsheet and gnuplot consumers.
func WriteHistorySeries(runDir string, history []model.GenerationSummary) error {
	path := filepath.Join(runDir, historyCSVFile)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "elite", "x", "max", "avg", "min", "std_dev"}); err != nil {
		return err
	}
	for _, s := range history {
		if err := writer.Write([]string{
			strconv.Itoa(s.Generation),
			s.Elite,
			formatFloat(s.X),
			formatFloat(s.Max),
			formatFloat(s.Avg),
			formatFloat(s.Min),
			formatFloat(s.StdDev),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadHistorySeries(baseDir, runID string) ([]model.GenerationSummary, bool, error) {
	path := filepath.Join(baseDir, runID, historyCSVFile)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.GenerationSummary{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 7 {
		return nil, false, fmt.Errorf("history series header must have 7 columns")
	}

	history := make([]model.GenerationSummary, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		s, err := parseSeriesRow(record)
		if err != nil {
			return nil, false, fmt.Errorf("history series row %d: %w", len(history)+1, err)
		}
		history = append(history, s)
	}
	return history, true, nil
}

func parseSeriesRow(record []string) (model.GenerationSummary, error) {
	if len(record) < 7 {
		return model.GenerationSummary{}, fmt.Errorf("expected 7 columns, got %d", len(record))
	}
	generation, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return model.GenerationSummary{}, err
	}
	values := make([]float64, 5)
	for i := range values {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+2]), 64)
		if err != nil {
			return model.GenerationSummary{}, err
		}
	}
	return model.GenerationSummary{
		Generation: generation,
		Elite:      record[1],
		X:          values[0],
		Max:        values[1],
		Avg:        values[2],
		Min:        values[3],
		StdDev:     values[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
