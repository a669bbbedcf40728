package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetics/internal/evo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRunSettingsFromScalarStream(t *testing.T) {
	settings, err := loadRunSettings("-", "", strings.NewReader("4 0 15 -1 10 0 2 0.5 0.01 5\n"))
	require.NoError(t, err)

	cfg := settings.Config
	assert.Equal(t, 4, cfg.PopulationSize)
	assert.Equal(t, 15.0, cfg.Interval.Right)
	assert.Equal(t, evo.Quadratic{A: -1, B: 10, C: 0}, cfg.Fitness)
	assert.Equal(t, 2, cfg.Precision)
	assert.Equal(t, 5, cfg.Steps)
	assert.Zero(t, cfg.Seed, "seed should be left for the run to derive")
	assert.Empty(t, settings.Trace)
}

func TestLoadRunSettingsYAMLOverridesStream(t *testing.T) {
	in := writeFile(t, "Genetics.in", "20 -1 2 -1 1 2 6 0.25 0.01 50")
	cfgPath := writeFile(t, "run.yaml", strings.Join([]string{
		"run_id: yaml-run",
		"steps: 10",
		"seed: 99",
		"search_mode: bucket",
		"trace: all",
	}, "\n"))

	settings, err := loadRunSettings(in, cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "yaml-run", settings.RunID)
	assert.Equal(t, 20, settings.Config.PopulationSize)
	assert.Equal(t, 10, settings.Config.Steps)
	assert.Equal(t, int64(99), settings.Config.Seed)
	assert.Equal(t, evo.SearchBucket, settings.Config.SearchMode)
	assert.Equal(t, "all", settings.Trace)
}

func TestLoadRunSettingsJSONWithoutStream(t *testing.T) {
	cfgPath := writeFile(t, "run.json", `{"population_size": 6, "left": 0, "right": 10, "a": -1, "b": 10, "c": 0, "precision": 3, "elite_identity": "index"}`)

	settings, err := loadRunSettings("", cfgPath, nil)
	require.NoError(t, err)

	cfg := settings.Config
	assert.Equal(t, 6, cfg.PopulationSize)
	assert.Equal(t, 10.0, cfg.Interval.Right)
	assert.Equal(t, evo.EliteByIndex, cfg.EliteIdentity)
	// Unset fields keep their defaults.
	assert.Equal(t, evo.DefaultConfig().Steps, cfg.Steps)
	assert.Equal(t, evo.DefaultConfig().CrossoverProbability, cfg.CrossoverProbability)
}

func TestLoadRunSettingsRejectsBadConfigFiles(t *testing.T) {
	unknown := writeFile(t, "run.yaml", "populaton_size: 3\n")
	_, err := loadRunSettings("", unknown, nil)
	assert.Error(t, err)

	unknownJSON := writeFile(t, "run.json", `{"generations": 3}`)
	_, err = loadRunSettings("", unknownJSON, nil)
	assert.Error(t, err)

	toml := writeFile(t, "run.toml", "steps = 3\n")
	_, err = loadRunSettings("", toml, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadRunSettingsReportsStreamErrors(t *testing.T) {
	_, err := loadRunSettings("-", "", strings.NewReader("4 0 15"))
	require.Error(t, err)
	assert.ErrorIs(t, err, evo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "stdin")

	_, err = loadRunSettings(filepath.Join(t.TempDir(), "missing.in"), "", nil)
	assert.Error(t, err)
}

func TestApplyFlagsOnlyOverridesSetFlags(t *testing.T) {
	settings := runSettings{Config: evo.DefaultConfig(), Trace: "none"}
	settings.applyFlags(map[string]bool{"steps": true, "seed": true, "elite": true}, flagValues{
		steps:      7,
		seed:       3,
		elite:      "index",
		population: 999,
		trace:      "all",
	})

	assert.Equal(t, 7, settings.Config.Steps)
	assert.Equal(t, int64(3), settings.Config.Seed)
	assert.Equal(t, evo.EliteByIndex, settings.Config.EliteIdentity)
	assert.Equal(t, evo.DefaultConfig().PopulationSize, settings.Config.PopulationSize)
	assert.Equal(t, "none", settings.Trace)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(os.Stderr, "loud")
	assert.Error(t, err)

	logger, err := newLogger(os.Stderr, "debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
