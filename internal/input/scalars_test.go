package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetics/internal/evo"
)

func TestReadConfig(t *testing.T) {
	base := evo.DefaultConfig()
	base.Seed = 99
	base.SearchMode = evo.SearchBucket

	cfg, err := ReadConfig(strings.NewReader("4\n0 15\n-1 10 0\n2\n0.5 0.01\n5\n"), base)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.PopulationSize)
	assert.Equal(t, 0.0, cfg.Interval.Left)
	assert.Equal(t, 15.0, cfg.Interval.Right)
	assert.Equal(t, evo.Quadratic{A: -1, B: 10, C: 0}, cfg.Fitness)
	assert.Equal(t, 2, cfg.Precision)
	assert.Equal(t, 0.5, cfg.CrossoverProbability)
	assert.Equal(t, 0.01, cfg.MutationProbability)
	assert.Equal(t, 5, cfg.Steps)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, evo.SearchBucket, cfg.SearchMode)
	require.NoError(t, cfg.Validate())
}

func TestReadConfigIgnoresTrailingTokens(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader("20 -1 2 -1 1 2 6 0.25 0.01 50 extra tokens"), evo.Config{})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Steps)
}

func TestReadConfigMissingToken(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("4 0 15 -1 10 0 2 0.5"), evo.Config{})
	require.ErrorIs(t, err, evo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "mutation_probability")
}

func TestReadConfigMalformedToken(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("four 0 15 -1 10 0 2 0.5 0.01 5"), evo.Config{})
	require.ErrorIs(t, err, evo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "population_size")

	_, err = ReadConfig(strings.NewReader("4 0 15 -1 10 0 2.5 0.5 0.01 5"), evo.Config{})
	require.ErrorIs(t, err, evo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "precision")
}

func TestReadConfigEmptyInput(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("   \n"), evo.Config{})
	require.ErrorIs(t, err, evo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "population_size")
}
