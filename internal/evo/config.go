package evo

import (
	"errors"
	"fmt"
	"math"

	"genetics/internal/genotype"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDegenerateFitness    = errors.New("degenerate fitness")
	ErrIndexOutOfRange      = genotype.ErrIndexOutOfRange
)

const (
	minChromosomeLength = 2
	maxChromosomeLength = 62
)

// EliteIdentity decides which individuals crossover and mutation leave
// untouched.
type EliteIdentity string

const (
	// EliteByValue protects every chromosome bit-identical to the elite.
	EliteByValue EliteIdentity = "value"
	// EliteByIndex protects only the elite's own position.
	EliteByIndex EliteIdentity = "index"
)

// SearchMode selects how a roulette draw is mapped to an individual.
type SearchMode string

const (
	// SearchCompat accepts a draw when it lies in [q[mid-1], q[mid+1]] and
	// falls back to left-1 when the loop exits without a hit.
	SearchCompat SearchMode = "compat"
	// SearchBucket maps a draw u to the index i with q[i] <= u < q[i+1].
	SearchBucket SearchMode = "bucket"
)

type Config struct {
	PopulationSize       int               `json:"population_size" yaml:"population_size"`
	Interval             genotype.Interval `json:"interval" yaml:"interval"`
	Fitness              Quadratic         `json:"fitness" yaml:"fitness"`
	Precision            int               `json:"precision" yaml:"precision"`
	CrossoverProbability float64           `json:"crossover_probability" yaml:"crossover_probability"`
	MutationProbability  float64           `json:"mutation_probability" yaml:"mutation_probability"`
	Steps                int               `json:"steps" yaml:"steps"`
	Seed                 int64             `json:"seed" yaml:"seed"`
	EliteIdentity        EliteIdentity     `json:"elite_identity,omitempty" yaml:"elite_identity,omitempty"`
	SearchMode           SearchMode        `json:"search_mode,omitempty" yaml:"search_mode,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:       20,
		Interval:             genotype.Interval{Left: -1, Right: 2},
		Fitness:              Quadratic{A: -1, B: 1, C: 2},
		Precision:            6,
		CrossoverProbability: 0.25,
		MutationProbability:  0.01,
		Steps:                50,
		Seed:                 1,
		EliteIdentity:        EliteByValue,
		SearchMode:           SearchCompat,
	}
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population size must be > 0 (got %d)", ErrInvalidConfiguration, c.PopulationSize)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be >= 1 (got %d)", ErrInvalidConfiguration, c.Steps)
	}
	if c.Precision < 0 {
		return fmt.Errorf("%w: precision must be >= 0 (got %d)", ErrInvalidConfiguration, c.Precision)
	}
	if err := c.Interval.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if !isFinite(c.Fitness.A) || !isFinite(c.Fitness.B) || !isFinite(c.Fitness.C) {
		return fmt.Errorf("%w: fitness coefficients must be finite (got %v %v %v)", ErrInvalidConfiguration, c.Fitness.A, c.Fitness.B, c.Fitness.C)
	}
	if !(c.CrossoverProbability >= 0 && c.CrossoverProbability <= 1) {
		return fmt.Errorf("%w: crossover probability must be in [0,1] (got %v)", ErrInvalidConfiguration, c.CrossoverProbability)
	}
	if !(c.MutationProbability >= 0 && c.MutationProbability <= 1) {
		return fmt.Errorf("%w: mutation probability must be in [0,1] (got %v)", ErrInvalidConfiguration, c.MutationProbability)
	}
	switch c.EliteIdentity {
	case "", EliteByValue, EliteByIndex:
	default:
		return fmt.Errorf("%w: unsupported elite identity %q", ErrInvalidConfiguration, c.EliteIdentity)
	}
	switch c.SearchMode {
	case "", SearchCompat, SearchBucket:
	default:
		return fmt.Errorf("%w: unsupported search mode %q", ErrInvalidConfiguration, c.SearchMode)
	}
	length := c.Length()
	if length < minChromosomeLength || length > maxChromosomeLength {
		return fmt.Errorf("%w: chromosome length must be in [%d,%d] (got %d for span %v at precision %d)",
			ErrInvalidConfiguration, minChromosomeLength, maxChromosomeLength, length, c.Interval.Span(), c.Precision)
	}
	return nil
}

// Length is the number of bits needed to resolve Precision decimal digits
// over the interval.
func (c Config) Length() int {
	resolution := c.Interval.Span() * math.Pow(10, float64(c.Precision))
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return 0
	}
	bits := math.Ceil(math.Log2(resolution))
	if bits > maxChromosomeLength+1 {
		return maxChromosomeLength + 1
	}
	if bits < 0 {
		return 0
	}
	return int(bits)
}

// Step is the decoded distance between two consecutive encodings.
func (c Config) Step() float64 {
	return c.Interval.Span() / math.Ldexp(1, c.Length())
}

func (c Config) eliteIdentity() EliteIdentity {
	if c.EliteIdentity == "" {
		return EliteByValue
	}
	return c.EliteIdentity
}

func (c Config) searchMode() SearchMode {
	if c.SearchMode == "" {
		return SearchCompat
	}
	return c.SearchMode
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
