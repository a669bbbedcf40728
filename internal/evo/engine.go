package evo

import (
	"context"
	"fmt"
	"math/rand"

	"genetics/internal/genotype"
)

// Summary is the per-generation report line: the elite's decoded value,
// its fitness and the population average.
type Summary struct {
	Generation int                 `json:"generation"`
	EliteIndex int                 `json:"elite_index"`
	Elite      genotype.Chromosome `json:"-"`
	X          float64             `json:"x"`
	Max        float64             `json:"max"`
	Avg        float64             `json:"avg"`
	Min        float64             `json:"min"`
	StdDev     float64             `json:"std_dev"`
}

// GenerationTrace records every decision of one generation together with
// the population after each stage.
type GenerationTrace struct {
	Generation     int            `json:"generation"`
	Selection      SelectionTrace `json:"selection"`
	AfterSelection Population     `json:"-"`
	Crossover      CrossoverTrace `json:"crossover"`
	AfterCrossover Population     `json:"-"`
	Mutation       MutationTrace  `json:"mutation"`
	AfterMutation  Population     `json:"-"`
	Summary        Summary        `json:"summary"`
}

type RunResult struct {
	Initial Summary   `json:"initial"`
	History []Summary `json:"history"`
	Final   Summary   `json:"final"`
}

// Engine owns one run: its configuration, random source and current
// population.
type Engine struct {
	cfg        Config
	rng        *rand.Rand
	length     int
	step       float64
	population Population
	generation int
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(cfg)
	pop, err := RandomPopulation(e.rng, cfg.PopulationSize, cfg.Interval, e.length, e.step)
	if err != nil {
		return nil, err
	}
	e.population = pop
	return e, nil
}

// NewEngineWithPopulation starts a run from the given chromosomes instead
// of a random population. Genes are re-bound to the configured interval and
// step.
func NewEngineWithPopulation(cfg Config, pop Population) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(pop) != cfg.PopulationSize {
		return nil, fmt.Errorf("%w: population has %d chromosomes, want %d", ErrInvalidConfiguration, len(pop), cfg.PopulationSize)
	}
	e := newEngine(cfg)
	e.population = make(Population, len(pop))
	for i, c := range pop {
		if c.Len() != e.length {
			return nil, fmt.Errorf("%w: chromosome %d has %d genes, want %d", ErrInvalidConfiguration, i, c.Len(), e.length)
		}
		e.population[i] = genotype.NewChromosome(cfg.Interval, e.step, c.Genes())
	}
	return e, nil
}

func newEngine(cfg Config) *Engine {
	cfg.EliteIdentity = cfg.eliteIdentity()
	cfg.SearchMode = cfg.searchMode()
	return &Engine{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		length: cfg.Length(),
		step:   cfg.Step(),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Length() int {
	return e.length
}

func (e *Engine) Step() float64 {
	return e.step
}

func (e *Engine) Generation() int {
	return e.generation
}

// Population returns a copy of the current population.
func (e *Engine) Population() Population {
	return e.population.Clone()
}

func (e *Engine) Summary() Summary {
	return summarize(e.generation, e.population, e.cfg.Fitness)
}

// NextGeneration replaces the population with selection, then crossover,
// then mutation output.
func (e *Engine) NextGeneration(ctx context.Context) (GenerationTrace, error) {
	if err := ctx.Err(); err != nil {
		return GenerationTrace{}, err
	}
	generation := e.generation + 1
	trace := GenerationTrace{Generation: generation}

	selected, selection, err := Select(e.rng, e.population, e.cfg.Fitness, e.cfg.SearchMode)
	if err != nil {
		return GenerationTrace{}, fmt.Errorf("generation %d selection: %w", generation, err)
	}
	trace.Selection = selection
	trace.AfterSelection = selected

	crossed, crossover, err := Crossover(e.rng, selected, e.cfg.Fitness, e.cfg.EliteIdentity, e.cfg.CrossoverProbability)
	if err != nil {
		return GenerationTrace{}, fmt.Errorf("generation %d crossover: %w", generation, err)
	}
	trace.Crossover = crossover
	trace.AfterCrossover = crossed

	mutated, mutation, err := Mutate(e.rng, crossed, e.cfg.Fitness, e.cfg.EliteIdentity, e.cfg.MutationProbability)
	if err != nil {
		return GenerationTrace{}, fmt.Errorf("generation %d mutation: %w", generation, err)
	}
	trace.Mutation = mutation
	trace.AfterMutation = mutated

	e.population = mutated
	e.generation = generation
	trace.Summary = e.Summary()
	return trace, nil
}

// Run executes exactly Steps generations. observe, when non-nil, is called
// after each generation; an observer error stops the run.
func (e *Engine) Run(ctx context.Context, observe func(GenerationTrace) error) (RunResult, error) {
	result := RunResult{
		Initial: e.Summary(),
		History: make([]Summary, 0, e.cfg.Steps),
	}
	result.Final = result.Initial
	for i := 0; i < e.cfg.Steps; i++ {
		trace, err := e.NextGeneration(ctx)
		if err != nil {
			return result, err
		}
		result.History = append(result.History, trace.Summary)
		result.Final = trace.Summary
		if observe != nil {
			if err := observe(trace); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func summarize(generation int, pop Population, f Quadratic) Summary {
	idx, elite := pop.Elite(f)
	stats := pop.Stats(f)
	s := Summary{
		Generation: generation,
		EliteIndex: idx,
		Avg:        pop.AverageFitness(f),
		Min:        stats.Min,
		StdDev:     stats.StdDev,
	}
	if idx >= 0 {
		s.Elite = elite.Clone()
		s.X = elite.Decode()
		s.Max = f.Eval(s.X)
	}
	return s
}
