package evo

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"genetics/internal/genotype"
)

// Population is an ordered set of chromosomes sharing length, interval and
// step.
type Population []genotype.Chromosome

// Stats summarises the fitness distribution of a population.
type Stats struct {
	Best   float64 `json:"best"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	StdDev float64 `json:"std_dev"`
}

func RandomPopulation(rng *rand.Rand, size int, interval genotype.Interval, length int, step float64) (Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0 (got %d)", size)
	}
	pop := make(Population, 0, size)
	for i := 0; i < size; i++ {
		c, err := genotype.RandomChromosome(rng, interval, length, step)
		if err != nil {
			return nil, err
		}
		pop = append(pop, c)
	}
	return pop, nil
}

func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}

func (p Population) Fitness(f Quadratic) []float64 {
	values := make([]float64, len(p))
	for i, c := range p {
		values[i] = f.Eval(c.Decode())
	}
	return values
}

func (p Population) TotalFitness(f Quadratic) float64 {
	return floats.Sum(p.Fitness(f))
}

func (p Population) AverageFitness(f Quadratic) float64 {
	if len(p) == 0 {
		return 0
	}
	return stat.Mean(p.Fitness(f), nil)
}

// Elite returns the first chromosome with strictly maximal fitness, or -1
// for an empty population.
func (p Population) Elite(f Quadratic) (int, genotype.Chromosome) {
	if len(p) == 0 {
		return -1, genotype.Chromosome{}
	}
	best := 0
	bestFitness := f.Eval(p[0].Decode())
	for i := 1; i < len(p); i++ {
		if fitness := f.Eval(p[i].Decode()); fitness > bestFitness {
			best = i
			bestFitness = fitness
		}
	}
	return best, p[best]
}

func (p Population) EliteFitness(f Quadratic) float64 {
	idx, elite := p.Elite(f)
	if idx < 0 {
		return 0
	}
	return f.Eval(elite.Decode())
}

func (p Population) Stats(f Quadratic) Stats {
	if len(p) == 0 {
		return Stats{}
	}
	values := p.Fitness(f)
	s := Stats{
		Best: floats.Max(values),
		Min:  floats.Min(values),
	}
	if len(values) < 2 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

// isProtected reports whether idx is treated as the elite by crossover and
// mutation.
func (p Population) isProtected(idx, eliteIdx int, identity EliteIdentity) bool {
	if eliteIdx < 0 {
		return false
	}
	if identity == EliteByIndex {
		return idx == eliteIdx
	}
	return p[idx].Equal(p[eliteIdx])
}
