package evo

import (
	"testing"

	"genetics/internal/genotype"
)

var unitInterval = genotype.Interval{Left: 0, Right: 16}

// identity fitness: the decoded value itself, so the largest encoding is the elite.
var identity = Quadratic{B: 1}

func chromosome(t *testing.T, bits string) genotype.Chromosome {
	t.Helper()
	genes, err := genotype.ParseGenes(bits)
	if err != nil {
		t.Fatalf("parse genes %q: %v", bits, err)
	}
	return genotype.NewChromosome(unitInterval, 1, genes)
}

func population(t *testing.T, bits ...string) Population {
	t.Helper()
	pop := make(Population, 0, len(bits))
	for _, b := range bits {
		pop = append(pop, chromosome(t, b))
	}
	return pop
}

func bitStrings(pop Population) []string {
	out := make([]string, len(pop))
	for i, c := range pop {
		out[i] = c.String()
	}
	return out
}

func onesPerPosition(pop Population) []int {
	if len(pop) == 0 {
		return nil
	}
	counts := make([]int, pop[0].Len())
	for _, c := range pop {
		for j := 0; j < c.Len(); j++ {
			if c.Gene(j) {
				counts[j]++
			}
		}
	}
	return counts
}
