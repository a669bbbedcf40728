package evo

import (
	"fmt"
	"math/rand"
)

// MutatedChromosome lists the gene positions flipped in one individual.
type MutatedChromosome struct {
	Index     int   `json:"index"`
	Positions []int `json:"positions"`
}

type MutationTrace struct {
	Probability float64             `json:"probability"`
	EliteIndex  int                 `json:"elite_index"`
	Mutated     []MutatedChromosome `json:"mutated,omitempty"`
}

// Mutate flips every gene of every non-elite individual independently with
// the given probability.
func Mutate(rng *rand.Rand, pop Population, f Quadratic, identity EliteIdentity, probability float64) (Population, MutationTrace, error) {
	if rng == nil {
		return nil, MutationTrace{}, fmt.Errorf("random source is required")
	}
	eliteIdx, _ := pop.Elite(f)
	next := pop.Clone()
	trace := MutationTrace{Probability: probability, EliteIndex: eliteIdx}
	for i := range next {
		if pop.isProtected(i, eliteIdx, identity) {
			continue
		}
		var positions []int
		for j := 0; j < next[i].Len(); j++ {
			if rng.Float64() < probability {
				if err := next[i].FlipGene(j); err != nil {
					return nil, MutationTrace{}, err
				}
				positions = append(positions, j)
			}
		}
		if len(positions) > 0 {
			trace.Mutated = append(trace.Mutated, MutatedChromosome{Index: i, Positions: positions})
		}
	}
	return next, trace, nil
}
