package evo

import (
	"fmt"
	"math/rand"

	"genetics/internal/genotype"
)

// CoinFlip records the crossover draw of one non-elite individual.
type CoinFlip struct {
	Index       int     `json:"index"`
	U           float64 `json:"u"`
	Participant bool    `json:"participant"`
}

// Crossing records one single-point recombination between two population
// slots.
type Crossing struct {
	First  int                    `json:"first"`
	Second int                    `json:"second"`
	Cut    int                    `json:"cut"`
	Before [2]genotype.Chromosome `json:"-"`
	After  [2]genotype.Chromosome `json:"-"`
}

type CrossoverTrace struct {
	Probability  float64    `json:"probability"`
	EliteIndex   int        `json:"elite_index"`
	Flips        []CoinFlip `json:"flips"`
	Participants []int      `json:"participants"`
	// Triple holds the two crossings of a triple crossover; both share a cut.
	Triple []Crossing `json:"triple,omitempty"`
	Pairs  []Crossing `json:"pairs,omitempty"`
}

// MarkForCrossover flips a coin for every non-elite individual and returns
// the indices whose draw fell below probability, in population order.
func MarkForCrossover(rng *rand.Rand, pop Population, eliteIdx int, identity EliteIdentity, probability float64) ([]int, []CoinFlip) {
	var marked []int
	flips := make([]CoinFlip, 0, len(pop))
	for i := range pop {
		if pop.isProtected(i, eliteIdx, identity) {
			continue
		}
		u := rng.Float64()
		flip := CoinFlip{Index: i, U: u, Participant: u < probability}
		if flip.Participant {
			marked = append(marked, i)
		}
		flips = append(flips, flip)
	}
	return marked, flips
}

// CrossAt swaps the prefixes [0, cut) of a and b.
func CrossAt(a, b *genotype.Chromosome, cut int) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: chromosome lengths differ (%d != %d)", ErrIndexOutOfRange, a.Len(), b.Len())
	}
	if cut < 0 || cut > a.Len() {
		return fmt.Errorf("%w: cut point %d outside [0,%d]", ErrIndexOutOfRange, cut, a.Len())
	}
	genesA := a.Genes()
	genesB := b.Genes()
	for i := 0; i < cut; i++ {
		genesA[i], genesB[i] = genesB[i], genesA[i]
	}
	if err := a.SetGenes(genesA); err != nil {
		return err
	}
	return b.SetGenes(genesB)
}

// CutPoint draws a cut uniformly from [1, length-1].
func CutPoint(rng *rand.Rand, length int) (int, error) {
	if length < 2 {
		return 0, fmt.Errorf("%w: chromosome length %d has no interior cut point", ErrIndexOutOfRange, length)
	}
	return 1 + rng.Intn(length-1), nil
}

// Recombine crosses the marked individuals of a copy of pop. A single
// participant leaves the population unchanged. An odd count triggers a
// triple crossover among the last three participants before the rest are
// paired in order.
func Recombine(rng *rand.Rand, pop Population, marked []int) (Population, []Crossing, []Crossing, error) {
	next := pop.Clone()
	size := len(marked)
	if size <= 1 {
		return next, nil, nil, nil
	}
	for _, idx := range marked {
		if idx < 0 || idx >= len(next) {
			return nil, nil, nil, fmt.Errorf("%w: participant %d outside population of %d", ErrIndexOutOfRange, idx, len(next))
		}
	}
	length := next[marked[0]].Len()

	var triple []Crossing
	if size%2 == 1 {
		cut, err := CutPoint(rng, length)
		if err != nil {
			return nil, nil, nil, err
		}
		first := marked[size-3]
		for _, second := range []int{marked[size-2], marked[size-1]} {
			crossing, err := cross(next, first, second, cut)
			if err != nil {
				return nil, nil, nil, err
			}
			triple = append(triple, crossing)
		}
		size -= 3
	}

	pairs := make([]Crossing, 0, size/2)
	for i := 0; i < size; i += 2 {
		cut, err := CutPoint(rng, length)
		if err != nil {
			return nil, nil, nil, err
		}
		crossing, err := cross(next, marked[i], marked[i+1], cut)
		if err != nil {
			return nil, nil, nil, err
		}
		pairs = append(pairs, crossing)
	}
	return next, triple, pairs, nil
}

func cross(pop Population, first, second, cut int) (Crossing, error) {
	crossing := Crossing{
		First:  first,
		Second: second,
		Cut:    cut,
		Before: [2]genotype.Chromosome{pop[first].Clone(), pop[second].Clone()},
	}
	if err := CrossAt(&pop[first], &pop[second], cut); err != nil {
		return Crossing{}, err
	}
	crossing.After = [2]genotype.Chromosome{pop[first].Clone(), pop[second].Clone()}
	return crossing, nil
}

// Crossover marks participants and recombines them.
func Crossover(rng *rand.Rand, pop Population, f Quadratic, identity EliteIdentity, probability float64) (Population, CrossoverTrace, error) {
	if rng == nil {
		return nil, CrossoverTrace{}, fmt.Errorf("random source is required")
	}
	eliteIdx, _ := pop.Elite(f)
	marked, flips := MarkForCrossover(rng, pop, eliteIdx, identity, probability)
	next, triple, pairs, err := Recombine(rng, pop, marked)
	if err != nil {
		return nil, CrossoverTrace{}, err
	}
	return next, CrossoverTrace{
		Probability:  probability,
		EliteIndex:   eliteIdx,
		Flips:        flips,
		Participants: marked,
		Triple:       triple,
		Pairs:        pairs,
	}, nil
}
