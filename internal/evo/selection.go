package evo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// SelectionDraw records one roulette spin.
type SelectionDraw struct {
	U     float64 `json:"u"`
	Index int     `json:"index"`
}

type SelectionTrace struct {
	EliteIndex    int             `json:"elite_index"`
	Probabilities []float64       `json:"probabilities"`
	Intervals     []float64       `json:"intervals"`
	Draws         []SelectionDraw `json:"draws"`
}

// SelectionProbabilities returns fitness-proportional survival
// probabilities. Individual fitness may be negative as long as the total is
// positive; the resulting intervals are then not guaranteed to line up with
// population order.
func SelectionProbabilities(fitness []float64) ([]float64, error) {
	total := 0.0
	for _, f := range fitness {
		total += f
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total fitness is not finite (%v)", ErrDegenerateFitness, total)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total fitness must be > 0 (got %v)", ErrDegenerateFitness, total)
	}
	probabilities := make([]float64, len(fitness))
	for i, f := range fitness {
		probabilities[i] = f / total
	}
	return probabilities, nil
}

// CumulativeIntervals builds 0, q_1, ..., q_n, 1 sorted ascending. The
// trailing 1 keeps the last boundary exact under rounding.
func CumulativeIntervals(probabilities []float64) []float64 {
	intervals := make([]float64, 0, len(probabilities)+2)
	sum := 0.0
	intervals = append(intervals, sum)
	for _, p := range probabilities {
		sum += p
		intervals = append(intervals, sum)
	}
	intervals = append(intervals, 1)
	sort.Float64s(intervals)
	return intervals
}

// SearchInterval maps a draw u in [0,1) to an individual index in [0,size).
func SearchInterval(mode SearchMode, intervals []float64, size int, u float64) int {
	if mode == SearchBucket {
		return searchBucket(intervals, size, u)
	}
	return searchCompat(intervals, size, u)
}

func searchCompat(intervals []float64, size int, u float64) int {
	left, right := 1, size-1
	for left <= right {
		mid := left + (right-left)/2
		if intervals[mid-1] <= u && intervals[mid+1] >= u {
			return mid
		}
		if intervals[mid] > u {
			right = mid - 1
		} else {
			left = mid + 1
		}
	}
	return left - 1
}

func searchBucket(intervals []float64, size int, u float64) int {
	idx := sort.Search(len(intervals), func(i int) bool { return intervals[i] > u }) - 1
	if idx < 0 {
		return 0
	}
	if idx > size-1 {
		return size - 1
	}
	return idx
}

// Select builds the next population: the current elite first, then
// size-1 roulette-wheel survivors.
func Select(rng *rand.Rand, pop Population, f Quadratic, mode SearchMode) (Population, SelectionTrace, error) {
	if rng == nil {
		return nil, SelectionTrace{}, fmt.Errorf("random source is required")
	}
	if len(pop) == 0 {
		return nil, SelectionTrace{}, fmt.Errorf("population is empty")
	}

	probabilities, err := SelectionProbabilities(pop.Fitness(f))
	if err != nil {
		return nil, SelectionTrace{}, err
	}
	intervals := CumulativeIntervals(probabilities)
	eliteIdx, elite := pop.Elite(f)

	trace := SelectionTrace{
		EliteIndex:    eliteIdx,
		Probabilities: probabilities,
		Intervals:     intervals,
		Draws:         make([]SelectionDraw, 0, len(pop)-1),
	}
	next := make(Population, 0, len(pop))
	next = append(next, elite.Clone())
	for i := 1; i < len(pop); i++ {
		u := rng.Float64()
		idx := SearchInterval(mode, intervals, len(pop), u)
		next = append(next, pop[idx].Clone())
		trace.Draws = append(trace.Draws, SelectionDraw{U: u, Index: idx})
	}
	return next, trace, nil
}
