// Package report renders runs in the human-readable format of the
// simulator: the echoed input, population tables, per-stage traces and the
// per-generation X | MAX | AVG lines.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"genetics/internal/evo"
)

// TraceMode selects which generations get a detailed stage trace.
type TraceMode string

const (
	TraceFirst TraceMode = "first"
	TraceAll   TraceMode = "all"
	TraceNone  TraceMode = "none"
)

func ParseTraceMode(s string) (TraceMode, error) {
	switch mode := TraceMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return TraceFirst, nil
	case TraceFirst, TraceAll, TraceNone:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported trace mode: %s", s)
	}
}

func (m TraceMode) includes(generation int) bool {
	switch m {
	case TraceAll:
		return true
	case TraceNone:
		return false
	default:
		return generation == 1
	}
}

// Printer writes report sections to w. The first write error is kept and
// later writes become no-ops.
type Printer struct {
	w         io.Writer
	fitness   evo.Quadratic
	precision int
	length    int
	err       error
}

func NewPrinter(w io.Writer, cfg evo.Config) *Printer {
	return &Printer{
		w:         w,
		fitness:   cfg.Fitness,
		precision: cfg.Precision,
		length:    cfg.Length(),
	}
}

func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) Input(cfg evo.Config) {
	p.printf("Input\n")
	p.printf("Population size: %d\n", cfg.PopulationSize)
	p.printf("Interval: %s\n", cfg.Interval)
	p.printf("Parameters: %s %s %s\n", general(cfg.Fitness.A), general(cfg.Fitness.B), general(cfg.Fitness.C))
	p.printf("Precision: %d\n", cfg.Precision)
	p.printf("Crossover probability: %s\n", general(cfg.CrossoverProbability))
	p.printf("Mutation probability: %s\n", general(cfg.MutationProbability))
	p.printf("Steps: %d\n", cfg.Steps)
}

// Population prints one row per chromosome: index, genes, decoded value
// and fitness.
func (p *Printer) Population(title string, pop evo.Population) {
	p.printf("\n%s\n", title)
	for i, c := range pop {
		x := c.Decode()
		p.printf("%s%s%s%s\n", index(i), c.String(), signed(" | x = ", x, p.length), signed(" | f(x) = ", p.fitness.Eval(x), p.length))
	}
}

// Generation prints the detailed selection, crossover and mutation trace.
func (p *Printer) Generation(trace evo.GenerationTrace) {
	p.selection(trace.Selection)
	p.Population("After selection", trace.AfterSelection)
	p.crossover(trace.Crossover, trace.AfterSelection)
	p.Population("After crossover", trace.AfterCrossover)
	p.mutation(trace.Mutation)
	p.Population("After mutation", trace.AfterMutation)
}

func (p *Printer) selection(trace evo.SelectionTrace) {
	p.printf("\nSelection probabilities\n")
	for i, probability := range trace.Probabilities {
		p.printf("%sProbability = %s\n", index(i), fixed(probability, p.precision))
	}

	p.printf("\nSelection intervals\n0 ")
	// Interior boundaries only: the leading 0 and the closing 1 are
	// printed literally.
	if len(trace.Intervals) > 2 {
		for _, q := range trace.Intervals[1 : len(trace.Intervals)-1] {
			if math.Abs(q-1) > epsilon {
				p.printf("%s ", fixed(q, p.precision))
			}
		}
	}
	p.printf("1\n")

	for _, draw := range trace.Draws {
		p.printf("u = %s | Choose chromosome %d\n", fixed(draw.U, p.precision), draw.Index+1)
	}
}

func (p *Printer) crossover(trace evo.CrossoverTrace, pop evo.Population) {
	p.printf("\nCrossover probability: %s\n", general(trace.Probability))
	for _, flip := range trace.Flips {
		genes := ""
		if flip.Index < len(pop) {
			genes = pop[flip.Index].String()
		}
		p.printf("%s%s | u = %s", index(flip.Index), genes, fixed(flip.U, p.precision))
		if flip.Participant {
			p.printf(" < %s participant", general(trace.Probability))
		}
		p.printf("\n")
	}
	if len(trace.Triple) == 2 {
		p.printf("Triple crossing between %d, %d and %d:\n", trace.Triple[0].First+1, trace.Triple[0].Second+1, trace.Triple[1].Second+1)
		for _, crossing := range trace.Triple {
			p.crossing(crossing)
		}
	}
	for _, crossing := range trace.Pairs {
		p.printf("Crossing chromosomes %d and %d:\n", crossing.First+1, crossing.Second+1)
		p.crossing(crossing)
	}
}

func (p *Printer) crossing(c evo.Crossing) {
	p.printf("%s %s | point = %d\n", c.Before[0], c.Before[1], c.Cut)
	p.printf("Result: %s %s\n", c.After[0], c.After[1])
}

func (p *Printer) mutation(trace evo.MutationTrace) {
	p.printf("\nMutation probability: %s\n", general(trace.Probability))
	p.printf("The following chromosomes have been modified:\n")
	indices := make([]string, 0, len(trace.Mutated))
	for _, m := range trace.Mutated {
		indices = append(indices, strconv.Itoa(m.Index+1))
	}
	p.printf("%s\n", strings.Join(indices, " "))
}

// Evolution prints the per-generation summary lines.
func (p *Printer) Evolution(steps int, history []evo.Summary) {
	p.printf("\nMax evolution (%d steps)\n", steps)
	for _, s := range history {
		p.Summary(s)
	}
}

func (p *Printer) Summary(s evo.Summary) {
	p.printf("%s%s%s%s\n",
		index(s.Generation-1),
		signed("X = ", s.X, p.length),
		signed(" | MAX = ", s.Max, p.length),
		signed(" | AVG = ", s.Avg, p.length),
	)
}

// Observer returns an evo.Engine observer that prints the traces selected
// by mode.
func (p *Printer) Observer(mode TraceMode) func(evo.GenerationTrace) error {
	return func(trace evo.GenerationTrace) error {
		if mode.includes(trace.Generation) {
			p.Generation(trace)
		}
		return p.err
	}
}

const epsilon = 1e-15

// index renders a 0-based index as a 1-based label right-aligned to width 2.
func index(i int) string {
	return fmt.Sprintf("%2d: ", i+1)
}

// signed pads non-negative values with a space so columns line up with
// negative ones.
func signed(label string, v float64, digits int) string {
	if v < 0 {
		return label + fixed(v, digits)
	}
	return label + " " + fixed(v, digits)
}

func fixed(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

func general(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
