package genotype

import (
	"fmt"
	"math/rand"
	"strings"
)

// Chromosome is a fixed-length bit string encoding one real value of an
// Interval. Gene 0 is the least significant bit.
type Chromosome struct {
	genes    []bool
	interval Interval
	step     float64
}

// NewChromosome copies genes; the chromosome never aliases the caller's slice.
func NewChromosome(interval Interval, step float64, genes []bool) Chromosome {
	return Chromosome{
		genes:    append([]bool(nil), genes...),
		interval: interval,
		step:     step,
	}
}

// RandomChromosome draws every gene independently with probability 0.5.
func RandomChromosome(rng *rand.Rand, interval Interval, length int, step float64) (Chromosome, error) {
	if rng == nil {
		return Chromosome{}, fmt.Errorf("random source is required")
	}
	if length <= 0 {
		return Chromosome{}, fmt.Errorf("chromosome length must be > 0 (got %d)", length)
	}
	genes := make([]bool, length)
	for i := range genes {
		genes[i] = rng.Float64() < 0.5
	}
	return Chromosome{genes: genes, interval: interval, step: step}, nil
}

func (c Chromosome) Len() int {
	return len(c.genes)
}

func (c Chromosome) Interval() Interval {
	return c.interval
}

func (c Chromosome) Step() float64 {
	return c.step
}

func (c Chromosome) Gene(idx int) bool {
	return c.genes[idx]
}

// Genes returns a copy of the bit sequence.
func (c Chromosome) Genes() []bool {
	return append([]bool(nil), c.genes...)
}

func (c *Chromosome) FlipGene(idx int) error {
	if idx < 0 || idx >= len(c.genes) {
		return fmt.Errorf("%w: gene %d of %d", ErrIndexOutOfRange, idx, len(c.genes))
	}
	c.genes[idx] = !c.genes[idx]
	return nil
}

func (c *Chromosome) SetGenes(genes []bool) error {
	if len(genes) != len(c.genes) {
		return fmt.Errorf("%w: gene count must be %d (got %d)", ErrIndexOutOfRange, len(c.genes), len(genes))
	}
	c.genes = append(c.genes[:0:0], genes...)
	return nil
}

// Value interprets the genes as an unsigned little-endian integer.
func (c Chromosome) Value() uint64 {
	var v uint64
	for i, gene := range c.genes {
		if gene {
			v |= 1 << uint(i)
		}
	}
	return v
}

func (c Chromosome) Decode() float64 {
	return c.interval.Left + c.step*float64(c.Value())
}

// Equal compares bit sequences only.
func (c Chromosome) Equal(other Chromosome) bool {
	if len(c.genes) != len(other.genes) {
		return false
	}
	for i := range c.genes {
		if c.genes[i] != other.genes[i] {
			return false
		}
	}
	return true
}

func (c Chromosome) Clone() Chromosome {
	return NewChromosome(c.interval, c.step, c.genes)
}

func (c Chromosome) String() string {
	var b strings.Builder
	b.Grow(len(c.genes))
	for _, gene := range c.genes {
		if gene {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// EncodeValue is the inverse of Value for k < 2^length.
func EncodeValue(k uint64, length int) []bool {
	genes := make([]bool, length)
	for i := range genes {
		genes[i] = k&(1<<uint(i)) != 0
	}
	return genes
}

// ParseGenes reads a string of '0'/'1' characters in gene order.
func ParseGenes(bits string) ([]bool, error) {
	genes := make([]bool, len(bits))
	for i, r := range bits {
		switch r {
		case '0':
		case '1':
			genes[i] = true
		default:
			return nil, fmt.Errorf("invalid gene %q at position %d", r, i)
		}
	}
	return genes, nil
}
