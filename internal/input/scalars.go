// Package input reads the whitespace-delimited run configuration stream:
//
//	population_size left right a b c precision crossover_probability mutation_probability steps
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"genetics/internal/evo"
)

var fieldNames = []string{
	"population_size",
	"left",
	"right",
	"a",
	"b",
	"c",
	"precision",
	"crossover_probability",
	"mutation_probability",
	"steps",
}

// ReadConfig parses the ten configuration scalars. Seed and the engine
// options keep the values of base. A missing or malformed token is an
// evo.ErrInvalidConfiguration naming the field.
func ReadConfig(r io.Reader, base evo.Config) (evo.Config, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	tokens := make([]string, 0, len(fieldNames))
	for len(tokens) < len(fieldNames) && scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return evo.Config{}, fmt.Errorf("read configuration: %w", err)
	}
	if len(tokens) < len(fieldNames) {
		return evo.Config{}, fmt.Errorf("%w: missing %s (expected %d scalars, got %d)",
			evo.ErrInvalidConfiguration, fieldNames[len(tokens)], len(fieldNames), len(tokens))
	}

	p := parser{tokens: tokens}
	cfg := base
	cfg.PopulationSize = p.int(0)
	cfg.Interval.Left = p.float(1)
	cfg.Interval.Right = p.float(2)
	cfg.Fitness.A = p.float(3)
	cfg.Fitness.B = p.float(4)
	cfg.Fitness.C = p.float(5)
	cfg.Precision = p.int(6)
	cfg.CrossoverProbability = p.float(7)
	cfg.MutationProbability = p.float(8)
	cfg.Steps = p.int(9)
	if p.err != nil {
		return evo.Config{}, p.err
	}
	return cfg, nil
}

type parser struct {
	tokens []string
	err    error
}

func (p *parser) int(idx int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.tokens[idx])
	if err != nil {
		p.fail(idx, err)
		return 0
	}
	return v
}

func (p *parser) float(idx int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.tokens[idx], 64)
	if err != nil {
		p.fail(idx, err)
		return 0
	}
	return v
}

func (p *parser) fail(idx int, err error) {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	p.err = fmt.Errorf("%w: %s: cannot parse %q: %v", evo.ErrInvalidConfiguration, fieldNames[idx], p.tokens[idx], err)
}
