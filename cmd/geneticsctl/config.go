package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"genetics/internal/evo"
	"genetics/internal/input"
)

// runSettings is the merged result of the scalar stream, the config file
// and explicitly set flags.
type runSettings struct {
	Config evo.Config
	RunID  string
	Trace  string
}

// fileConfig mirrors the config file; nil fields leave earlier sources
// untouched.
type fileConfig struct {
	RunID                *string  `json:"run_id" yaml:"run_id"`
	PopulationSize       *int     `json:"population_size" yaml:"population_size"`
	Left                 *float64 `json:"left" yaml:"left"`
	Right                *float64 `json:"right" yaml:"right"`
	A                    *float64 `json:"a" yaml:"a"`
	B                    *float64 `json:"b" yaml:"b"`
	C                    *float64 `json:"c" yaml:"c"`
	Precision            *int     `json:"precision" yaml:"precision"`
	CrossoverProbability *float64 `json:"crossover_probability" yaml:"crossover_probability"`
	MutationProbability  *float64 `json:"mutation_probability" yaml:"mutation_probability"`
	Steps                *int     `json:"steps" yaml:"steps"`
	Seed                 *int64   `json:"seed" yaml:"seed"`
	EliteIdentity        *string  `json:"elite_identity" yaml:"elite_identity"`
	SearchMode           *string  `json:"search_mode" yaml:"search_mode"`
	Trace                *string  `json:"trace" yaml:"trace"`
}

type flagValues struct {
	runID      string
	population int
	left       float64
	right      float64
	a          float64
	b          float64
	c          float64
	precision  int
	crossover  float64
	mutation   float64
	steps      int
	seed       int64
	elite      string
	search     string
	trace      string
}

// loadRunSettings reads the scalar stream from inputPath ("-" = stdin, ""
// = skip) and then overlays the config file at configPath, if any.
func loadRunSettings(inputPath, configPath string, stdin io.Reader) (runSettings, error) {
	settings := runSettings{Config: evo.DefaultConfig()}
	// The seed is chosen per run unless a source sets one.
	settings.Config.Seed = 0

	if inputPath != "" {
		r := stdin
		if inputPath != "-" {
			f, err := os.Open(inputPath)
			if err != nil {
				return runSettings{}, err
			}
			defer f.Close()
			r = f
		}
		cfg, err := input.ReadConfig(r, settings.Config)
		if err != nil {
			return runSettings{}, fmt.Errorf("read %s: %w", describeInput(inputPath), err)
		}
		settings.Config = cfg
	}

	if configPath != "" {
		fc, err := loadFileConfig(configPath)
		if err != nil {
			return runSettings{}, fmt.Errorf("load config %s: %w", configPath, err)
		}
		settings.applyFile(fc)
	}
	return settings, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && err != io.EOF {
			return fileConfig{}, err
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return fileConfig{}, err
		}
	default:
		return fileConfig{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	return fc, nil
}

func (s *runSettings) applyFile(fc fileConfig) {
	cfg := &s.Config
	setString(&s.RunID, fc.RunID)
	setInt(&cfg.PopulationSize, fc.PopulationSize)
	setFloat(&cfg.Interval.Left, fc.Left)
	setFloat(&cfg.Interval.Right, fc.Right)
	setFloat(&cfg.Fitness.A, fc.A)
	setFloat(&cfg.Fitness.B, fc.B)
	setFloat(&cfg.Fitness.C, fc.C)
	setInt(&cfg.Precision, fc.Precision)
	setFloat(&cfg.CrossoverProbability, fc.CrossoverProbability)
	setFloat(&cfg.MutationProbability, fc.MutationProbability)
	setInt(&cfg.Steps, fc.Steps)
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.EliteIdentity != nil {
		cfg.EliteIdentity = evo.EliteIdentity(*fc.EliteIdentity)
	}
	if fc.SearchMode != nil {
		cfg.SearchMode = evo.SearchMode(*fc.SearchMode)
	}
	setString(&s.Trace, fc.Trace)
}

func (s *runSettings) applyFlags(set map[string]bool, v flagValues) {
	cfg := &s.Config
	if set["run-id"] {
		s.RunID = v.runID
	}
	if set["population"] {
		cfg.PopulationSize = v.population
	}
	if set["left"] {
		cfg.Interval.Left = v.left
	}
	if set["right"] {
		cfg.Interval.Right = v.right
	}
	if set["a"] {
		cfg.Fitness.A = v.a
	}
	if set["b"] {
		cfg.Fitness.B = v.b
	}
	if set["c"] {
		cfg.Fitness.C = v.c
	}
	if set["precision"] {
		cfg.Precision = v.precision
	}
	if set["crossover"] {
		cfg.CrossoverProbability = v.crossover
	}
	if set["mutation"] {
		cfg.MutationProbability = v.mutation
	}
	if set["steps"] {
		cfg.Steps = v.steps
	}
	if set["seed"] {
		cfg.Seed = v.seed
	}
	if set["elite"] {
		cfg.EliteIdentity = evo.EliteIdentity(v.elite)
	}
	if set["search"] {
		cfg.SearchMode = evo.SearchMode(v.search)
	}
	if set["trace"] {
		s.Trace = v.trace
	}
}

func describeInput(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
