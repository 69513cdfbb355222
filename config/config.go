// SPDX-License-Identifier: MIT

// Package config reads simulation settings from YAML and turns them into
// the loci, demography and simulator options of the library packages.
//
// A minimal file:
//
//	taxa:
//	  - name: a
//	  - name: b
//	  - {name: c, height: 0.5}
//	loci:
//	  - {id: chr, sites: 10000}
//	rho: 0.0005
//	delta: 300
//
// Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/newick"
	"github.com/katalvlaran/argraph/popfunc"
	"github.com/katalvlaran/argraph/sim"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Population model names.
const (
	ConstantModel    = "constant"
	ExponentialModel = "exponential"
)

// Taxon is one sampled sequence.
type Taxon struct {
	Name   string  `yaml:"name"`
	Height float64 `yaml:"height,omitempty"`
}

// Locus describes one locus. Convertible defaults to true.
type Locus struct {
	ID          string `yaml:"id"`
	Sites       int    `yaml:"sites"`
	Circular    bool   `yaml:"circular,omitempty"`
	Convertible *bool  `yaml:"convertible,omitempty"`
}

// Population selects the demography.
type Population struct {
	Model      string  `yaml:"model"`
	PopSize    float64 `yaml:"popSize"`
	GrowthRate float64 `yaml:"growthRate,omitempty"`
}

// Config is the full simulation configuration.
type Config struct {
	Taxa        []Taxon    `yaml:"taxa"`
	Loci        []Locus    `yaml:"loci"`
	Rho         float64    `yaml:"rho"`
	Delta       float64    `yaml:"delta"`
	Population  Population `yaml:"population"`
	LengthModel string     `yaml:"lengthModel"`
	WholeLocus  bool       `yaml:"wholeLocus,omitempty"`
	// ClonalFrame, when set, is a Newick tree used instead of simulating one.
	ClonalFrame string `yaml:"clonalFrame,omitempty"`
	Seed        uint64 `yaml:"seed"`
	Replicates  int    `yaml:"replicates"`
}

// Default returns the documented defaults: no conversions, delta 100,
// constant population of size 1, geometric circular tracts, seed 1, one
// replicate. Taxa and loci have no defaults.
func Default() Config {
	return Config{
		Delta:       sim.DefaultDelta,
		Population:  Population{Model: ConstantModel, PopSize: 1},
		LengthModel: model.GeometricLength.String(),
		Seed:        1,
		Replicates:  1,
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges and cross-field constraints.
func (c Config) Validate() error {
	if len(c.Loci) == 0 {
		return invalid("no loci")
	}
	if len(c.Taxa) == 0 && c.ClonalFrame == "" {
		return invalid("taxa or clonalFrame is required")
	}
	seen := make(map[string]bool, len(c.Taxa))
	for i, tx := range c.Taxa {
		if tx.Name == "" {
			return invalid("taxa[%d]: empty name", i)
		}
		if seen[tx.Name] {
			return invalid("taxa[%d]: duplicate name %q", i, tx.Name)
		}
		seen[tx.Name] = true
		if tx.Height < 0 || math.IsInf(tx.Height, 0) || math.IsNaN(tx.Height) {
			return invalid("taxa[%d]: height %g", i, tx.Height)
		}
	}
	if c.Rho < 0 {
		return invalid("rho %g is negative", c.Rho)
	}
	if c.Delta < 1 {
		return invalid("delta %g is below 1", c.Delta)
	}
	if _, err := c.lengthModel(); err != nil {
		return err
	}
	if c.Replicates < 1 {
		return invalid("replicates %d is below 1", c.Replicates)
	}
	if _, err := c.BuildLoci(); err != nil {
		return err
	}
	if _, err := c.BuildPopulation(); err != nil {
		return err
	}

	return nil
}

func (c Config) lengthModel() (model.CircularLengthModel, error) {
	switch c.LengthModel {
	case "", model.GeometricLength.String():
		return model.GeometricLength, nil
	case model.BetaBinomialLength.String():
		return model.BetaBinomialLength, nil
	}

	return 0, invalid("lengthModel %q", c.LengthModel)
}

// BuildLoci constructs the loci in file order.
func (c Config) BuildLoci() ([]*acg.Locus, error) {
	out := make([]*acg.Locus, 0, len(c.Loci))
	for i, spec := range c.Loci {
		var opts []acg.LocusOption
		if spec.Circular {
			opts = append(opts, acg.WithCircular())
		}
		if spec.Convertible != nil && !*spec.Convertible {
			opts = append(opts, acg.WithoutConversions())
		}
		l, err := acg.NewLocus(spec.ID, spec.Sites, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: loci[%d]: %w", ErrInvalid, i, err)
		}
		out = append(out, l)
	}

	return out, nil
}

// BuildPopulation constructs the demography.
func (c Config) BuildPopulation() (popfunc.Function, error) {
	var (
		p   popfunc.Function
		err error
	)
	switch c.Population.Model {
	case ConstantModel:
		p, err = popfunc.NewConstant(c.Population.PopSize)
	case ExponentialModel:
		p, err = popfunc.NewExponential(c.Population.PopSize, c.Population.GrowthRate)
	default:
		return nil, invalid("population model %q", c.Population.Model)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: population: %w", ErrInvalid, err)
	}

	return p, nil
}

// BuildTaxa returns the taxa in file order.
func (c Config) BuildTaxa() []sim.Taxon {
	out := make([]sim.Taxon, len(c.Taxa))
	for i, tx := range c.Taxa {
		out[i] = sim.Taxon{Label: tx.Name, Height: tx.Height}
	}

	return out
}

// SimOptions returns the simulator options for c. A fixed clonal frame is
// parsed over loci; when taxa are listed they fix its leaf order.
func (c Config) SimOptions(loci []*acg.Locus) ([]sim.Option, error) {
	pop, err := c.BuildPopulation()
	if err != nil {
		return nil, err
	}
	lm, err := c.lengthModel()
	if err != nil {
		return nil, err
	}
	opts := []sim.Option{
		sim.WithRho(c.Rho),
		sim.WithDelta(c.Delta),
		sim.WithPopulation(pop),
		sim.WithCircularLengthModel(lm),
	}
	if c.WholeLocus {
		opts = append(opts, sim.WithWholeLocusMode())
	}
	if c.ClonalFrame != "" {
		var popts []newick.ParseOption
		if len(c.Taxa) > 0 {
			names := make([]string, len(c.Taxa))
			for i, tx := range c.Taxa {
				names[i] = tx.Name
			}
			popts = append(popts, newick.WithTaxa(names))
		}
		g, err := newick.Parse(c.ClonalFrame, loci, popts...)
		if err != nil {
			return nil, fmt.Errorf("%w: clonalFrame: %w", ErrInvalid, err)
		}
		opts = append(opts, sim.WithClonalFrame(g.Tree()))
	}

	return opts, nil
}
