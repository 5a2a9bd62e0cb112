package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/rstrohkorb/dynamic-A-Star/graph"
)

// ErrInvalidConfig is returned for scene configs that cannot produce a graph
var ErrInvalidConfig = errors.New("invalid scene config")

// Topology names
const (
	TopologyGrid   = "grid"
	TopologyRandom = "random"
)

// Config describes a point cloud and the degree of the graph built over it
type Config struct {
	Topology   string     `yaml:"topology" json:"topology" validate:"required,oneof=grid random"`
	Dimensions int        `yaml:"dimensions" json:"dimensions" validate:"oneof=2 3"`
	Min        [3]float64 `yaml:"min" json:"min"`
	Max        [3]float64 `yaml:"max" json:"max"`
	Rows       int        `yaml:"rows,omitempty" json:"rows,omitempty" validate:"gte=0"`
	Cols       int        `yaml:"cols,omitempty" json:"cols,omitempty" validate:"gte=0"`
	Depth      int        `yaml:"depth,omitempty" json:"depth,omitempty" validate:"gte=0"`
	Count      int        `yaml:"count,omitempty" json:"count,omitempty" validate:"gte=0"`
	Degree     int        `yaml:"degree,omitempty" json:"degree,omitempty" validate:"gte=0"`
	Seed       int64      `yaml:"seed" json:"seed"`
	// LegacyWeights keeps squared distances on nearest-neighbour edges
	LegacyWeights bool `yaml:"legacyWeights,omitempty" json:"legacyWeights,omitempty"`
}

// DefaultConfig is 300 random points in the [-5, 5] cube. Degree is left
// unset so EffectiveDegree picks the topology default.
func DefaultConfig() Config {
	return Config{
		Topology:   TopologyRandom,
		Dimensions: 3,
		Min:        [3]float64{-5, -5, -5},
		Max:        [3]float64{5, 5, 5},
		Count:      300,
		Seed:       1,
	}
}

var validate = validator.New()

// Validate checks field ranges and the counts each topology needs
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for axis := 0; axis < c.Dimensions; axis++ {
		if c.Max[axis] <= c.Min[axis] {
			return fmt.Errorf("%w: max[%d] must exceed min[%d]", ErrInvalidConfig, axis, axis)
		}
	}
	switch c.Topology {
	case TopologyGrid:
		if c.Rows == 0 || c.Cols == 0 || (c.Dimensions == 3 && c.Depth == 0) {
			return fmt.Errorf("%w: grid needs rows, cols and, in 3D, depth", ErrInvalidConfig)
		}
	case TopologyRandom:
		if c.Count == 0 {
			return fmt.Errorf("%w: random topology needs count", ErrInvalidConfig)
		}
	}
	return nil
}

// EffectiveDegree returns Degree, or the topology default when unset
func (c Config) EffectiveDegree() int {
	if c.Degree > 0 {
		return c.Degree
	}
	if c.Topology == TopologyGrid && c.Dimensions == 2 {
		return 2
	}
	return graph.DefaultDegree
}

// Points generates the configured cloud. Random clouds are reproducible from Seed.
func (c Config) Points() ([]graph.Point, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	min := graph.Point{X: c.Min[0], Y: c.Min[1], Z: c.Min[2]}
	max := graph.Point{X: c.Max[0], Y: c.Max[1], Z: c.Max[2]}
	bound := orb.Bound{Min: ToOrb(min), Max: ToOrb(max)}

	switch {
	case c.Topology == TopologyGrid && c.Dimensions == 2:
		return Grid2D(bound, c.Rows, c.Cols), nil
	case c.Topology == TopologyGrid:
		return Grid3D(min, max, c.Rows, c.Cols, c.Depth), nil
	case c.Dimensions == 2:
		return Random2D(rand.New(rand.NewSource(c.Seed)), bound, c.Count), nil
	default:
		return Random3D(rand.New(rand.NewSource(c.Seed)), min, max, c.Count), nil
	}
}

// Build generates the cloud and builds its proximity graph
func Build(c Config) (*graph.Graph, error) {
	points, err := c.Points()
	if err != nil {
		return nil, err
	}
	var opts []graph.Option
	if c.LegacyWeights {
		opts = append(opts, graph.WithLegacyWeights())
	}
	g, err := graph.New(points, c.EffectiveDegree(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scene config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML scene file
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseConfig(data)
}
