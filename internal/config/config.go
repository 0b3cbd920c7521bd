package config

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/gravity"
	"github.com/mpetrov/gravlab/internal/vec"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultMaxDt    = 0.05
)

// Config is a YAML scenario: the force-law parameters, stepping
// parameters, and the initial body set.
type Config struct {
	G        float64      `yaml:"g"`
	Dt       float64      `yaml:"dt"`
	Duration float64      `yaml:"duration"`
	MaxDt    float64      `yaml:"max_dt"`
	Stepper  string       `yaml:"stepper"`
	Bodies   []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Mass   float64    `yaml:"mass"`
	Pos    [3]float64 `yaml:"pos"`
	Vel    [3]float64 `yaml:"vel"`
	Radius float64    `yaml:"radius"`
	Color  string     `yaml:"color"`
}

// Default is the reference scenario: three 1e10 kg bodies, one at rest
// at the origin and two on opposing tangential velocities.
func Default() *Config {
	return &Config{
		G:        gravity.DefaultG,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		MaxDt:    DefaultMaxDt,
		Stepper:  "euler",
		Bodies: []BodyConfig{
			{Mass: 1e10, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{0, 0, 0}, Radius: 0.1, Color: "#ff0000"},
			{Mass: 1e10, Pos: [3]float64{2, 0, 0}, Vel: [3]float64{0, 0.5, 0}, Radius: 0.1, Color: "#00ff00"},
			{Mass: 1e10, Pos: [3]float64{0, 2, 0}, Vel: [3]float64{0, -0.5, 0}, Radius: 0.1, Color: "#0000ff"},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// InitialBodies materializes the configured body set, validating masses
// and colors. Errors name the offending body index.
func (c *Config) InitialBodies() ([]body.Body, error) {
	bodies := make([]body.Body, 0, len(c.Bodies))
	for i, bc := range c.Bodies {
		if bc.Color != "" {
			if _, err := colorful.Hex(bc.Color); err != nil {
				return nil, fmt.Errorf("body %d: bad color %q: %w", i, bc.Color, err)
			}
		}
		b, err := body.New(
			bc.Mass,
			vec.New(bc.Pos[0], bc.Pos[1], bc.Pos[2]),
			vec.New(bc.Vel[0], bc.Vel[1], bc.Vel[2]),
			bc.Radius,
			bc.Color,
		)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// Field builds the force field for this scenario.
func (c *Config) Field() *gravity.Field {
	f := gravity.New()
	if c.G != 0 {
		f.G = c.G
	}
	return f
}
