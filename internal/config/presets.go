package config

import (
	"fmt"
	"sort"
)

// Presets are built as functions so callers can mutate the result
// without corrupting the table.
var presets = map[string]func() *Config{
	"reference": Default,

	// Figure-eight choreography, three unit masses in G=1 units.
	"figure-eight": func() *Config {
		return &Config{
			G:        1.0,
			Dt:       0.001,
			Duration: 50.0,
			MaxDt:    0.01,
			Stepper:  "leapfrog",
			Bodies: []BodyConfig{
				{Mass: 1, Pos: [3]float64{-1, 0, 0}, Vel: [3]float64{0.347, 0.532, 0}, Radius: 0.1, Color: "#ff0000"},
				{Mass: 1, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0.347, 0.532, 0}, Radius: 0.1, Color: "#00ff00"},
				{Mass: 1, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{-0.694, -1.064, 0}, Radius: 0.1, Color: "#0000ff"},
			},
		}
	},

	// Two equal masses on a closed circular orbit: v = sqrt(G*m/(2r))
	// perpendicular to the separation r.
	"binary": func() *Config {
		return &Config{
			G:        1.0,
			Dt:       0.001,
			Duration: 30.0,
			MaxDt:    0.01,
			Stepper:  "euler",
			Bodies: []BodyConfig{
				{Mass: 1, Pos: [3]float64{-1, 0, 0}, Vel: [3]float64{0, -0.5, 0}, Radius: 0.1, Color: "#ff0000"},
				{Mass: 1, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0.5, 0}, Radius: 0.1, Color: "#00ccff"},
			},
		}
	},
}

func Preset(name string) (*Config, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown preset %q (available: %v)", name, ListPresets())
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
