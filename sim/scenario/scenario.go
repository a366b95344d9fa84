// Package scenario provides named, persistable simulation configurations:
// YAML files a user can edit and re-run, JSON interchange with the legacy
// scenarios.json library format, and the built-in presets.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mostinn/bioprocessing-app/sim"
)

// Horizon defaults applied when a scenario does not pin its own.
const (
	DefaultDuration = 50.0 // h
	DefaultTimeStep = 0.1  // h
)

// Scenario pairs a parameter set with a human-readable identity so runs can
// be named, saved, compared, and reproduced.
type Scenario struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Params      sim.Params `yaml:"params" json:"params"`
}

// Load reads a YAML scenario file. Uses strict parsing: unrecognized keys
// (typos) are rejected. A missing name defaults to the file's base name.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &sc, nil
}

// Save writes the scenario as a YAML document that Load accepts back.
func (s *Scenario) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding scenario %q: %w", s.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing scenario %q: %w", s.Name, err)
	}
	return nil
}

// Validate checks the scenario before use. Parameter checks delegate to the
// simulation core, so failures satisfy errors.Is(err, sim.ErrInvalidConfig).
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: scenario name must not be empty", sim.ErrInvalidConfig)
	}
	if err := s.Params.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// Run validates the scenario, executes it, and stamps the result with the
// scenario's name.
func Run(s *Scenario) (*sim.Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	res, err := sim.Run(s.Params)
	if err != nil {
		return nil, err
	}
	res.Scenario = s.Name
	return res, nil
}
