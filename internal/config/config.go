package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

const (
	DefaultWidth      = 20
	DefaultHeight     = 10
	DefaultGravity    = 0.001
	DefaultDt         = 1.0
	DefaultIterations = physics.DefaultIterations
	DefaultRelaxation = physics.DefaultRelaxation
	DefaultSteps      = 600
	DefaultFPS        = 60

	DefaultStabilityBound = 1e3
)

const (
	PinCorners = "corners"
	PinTopRow  = "top_row"
	PinNone    = "none"
	PinCustom  = "custom"
)

type Config struct {
	Name        string     `yaml:"name,omitempty"`
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	Gravity     float64    `yaml:"gravity"`
	Dt          float64    `yaml:"dt"`
	Iterations  int        `yaml:"iterations"`
	Relaxation  float64    `yaml:"relaxation"`
	Solver      string     `yaml:"solver"`
	Damping     float64    `yaml:"damping"`
	Pins        PinsConfig `yaml:"pins"`
	Steps       int        `yaml:"steps"`
	RecordEvery int        `yaml:"record_every"`
	FPS         int        `yaml:"fps"`

	// StabilityBound is the coordinate magnitude beyond which a step
	// counts as unstable. Zero means DefaultStabilityBound.
	StabilityBound float64 `yaml:"stability_bound,omitempty"`
}

type PinsConfig struct {
	Mode   string     `yaml:"mode"`
	Points []PinPoint `yaml:"points,omitempty"`
}

// PinPoint pins grid cell (X, Y). Without Pos it is held at its rest
// position.
type PinPoint struct {
	X   int  `yaml:"x"`
	Y   int  `yaml:"y"`
	Pos *Vec `yaml:"pos,omitempty"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "reference",
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Gravity:     DefaultGravity,
		Dt:          DefaultDt,
		Iterations:  DefaultIterations,
		Relaxation:  DefaultRelaxation,
		Solver:      string(dynamo.SolverGaussSeidel),
		Pins:        PinsConfig{Mode: PinCorners},
		Steps:       DefaultSteps,
		RecordEvery: 10,
		FPS:         DefaultFPS,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
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

func (c *Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: got %dx%d", dynamo.ErrInvalidDimensions, c.Width, c.Height)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative", dynamo.ErrParameterBounds)
	}
	if c.Relaxation <= 0 || c.Relaxation > 1 {
		return fmt.Errorf("%w: relaxation must be in (0, 1], got %f", dynamo.ErrParameterBounds, c.Relaxation)
	}
	if c.Damping < 0 || c.Damping >= 1 {
		return fmt.Errorf("%w: damping must be in [0, 1), got %f", dynamo.ErrParameterBounds, c.Damping)
	}
	switch dynamo.SolverKind(c.Solver) {
	case dynamo.SolverGaussSeidel, dynamo.SolverJacobi:
	default:
		return fmt.Errorf("%w: unknown solver %q", dynamo.ErrParameterBounds, c.Solver)
	}
	if c.StabilityBound < 0 {
		return fmt.Errorf("%w: stability_bound must be non-negative", dynamo.ErrParameterBounds)
	}
	if c.Steps < 0 || c.RecordEvery < 0 {
		return fmt.Errorf("%w: steps and record_every must be non-negative", dynamo.ErrParameterBounds)
	}
	switch c.Pins.Mode {
	case PinCorners, PinTopRow, PinNone, PinCustom, "":
	default:
		return fmt.Errorf("%w: unknown pin mode %q", dynamo.ErrParameterBounds, c.Pins.Mode)
	}
	return nil
}

// ResolvePins turns the pin section into concrete anchors for g.
func (c *Config) ResolvePins(g *physics.Grid) ([]dynamo.Pin, error) {
	switch c.Pins.Mode {
	case PinCorners, "":
		return physics.CornerPins(g), nil
	case PinTopRow:
		return physics.RowPins(g, 0), nil
	case PinNone:
		return []dynamo.Pin{}, nil
	}

	pins := make([]dynamo.Pin, 0, len(c.Pins.Points))
	for _, pt := range c.Pins.Points {
		p, err := physics.PinAt(g, pt.X, pt.Y)
		if err != nil {
			return nil, err
		}
		if pt.Pos != nil {
			p.Pos = dynamo.Vec2{X: pt.Pos.X, Y: pt.Pos.Y}
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// SimConfig validates c and converts it into simulator parameters.
func (c *Config) SimConfig() (dynamo.Config, error) {
	if err := c.Validate(); err != nil {
		return dynamo.Config{}, err
	}
	g, err := physics.NewGrid(c.Width, c.Height)
	if err != nil {
		return dynamo.Config{}, err
	}
	pins, err := c.ResolvePins(g)
	if err != nil {
		return dynamo.Config{}, err
	}

	return dynamo.Config{
		Width:         c.Width,
		Height:        c.Height,
		Gravity:       c.Gravity,
		Dt:            c.Dt,
		Iterations:    c.Iterations,
		Relaxation:    c.Relaxation,
		Solver:        dynamo.SolverKind(c.Solver),
		Pins:          pins,
		ValidateState: true,
		RecordEvery:   c.RecordEvery,
	}, nil
}

// SweepParams lists the names Set accepts.
var SweepParams = []string{"width", "height", "gravity", "dt", "iterations", "relaxation", "damping"}

// Set assigns a numeric parameter by name. Integer parameters are rounded.
// The result is not validated.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "width":
		c.Width = int(math.Round(v))
	case "height":
		c.Height = int(math.Round(v))
	case "gravity":
		c.Gravity = v
	case "dt":
		c.Dt = v
	case "iterations":
		c.Iterations = int(math.Round(v))
	case "relaxation":
		c.Relaxation = v
	case "damping":
		c.Damping = v
	default:
		return fmt.Errorf("%w: unknown parameter %q (want one of %v)", dynamo.ErrParameterBounds, name, SweepParams)
	}
	return nil
}

func (c *Config) Bound() float64 {
	if c.StabilityBound == 0 {
		return DefaultStabilityBound
	}
	return c.StabilityBound
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Pins.Points = append([]PinPoint(nil), c.Pins.Points...)
	return &cp
}
