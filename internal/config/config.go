package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v < r.Max }

func (r Range) Empty() bool { return r.Max <= r.Min }

// SizeClass is the asteroid tier derived from its radius.
type SizeClass uint8

const (
	SizeNone SizeClass = iota
	SizeSmall
	SizeMedium
	SizeBig
)

func (c SizeClass) String() string {
	switch c {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeBig:
		return "big"
	default:
		return "none"
	}
}

type AsteroidSizes struct {
	Small  Range `json:"small" yaml:"small"`
	Medium Range `json:"medium" yaml:"medium"`
	Big    Range `json:"big" yaml:"big"`
}

// Classify maps a radius onto its tier. A radius outside every range is
// SizeNone and behaves like a small asteroid when hit.
func (s AsteroidSizes) Classify(radius float64) SizeClass {
	switch {
	case s.Big.Contains(radius):
		return SizeBig
	case s.Medium.Contains(radius):
		return SizeMedium
	case s.Small.Contains(radius):
		return SizeSmall
	default:
		return SizeNone
	}
}

// Range returns the radius range of a tier.
func (s AsteroidSizes) Range(c SizeClass) Range {
	switch c {
	case SizeBig:
		return s.Big
	case SizeMedium:
		return s.Medium
	default:
		return s.Small
	}
}

func (s AsteroidSizes) Validate() error {
	for _, tier := range []struct {
		name string
		r    Range
	}{{"small", s.Small}, {"medium", s.Medium}, {"big", s.Big}} {
		if tier.r.Empty() || tier.r.Min < 0 {
			return fmt.Errorf("%w: asteroid size %s [%v,%v) is empty or negative", ErrInvalidConfig, tier.name, tier.r.Min, tier.r.Max)
		}
	}
	if s.Small.Max > s.Medium.Min || s.Medium.Max > s.Big.Min {
		return fmt.Errorf("%w: asteroid sizes must be ordered small < medium < big without overlap", ErrInvalidConfig)
	}
	return nil
}

type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (v Viewport) HalfWidth() float64  { return v.Width / 2 }
func (v Viewport) HalfHeight() float64 { return v.Height / 2 }

type Physics struct {
	TimeStep time.Duration `json:"time_step" yaml:"time_step"`
}

type Asteroids struct {
	Sizes         AsteroidSizes `json:"sizes" yaml:"sizes"`
	SpawnInterval time.Duration `json:"spawn_interval" yaml:"spawn_interval"`
	SpawnChance   float64       `json:"spawn_chance" yaml:"spawn_chance"`
}

type Ufo struct {
	SpawnInterval time.Duration `json:"spawn_interval" yaml:"spawn_interval"`
	SpawnChance   float64       `json:"spawn_chance" yaml:"spawn_chance"`
	Radius        float64       `json:"radius" yaml:"radius"`
}

type Ship struct {
	Radius         float64       `json:"radius" yaml:"radius"`
	DeadTime       time.Duration `json:"dead_time" yaml:"dead_time"`
	SpawningTime   time.Duration `json:"spawning_time" yaml:"spawning_time"`
	FireRate       time.Duration `json:"fire_rate" yaml:"fire_rate"`
	AutomaticFire  bool          `json:"automatic_fire" yaml:"automatic_fire"`
	FlickFrequency time.Duration `json:"flick_frequency" yaml:"flick_frequency"`
}

type Detector struct {
	Parallel bool `json:"parallel" yaml:"parallel"`
}

type Server struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
	// MaxClients caps concurrent websocket sessions; zero means no cap.
	MaxClients int `json:"max_clients" yaml:"max_clients"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
}

type Config struct {
	Viewport  Viewport  `json:"viewport" yaml:"viewport"`
	Physics   Physics   `json:"physics" yaml:"physics"`
	Asteroids Asteroids `json:"asteroids" yaml:"asteroids"`
	Ufo       Ufo       `json:"ufo" yaml:"ufo"`
	Ship      Ship      `json:"ship" yaml:"ship"`
	Detector  Detector  `json:"detector" yaml:"detector"`
	Server    Server    `json:"server" yaml:"server"`
	Log       Log       `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Viewport: Viewport{Width: 800, Height: 600},
		Physics:  Physics{TimeStep: time.Second / 120},
		Asteroids: Asteroids{
			Sizes: AsteroidSizes{
				Small:  Range{Min: 10, Max: 20},
				Medium: Range{Min: 30, Max: 40},
				Big:    Range{Min: 50, Max: 60},
			},
			SpawnInterval: 500 * time.Millisecond,
			SpawnChance:   1.0 / 3.0,
		},
		Ufo: Ufo{
			SpawnInterval: time.Second,
			SpawnChance:   1.0 / 10.0,
			Radius:        15,
		},
		Ship: Ship{
			Radius:         12,
			DeadTime:       2 * time.Second,
			SpawningTime:   2 * time.Second,
			FireRate:       100 * time.Millisecond,
			FlickFrequency: 80 * time.Millisecond,
		},
		Server: Server{Addr: "127.0.0.1:8080", MaxClients: 64},
		Log:    Log{Level: "info"},
	}
}

// Validate fails fast on settings the game cannot run with.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive", ErrInvalidConfig)
	}
	if c.Physics.TimeStep <= 0 {
		return fmt.Errorf("%w: physics time step must be positive", ErrInvalidConfig)
	}
	if err := c.Asteroids.Sizes.Validate(); err != nil {
		return err
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"asteroids.spawn_interval", c.Asteroids.SpawnInterval},
		{"ufo.spawn_interval", c.Ufo.SpawnInterval},
		{"ship.fire_rate", c.Ship.FireRate},
		{"ship.flick_frequency", c.Ship.FlickFrequency},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}
	if c.Ship.DeadTime < 0 || c.Ship.SpawningTime < 0 {
		return fmt.Errorf("%w: ship timers must not be negative", ErrInvalidConfig)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"asteroids.spawn_chance", c.Asteroids.SpawnChance},
		{"ufo.spawn_chance", c.Ufo.SpawnChance},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidConfig, p.name)
		}
	}
	if c.Ship.Radius < 0 || c.Ufo.Radius < 0 {
		return fmt.Errorf("%w: radii must not be negative", ErrInvalidConfig)
	}
	if c.Server.MaxClients < 0 {
		return fmt.Errorf("%w: server.max_clients must not be negative", ErrInvalidConfig)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required when the server is enabled", ErrInvalidConfig)
	}
	return nil
}

// Load decodes YAML on top of the defaults and validates the result.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads a YAML config file. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		c := Default()
		return c, c.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}
