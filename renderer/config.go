package renderer

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"jelly/core"
	"jelly/math"
)

// Config holds the tunable parts of the pipeline. Colours are plain arrays
// so they read naturally in TOML.
type Config struct {
	Exposure     float32    `toml:"exposure"`
	Gamma        float32    `toml:"gamma"`
	ClearColor   [4]float32 `toml:"clear_color"`
	AmbientLight [3]float32 `toml:"ambient_light"`
	// SkyColor fills the skybox until SetSkybox is called.
	SkyColor [3]float32 `toml:"sky_color"`

	Logger *slog.Logger `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Exposure:     1.0,
		Gamma:        2.2,
		ClearColor:   [4]float32{0, 0, 0, 1},
		AmbientLight: [3]float32{0.05, 0.05, 0.05},
		SkyColor:     [3]float32{0.1, 0.12, 0.18},
	}
}

// LoadConfig reads a TOML file over DefaultConfig; keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Exposure <= 0 {
		return fmt.Errorf("exposure must be positive, got %v", c.Exposure)
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive, got %v", c.Gamma)
	}
	return nil
}

func (c Config) clearColor() core.Color {
	return core.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}

func (c Config) ambientLight() math.Vec3 {
	return math.NewVec3(c.AmbientLight[0], c.AmbientLight[1], c.AmbientLight[2])
}

func (c Config) skyColor() math.Vec3 {
	return math.NewVec3(c.SkyColor[0], c.SkyColor[1], c.SkyColor[2])
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
