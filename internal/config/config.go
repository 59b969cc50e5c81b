package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/world"
)

const (
	minRegionRadius = 0
	maxRegionRadius = 32
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the engine configuration file.
type Config struct {
	// ChunkSize is x, y, z in voxels.
	ChunkSize []int       `yaml:"chunk_size"`
	Scale     int         `yaml:"scale"`
	Light     LightConfig `yaml:"light"`

	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`

	// RegistryPath is a block registry document; empty uses the built-in one.
	RegistryPath string `yaml:"registry"`
	// ModelRoot resolves model references in the registry. Defaults to the
	// registry's directory.
	ModelRoot string `yaml:"model_root"`

	Region RegionConfig `yaml:"region"`

	// DumpDir receives mesh dumps and light atlases when set.
	DumpDir   string `yaml:"dump_dir"`
	LogBuilds bool   `yaml:"log_builds"`
}

type LightConfig struct {
	Compute   bool    `yaml:"compute"`
	VisualMin float32 `yaml:"visual_min"`
	SkyScale  float32 `yaml:"sky_scale"`
}

// RegionConfig is the demo region: chunks within Radius of the center are
// generated, and chunks beyond EvictRadius are dropped after a move.
type RegionConfig struct {
	CenterX     int   `yaml:"center_x"`
	CenterZ     int   `yaml:"center_z"`
	Radius      int   `yaml:"radius"`
	EvictRadius int   `yaml:"evict_radius"`
	Seed        int64 `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	lp := lighting.DefaultParams()
	return Config{
		ChunkSize: []int{world.DefaultChunkSizeX, world.DefaultChunkSizeY, world.DefaultChunkSizeZ},
		Scale:     2,
		Light:     LightConfig{Compute: true, VisualMin: lp.VisualMin, SkyScale: lp.SkyScale},
		Region:    RegionConfig{Radius: 2, Seed: 1},
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Normalize fills derived defaults and clamps the region radius.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Workers <= 0 {
		c.Workers = max(1, runtime.NumCPU()-1)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 200
	}
	c.Region.Radius = min(max(c.Region.Radius, minRegionRadius), maxRegionRadius)
	if c.Region.EvictRadius < c.Region.Radius {
		c.Region.EvictRadius = c.Region.Radius * 2
	}
	c.RegistryPath = strings.TrimSpace(c.RegistryPath)
	c.ModelRoot = strings.TrimSpace(c.ModelRoot)
	c.DumpDir = strings.TrimSpace(c.DumpDir)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if len(c.ChunkSize) != 3 {
		return fmt.Errorf("%w: chunk_size needs 3 values, got %d", ErrInvalid, len(c.ChunkSize))
	}
	if !c.Size().Valid() {
		return fmt.Errorf("%w: chunk_size %v must be positive", ErrInvalid, c.ChunkSize)
	}
	if c.Scale != 2 && c.Scale != 4 {
		return fmt.Errorf("%w: scale %d (supported: 2, 4)", ErrInvalid, c.Scale)
	}
	if err := c.LightParams().Validate(); err != nil {
		return fmt.Errorf("%w: light: %w", ErrInvalid, err)
	}
	if c.Workers < 1 || c.QueueSize < 1 {
		return fmt.Errorf("%w: workers %d, queue_size %d", ErrInvalid, c.Workers, c.QueueSize)
	}
	return nil
}

// Size returns the chunk size. It is only meaningful after Validate.
func (c *Config) Size() world.Size {
	if len(c.ChunkSize) != 3 {
		return world.Size{}
	}
	return world.Size{X: c.ChunkSize[0], Y: c.ChunkSize[1], Z: c.ChunkSize[2]}
}

// LightParams returns the light sampling parameters.
func (c *Config) LightParams() lighting.Params {
	return lighting.Params{VisualMin: c.Light.VisualMin, SkyScale: c.Light.SkyScale}
}

// RegionCoords lists the chunks of the demo region in (Z, X) order.
func (c *Config) RegionCoords() []world.ChunkCoord {
	r := c.Region.Radius
	out := make([]world.ChunkCoord, 0, (2*r+1)*(2*r+1))
	for z := c.Region.CenterZ - r; z <= c.Region.CenterZ+r; z++ {
		for x := c.Region.CenterX - r; x <= c.Region.CenterX+r; x++ {
			out = append(out, world.ChunkCoord{X: x, Z: z})
		}
	}
	return out
}
