// Package config holds the tunables of the shadow mapping demo. Every value has a default, a YAML file only needs
// to name what it changes.
package config

import (
	"bytes"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFilename = "config.yaml"

const (
	MIN_SHADOW_MAP_SIZE = 16
	MAX_SHADOW_MAP_SIZE = 16384
)

type Config struct {
	Window       WindowConfig `yaml:"window"`
	Validation   bool         `yaml:"validation"`
	Shadow       ShadowConfig `yaml:"shadow"`
	Light        LightConfig  `yaml:"light"`
	Camera       CameraConfig `yaml:"camera"`
	Assets       AssetsConfig `yaml:"assets"`
	WatchShaders bool         `yaml:"watch_shaders"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
}

type ShadowConfig struct {
	MapSize      uint32  `yaml:"map_size"`
	BiasConstant float32 `yaml:"bias_constant"`
	BiasSlope    float32 `yaml:"bias_slope"`
	LightFov     float32 `yaml:"light_fov"`
	Near         float32 `yaml:"near"`
	Far          float32 `yaml:"far"`
}

// LightConfig places the shadow casting light. Animation orbits it about the Y axis, a light on that axis stays put.
type LightConfig struct {
	Position   [3]float32 `yaml:"position"`
	Animate    bool       `yaml:"animate"`
	OrbitSpeed float32    `yaml:"orbit_speed"` // degrees per second
}

type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	Fov    float32    `yaml:"fov"`
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
}

type AssetsConfig struct {
	Teapot    string `yaml:"teapot"`
	Floor     string `yaml:"floor"`
	ShaderDir string `yaml:"shader_dir"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Vulkan: shadow mapping",
			Width:  800,
			Height: 600,
		},
		Validation: true,
		Shadow: ShadowConfig{
			MapSize:      1024,
			BiasConstant: 1.25,
			BiasSlope:    1.75,
			LightFov:     60,
			Near:         0.1,
			Far:          100,
		},
		Light: LightConfig{
			Position:   [3]float32{0, 25, 0},
			Animate:    false,
			OrbitSpeed: 20,
		},
		Camera: CameraConfig{
			Eye:    [3]float32{10, 10, 10},
			Target: [3]float32{0, 0, 0},
			Fov:    45,
			Near:   0.1,
			Far:    100,
		},
		Assets: AssetsConfig{
			Teapot:    "data/teapot.obj",
			Floor:     "data/floor.obj",
			ShaderDir: "shaders_spv",
		},
		WatchShaders: false,
	}
}

// Load reads the config at path on top of the defaults. An empty path falls back to DefaultFilename if that file
// exists and to the plain defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFilename); err != nil {
			log.Printf("No %s found, using default configuration", DefaultFilename)
			return Default(), nil
		}
		path = DefaultFilename
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	log.Printf("Successfully loaded configuration from %s", path)
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	size := c.Shadow.MapSize
	if size < MIN_SHADOW_MAP_SIZE || size > MAX_SHADOW_MAP_SIZE || size&(size-1) != 0 {
		return errors.Newf("shadow map size %d must be a power of two between %d and %d",
			size, MIN_SHADOW_MAP_SIZE, MAX_SHADOW_MAP_SIZE)
	}
	if err := validateFrustum("shadow", c.Shadow.LightFov, c.Shadow.Near, c.Shadow.Far); err != nil {
		return err
	}
	if err := validateFrustum("camera", c.Camera.Fov, c.Camera.Near, c.Camera.Far); err != nil {
		return err
	}
	if c.Assets.Teapot == "" || c.Assets.Floor == "" || c.Assets.ShaderDir == "" {
		return errors.New("asset paths must not be empty")
	}
	return nil
}

func validateFrustum(name string, fov, near, far float32) error {
	if fov <= 0 || fov >= 180 {
		return errors.Newf("%s field of view %.1f must be within (0, 180) degrees", name, fov)
	}
	if near <= 0 || near >= far {
		return errors.Newf("%s near plane %.3f must be positive and in front of the far plane %.3f", name, near, far)
	}
	return nil
}
