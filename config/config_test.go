package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Vulkan: shadow mapping", cfg.Window.Title)
	assert.Equal(t, int32(800), cfg.Window.Width)
	assert.Equal(t, int32(600), cfg.Window.Height)
	assert.Equal(t, uint32(1024), cfg.Shadow.MapSize)
	assert.Equal(t, float32(1.25), cfg.Shadow.BiasConstant)
	assert.Equal(t, float32(1.75), cfg.Shadow.BiasSlope)
	assert.Equal(t, [3]float32{0, 25, 0}, cfg.Light.Position)
	assert.Equal(t, [3]float32{10, 10, 10}, cfg.Camera.Eye)
	assert.False(t, cfg.WatchShaders)
}

func TestParseOverridesOnlyWhatIsGiven(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 1280
shadow:
  map_size: 2048
light:
  position: [5, 20, -5]
  animate: true
watch_shaders: true
`))
	require.NoError(t, err)

	assert.Equal(t, int32(1280), cfg.Window.Width)
	assert.Equal(t, int32(600), cfg.Window.Height)
	assert.Equal(t, "Vulkan: shadow mapping", cfg.Window.Title)
	assert.Equal(t, uint32(2048), cfg.Shadow.MapSize)
	assert.Equal(t, float32(1.25), cfg.Shadow.BiasConstant)
	assert.Equal(t, [3]float32{5, 20, -5}, cfg.Light.Position)
	assert.True(t, cfg.Light.Animate)
	assert.True(t, cfg.WatchShaders)
}

func TestExampleConfigOrbitsLight(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)
	cfg, err := Parse(b)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Light.Animate)
	p := cfg.Light.Position
	assert.NotZero(t, p[0]*p[0]+p[2]*p[2], "light on the orbit axis")
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("shadow:\n  mapsize: 512\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"zero width":            func(c *Config) { c.Window.Width = 0 },
		"negative height":       func(c *Config) { c.Window.Height = -1 },
		"map size not pow2":     func(c *Config) { c.Shadow.MapSize = 1000 },
		"map size too small":    func(c *Config) { c.Shadow.MapSize = 8 },
		"map size too large":    func(c *Config) { c.Shadow.MapSize = 32768 },
		"shadow near after far": func(c *Config) { c.Shadow.Near = 200 },
		"camera near zero":      func(c *Config) { c.Camera.Near = 0 },
		"camera fov zero":       func(c *Config) { c.Camera.Fov = 0 },
		"light fov 180":         func(c *Config) { c.Shadow.LightFov = 180 },
		"empty teapot":          func(c *Config) { c.Assets.Teapot = "" },
		"empty shader dir":      func(c *Config) { c.Assets.ShaderDir = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation: false\ncamera:\n  fov: 60\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Validation)
	assert.Equal(t, float32(60), cfg.Camera.Fov)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
