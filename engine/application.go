package engine

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer"
	"github.com/spaghettifunk/timber/engine/renderer/raster"
	"github.com/spaghettifunk/timber/engine/wood"
)

type LogConfig struct {
	Level string `toml:"level"`
}

type WoodConfig struct {
	MaxSplinters  uint32  `toml:"max_splinters"`
	NumJags       uint32  `toml:"num_jags"`
	MaxHealth     float32 `toml:"max_health"`
	Seed          uint64  `toml:"seed"`
	ReflexRetries uint32  `toml:"reflex_retries"`
	// DamageQueue bounds the damage events buffered between two ticks.
	DamageQueue int `toml:"damage_queue"`
}

type PreviewConfig struct {
	Size        int     `toml:"size"`
	Supersample int     `toml:"supersample"`
	Format      string  `toml:"format"`
	Yaw         float32 `toml:"yaw"`
	Pitch       float32 `toml:"pitch"`
}

type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type ApplicationConfig struct {
	// The application name used in log lines.
	Name string `toml:"name"`
	// Renderer backend receiving dirty mesh ranges ("memory" or "null").
	Renderer string `toml:"renderer"`
	// Ticks per second for Engine.Run. Zero runs unthrottled.
	TickRate int           `toml:"tick_rate"`
	Log      LogConfig     `toml:"log"`
	Wood     WoodConfig    `toml:"wood"`
	Preview  PreviewConfig `toml:"preview"`
	Assets   AssetsConfig  `toml:"assets"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	wc := wood.DefaultConfig()
	po := raster.DefaultOptions()
	return &ApplicationConfig{
		Name:     "timber",
		Renderer: "memory",
		TickRate: 60,
		Log:      LogConfig{Level: "info"},
		Wood: WoodConfig{
			MaxSplinters:  wc.MaxSplinters,
			NumJags:       wc.NumJags,
			MaxHealth:     wood.DefaultMaxHealth,
			Seed:          wc.Seed,
			ReflexRetries: wc.ReflexRetries,
			DamageQueue:   256,
		},
		Preview: PreviewConfig{
			Size:        po.Size,
			Supersample: po.Supersample,
			Format:      raster.FormatPNG.String(),
			Yaw:         po.Yaw,
			Pitch:       po.Pitch,
		},
		Assets: AssetsConfig{Dir: "assets"},
	}
}

// LoadApplicationConfig reads a TOML file on top of the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseApplicationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseApplicationConfig decodes TOML on top of the defaults. Unknown keys are
// rejected.
func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted silently.
func (c *ApplicationConfig) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := renderer.ParseRendererType(c.Renderer); err != nil {
		return err
	}
	if _, err := raster.ParseFormat(c.Preview.Format); err != nil {
		return err
	}
	if c.TickRate < 0 {
		return fmt.Errorf("tick_rate must not be negative, got %d", c.TickRate)
	}
	if c.Wood.MaxHealth < 0 {
		return fmt.Errorf("wood.max_health must not be negative, got %g", c.Wood.MaxHealth)
	}
	if c.Wood.DamageQueue < 0 {
		return fmt.Errorf("wood.damage_queue must not be negative, got %d", c.Wood.DamageQueue)
	}
	return nil
}

func (c *ApplicationConfig) LogLevel() (core.LogLevel, error) {
	return core.ParseLogLevel(c.Log.Level)
}

// WoodConfig converts the [wood] section for wood.BuildWoodState.
func (c *ApplicationConfig) WoodConfig() wood.Config {
	return wood.Config{
		MaxSplinters:  c.Wood.MaxSplinters,
		NumJags:       c.Wood.NumJags,
		ReflexRetries: c.Wood.ReflexRetries,
		Seed:          c.Wood.Seed,
	}
}

// PreviewOptions converts the [preview] section for raster.Render.
func (c *ApplicationConfig) PreviewOptions() raster.Options {
	opts := raster.DefaultOptions()
	if c.Preview.Size > 0 {
		opts.Size = c.Preview.Size
	}
	if c.Preview.Supersample > 0 {
		opts.Supersample = c.Preview.Supersample
	}
	opts.Yaw = c.Preview.Yaw
	opts.Pitch = c.Preview.Pitch
	return opts
}

// Marshal renders the configuration as TOML.
func (c *ApplicationConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
