package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendOpenGL = "opengl"
	BackendVulkan = "vulkan"
	BackendNull   = "null"
)

type WindowConfig struct {
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Title      string `yaml:"title" toml:"title"`
	Resizable  bool   `yaml:"resizable" toml:"resizable"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
}

type RendererConfig struct {
	// MinVersion is the lowest backend version accepted, as "major.minor".
	MinVersion string `yaml:"min_version" toml:"min_version"`
	// EvictionAge is the number of draws a cached vertex array may go
	// unused before a mesh destroys it.
	EvictionAge int `yaml:"eviction_age" toml:"eviction_age"`
}

// Config is the engine start-up configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Backend  string         `yaml:"backend" toml:"backend"`
	Renderer RendererConfig `yaml:"renderer" toml:"renderer"`
	LogLevel string         `yaml:"log_level" toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "Solo",
			Resizable: true,
			VSync:     true,
		},
		Backend: BackendOpenGL,
		Renderer: RendererConfig{
			MinVersion:  "3.3",
			EvictionAge: 1000,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file on top of
// DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = "toml"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return Config{}, fmt.Errorf("config %q: unknown format %q", path, filepath.Ext(path))
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data in the given format ("yaml" or "toml").
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendOpenGL, BackendVulkan, BackendNull:
	default:
		return fmt.Errorf("invalid backend %q", c.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.EvictionAge <= 0 {
		return errors.New("renderer.eviction_age must be positive")
	}
	if _, _, err := ParseVersion(c.Renderer.MinVersion); err != nil {
		return err
	}
	return nil
}

// ParseVersion splits "major.minor".
func ParseVersion(s string) (major, minor int, err error) {
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return 0, 0, fmt.Errorf("invalid version %q: want major.minor", s)
	}
	return major, minor, nil
}
