package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/imagestrip/internal/strip"
)

// Transport names accepted in the transport key.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// EnvConfigPath overrides the default config location when set.
const EnvConfigPath = "IMAGESTRIP_CONFIG"

// Config captures server and viewer settings.
type Config struct {
	Listen    string
	CacheDir  string
	LogDir    string
	Manifest  string
	Transport string
	Strip     StripConfig
}

// StripConfig holds the settings every new strip session starts with.
type StripConfig struct {
	BoxWidth       int
	BoxHeight      int
	ImageMaxWidth  int
	ImageMaxHeight int
	MaxVisible     int
	Alignment      string
	Animated       bool
	Selectable     bool
}

const (
	defaultConfigPath = "~/.config/imagestrip/config.toml"
	defaultListen     = "127.0.0.1:7490"
	defaultCacheDir   = "~/.cache/imagestrip/assets"
	defaultLogDir     = "~/.local/share/imagestrip/logs"
	defaultManifest   = "~/.config/imagestrip/images.yaml"
)

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	opts := strip.DefaultOptions()
	return Config{
		Listen:    defaultListen,
		CacheDir:  mustExpand(defaultCacheDir),
		LogDir:    mustExpand(defaultLogDir),
		Manifest:  mustExpand(defaultManifest),
		Transport: TransportWebSocket,
		Strip: StripConfig{
			BoxWidth:       opts.BoxWidth,
			BoxHeight:      opts.BoxHeight,
			ImageMaxWidth:  opts.ImageMaxWidth,
			ImageMaxHeight: opts.ImageMaxHeight,
			MaxVisible:     opts.MaxAllowed,
			Alignment:      "horizontal",
			Animated:       opts.Animated,
			Selectable:     opts.Selectable,
		},
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// The result is validated.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Listen    string `toml:"listen"`
		CacheDir  string `toml:"cache_dir"`
		LogDir    string `toml:"log_dir"`
		Manifest  string `toml:"manifest"`
		Transport string `toml:"transport"`
		Strip     struct {
			BoxWidth       *int   `toml:"box_width"`
			BoxHeight      *int   `toml:"box_height"`
			ImageMaxWidth  *int   `toml:"image_max_width"`
			ImageMaxHeight *int   `toml:"image_max_height"`
			MaxVisible     *int   `toml:"max_visible"`
			Alignment      string `toml:"alignment"`
			Animated       *bool  `toml:"animated"`
			Selectable     *bool  `toml:"selectable"`
		} `toml:"strip"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Listen); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		cfg.CacheDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Manifest); v != "" {
		cfg.Manifest = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Transport); v != "" {
		cfg.Transport = strings.ToLower(v)
	}

	s := raw.Strip
	setInt(&cfg.Strip.BoxWidth, s.BoxWidth)
	setInt(&cfg.Strip.BoxHeight, s.BoxHeight)
	setInt(&cfg.Strip.ImageMaxWidth, s.ImageMaxWidth)
	setInt(&cfg.Strip.ImageMaxHeight, s.ImageMaxHeight)
	setInt(&cfg.Strip.MaxVisible, s.MaxVisible)
	if v := strings.TrimSpace(s.Alignment); v != "" {
		cfg.Strip.Alignment = strings.ToLower(v)
	}
	if s.Animated != nil {
		cfg.Strip.Animated = *s.Animated
	}
	if s.Selectable != nil {
		cfg.Strip.Selectable = *s.Selectable
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		return fmt.Errorf("%w: unknown transport %q", strip.ErrInvalidConfiguration, c.Transport)
	}
	if _, err := c.Strip.alignment(); err != nil {
		return err
	}
	if c.Strip.BoxWidth <= 0 || c.Strip.BoxHeight <= 0 {
		return fmt.Errorf("%w: box size %dx%d must be positive", strip.ErrInvalidConfiguration, c.Strip.BoxWidth, c.Strip.BoxHeight)
	}
	if c.Strip.ImageMaxWidth <= 0 || c.Strip.ImageMaxHeight <= 0 {
		return fmt.Errorf("%w: image max size %dx%d must be positive", strip.ErrInvalidConfiguration, c.Strip.ImageMaxWidth, c.Strip.ImageMaxHeight)
	}
	if c.Strip.ImageMaxWidth > c.Strip.BoxWidth {
		return fmt.Errorf("%w: image_max_width %d exceeds box_width %d", strip.ErrInvalidConfiguration, c.Strip.ImageMaxWidth, c.Strip.BoxWidth)
	}
	if c.Strip.ImageMaxHeight > c.Strip.BoxHeight {
		return fmt.Errorf("%w: image_max_height %d exceeds box_height %d", strip.ErrInvalidConfiguration, c.Strip.ImageMaxHeight, c.Strip.BoxHeight)
	}
	return nil
}

// StripOptions converts the strip section into options for strip.New.
func (c Config) StripOptions() (strip.Options, error) {
	align, err := c.Strip.alignment()
	if err != nil {
		return strip.Options{}, err
	}
	maxVisible := c.Strip.MaxVisible
	if maxVisible < 0 {
		maxVisible = strip.Unlimited
	}
	return strip.Options{
		Alignment:      align,
		BoxWidth:       c.Strip.BoxWidth,
		BoxHeight:      c.Strip.BoxHeight,
		ImageMaxWidth:  c.Strip.ImageMaxWidth,
		ImageMaxHeight: c.Strip.ImageMaxHeight,
		MaxAllowed:     maxVisible,
		Animated:       c.Strip.Animated,
		Selectable:     c.Strip.Selectable,
	}, nil
}

// ServerLogPath returns the server's log file.
func (c Config) ServerLogPath() string {
	return c.logPath("server.log")
}

// ViewerLogPath returns the viewer's log file.
func (c Config) ViewerLogPath() string {
	return c.logPath("viewer.log")
}

func (c Config) logPath(name string) string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + name)
	}
	return filepath.Join(c.LogDir, name)
}

func (s StripConfig) alignment() (strip.Alignment, error) {
	switch s.Alignment {
	case "", "horizontal":
		return strip.Horizontal, nil
	case "vertical":
		return strip.Vertical, nil
	default:
		return 0, fmt.Errorf("%w: unknown alignment %q", strip.ErrInvalidConfiguration, s.Alignment)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return expandPath(path)
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return expandPath(env)
	}
	return expandPath(defaultConfigPath)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
