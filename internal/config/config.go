package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the client settings
// provide a value.
const (
	DefaultPattern       = `<<([^<>\n]+)>>`
	DefaultPathSeparator = ":"
	DefaultMaxBytes      = 8192
	DefaultDebounceMs    = 100
	DefaultJoiner        = " "
)

// Config holds all recognized options. Options take effect on the next
// recomputation pass; pattern and style changes additionally recreate the
// decoration resources on the client side.
type Config struct {
	Pattern       string `mapstructure:"pattern"`
	PathSeparator string `mapstructure:"pathSeparator"`

	BorderColor     string `mapstructure:"borderColor"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	InlineColor     string `mapstructure:"inlineColor"`

	OnlyHighlightExistingPaths bool `mapstructure:"onlyHighlightExistingPaths"`
	ShowInline                 bool `mapstructure:"showInline"`
	ShowHover                  bool `mapstructure:"showHover"`

	MaxBytes      int    `mapstructure:"maxBytes"`
	NewlineJoiner string `mapstructure:"newlineJoiner"`
	DebounceMs    int    `mapstructure:"debounceMs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pattern:         DefaultPattern,
		PathSeparator:   DefaultPathSeparator,
		BorderColor:     "#8888ff",
		BackgroundColor: "rgba(136,136,255,0.15)",
		InlineColor:     "#888888",
		ShowInline:      true,
		ShowHover:       true,
		MaxBytes:        DefaultMaxBytes,
		NewlineJoiner:   DefaultJoiner,
		DebounceMs:      DefaultDebounceMs,
	}
}

// Load reads an optional config file on top of the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	config := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".config", "tagpeek", "tagpeek.yaml")
		}
	}
	if path == "" {
		return config, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return config, nil
		}
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.normalize()
	return config, nil
}

// Merge applies a client settings map (workspace/didChangeConfiguration) on
// top of the current values. Unknown keys are ignored, wrong-typed values
// keep the previous setting.
func (c *Config) Merge(settings map[string]any) {
	setString(settings, "pattern", &c.Pattern)
	setString(settings, "pathSeparator", &c.PathSeparator)
	setString(settings, "borderColor", &c.BorderColor)
	setString(settings, "backgroundColor", &c.BackgroundColor)
	setString(settings, "inlineColor", &c.InlineColor)
	setBool(settings, "onlyHighlightExistingPaths", &c.OnlyHighlightExistingPaths)
	setBool(settings, "showInline", &c.ShowInline)
	setBool(settings, "showHover", &c.ShowHover)
	setInt(settings, "maxBytes", &c.MaxBytes)
	setString(settings, "newlineJoiner", &c.NewlineJoiner)
	setInt(settings, "debounceMs", &c.DebounceMs)
	c.normalize()
}

func (c *Config) normalize() {
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.PathSeparator == "" {
		c.PathSeparator = DefaultPathSeparator
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = DefaultDebounceMs
	}
}

func setString(m map[string]any, key string, dst *string) {
	if v, ok := m[key].(string); ok {
		*dst = v
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if v, ok := m[key].(bool); ok {
		*dst = v
	}
}

func setInt(m map[string]any, key string, dst *int) {
	switch v := m[key].(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	}
}
