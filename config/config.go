// Package config holds the tunables of the formatting pipeline:
// the device the document is laid out for, the layout budgets, the cache
// sizes and the logging setup.
//
// Values are loaded with viper, so that they may come from a YAML file,
// environment variables (prefixed by VFORMAT_) or command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// ErrInvalid is wrapped by all the validation errors.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix is the prefix of the environment variables overriding the config.
const EnvPrefix = "VFORMAT"

// Config is the root configuration.
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Layout   LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ViewportConfig describes the output device.
type ViewportConfig struct {
	Width            float64 `mapstructure:"width" yaml:"width"`
	Height           float64 `mapstructure:"height" yaml:"height"`
	DevicePixelRatio float64 `mapstructure:"device_pixel_ratio" yaml:"device_pixel_ratio"`
	// Media is the media type used to evaluate media queries ("screen" or "print").
	Media       string `mapstructure:"media" yaml:"media"`
	ColorScheme string `mapstructure:"color_scheme" yaml:"color_scheme"`
}

// LayoutConfig bounds the work done by one layout pass.
type LayoutConfig struct {
	// Budget is the wall clock time allowed to one full document layout.
	// Zero means no deadline.
	Budget time.Duration `mapstructure:"budget" yaml:"budget"`
	// MaxSteps is the maximum number of formatting context entries and
	// fragmentation breaks for one pass. Zero means no limit.
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps"`
	// MaxFragments bounds the number of fragments one box may be split into.
	MaxFragments int `mapstructure:"max_fragments" yaml:"max_fragments"`
	// MaxParallelism caps the number of measurement goroutines.
	// Zero means GOMAXPROCS.
	MaxParallelism int `mapstructure:"max_parallelism" yaml:"max_parallelism"`
	// ParallelThreshold is the minimal estimated work, in boxes, given
	// to each measurement goroutine. Smaller batches stay on the
	// calling goroutine.
	ParallelThreshold int `mapstructure:"parallel_threshold" yaml:"parallel_threshold"`
	// FlexMaxRounds bounds the freeze loop of flexible lengths resolution
	// and the grid track maximization loop.
	FlexMaxRounds int `mapstructure:"flex_max_rounds" yaml:"flex_max_rounds"`
	// Paginate splits the document into pages of the viewport (or @page) size.
	Paginate bool `mapstructure:"paginate" yaml:"paginate"`
}

// CacheConfig sizes the per document caches.
type CacheConfig struct {
	Shards        int `mapstructure:"shards" yaml:"shards"`
	StyleEntries  int `mapstructure:"style_entries" yaml:"style_entries"`
	LayoutEntries int `mapstructure:"layout_entries" yaml:"layout_entries"`
	MediaEntries  int `mapstructure:"media_entries" yaml:"media_entries"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the default values on [v].
func SetDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)
	v.SetDefault("viewport.device_pixel_ratio", 1)
	v.SetDefault("viewport.media", "screen")
	v.SetDefault("viewport.color_scheme", "light")

	v.SetDefault("layout.budget", "2s")
	v.SetDefault("layout.max_steps", 1_000_000)
	v.SetDefault("layout.max_fragments", 10_000)
	v.SetDefault("layout.max_parallelism", 0)
	v.SetDefault("layout.parallel_threshold", 32)
	v.SetDefault("layout.flex_max_rounds", 16)
	v.SetDefault("layout.paginate", false)

	v.SetDefault("cache.shards", 16)
	v.SetDefault("cache.style_entries", 4096)
	v.SetDefault("cache.layout_entries", 4096)
	v.SetDefault("cache.media_entries", 64)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 14)
	v.SetDefault("log.compress", false)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewDefaultConfig returns the configuration built from the defaults only.
func NewDefaultConfig() *Config {
	cfg, err := NewConfigFromViper(NewViper())
	if err != nil { // defaults are valid
		panic(err)
	}
	return cfg
}

// NewConfigFromViper decodes and validates the configuration held by [v].
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the YAML file at [path] (if not empty) on top of the defaults.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// Validate checks the configuration for sane values. All the
// problems are reported, each wrapping [ErrInvalid].
func (c *Config) Validate() error {
	var errs error
	invalid := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		invalid("viewport size must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Viewport.DevicePixelRatio <= 0 {
		invalid("device_pixel_ratio must be positive")
	}
	switch c.Viewport.Media {
	case "screen", "print":
	default:
		invalid("unsupported media type %q", c.Viewport.Media)
	}
	switch c.Viewport.ColorScheme {
	case "light", "dark":
	default:
		invalid("unsupported color scheme %q", c.Viewport.ColorScheme)
	}
	if c.Layout.Budget < 0 || c.Layout.MaxSteps < 0 || c.Layout.MaxFragments < 0 {
		invalid("layout limits must not be negative")
	}
	if c.Layout.FlexMaxRounds <= 0 {
		invalid("layout.flex_max_rounds must be a positive integer")
	}
	if c.Cache.Shards <= 0 || c.Cache.StyleEntries <= 0 || c.Cache.LayoutEntries <= 0 || c.Cache.MediaEntries <= 0 {
		invalid("cache sizes must be positive integers")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		invalid("unsupported log format %q", c.Log.Format)
	}
	return errs
}
