// Package config loads the typegraph configuration file.
//
// The file lives at $XDG_CONFIG_HOME/typegraph/config.toml and is optional:
// every setting has a default, and TYPEGRAPH_* environment variables
// override the file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/typegraph/pkg/cache"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

const appName = "typegraph"

// Environment variables that override the file.
const (
	EnvRedisAddr   = "TYPEGRAPH_REDIS_ADDR"
	EnvMongoURI    = "TYPEGRAPH_MONGO_URI"
	EnvAddr        = "TYPEGRAPH_ADDR"
	EnvCache       = "TYPEGRAPH_CACHE"
	EnvCachePrefix = "TYPEGRAPH_CACHE_PREFIX"
)

// Config represents the application configuration.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// NewDefaultConfig returns the configuration used when no file exists.
func NewDefaultConfig() *Config {
	m := layout.DefaultMetrics()
	return &Config{
		Layout: LayoutConfig{
			CardWidth:    m.CardWidth,
			XMargin:      m.XMargin,
			HeaderHeight: m.HeaderHeight,
			FieldHeight:  m.FieldHeight,
			CardMargin:   m.CardMargin,
		},
		Viewport: ViewportConfig{
			Padding:      viewport.DefaultPadding,
			SilentWindow: viewport.DefaultSilentWindow.String(),
		},
		Cache:  CacheConfig{Backend: cache.BackendFile, MongoDatabase: appName, MongoCollection: "cache"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.Viewport.Validate(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// LayoutConfig holds card metrics and model options.
type LayoutConfig struct {
	CardWidth    float64 `toml:"card_width"`
	XMargin      float64 `toml:"x_margin"`
	HeaderHeight float64 `toml:"header_height"`
	FieldHeight  float64 `toml:"field_height"`
	CardMargin   float64 `toml:"card_margin"`
	WithAsset    bool    `toml:"with_asset"`

	// Strategy forces "detailed" or "light". Empty chooses by edge count.
	Strategy string `toml:"strategy"`
}

// Metrics returns the card metrics for the layout engine.
func (c *LayoutConfig) Metrics() layout.Metrics {
	return layout.Metrics{
		CardWidth:    c.CardWidth,
		XMargin:      c.XMargin,
		HeaderHeight: c.HeaderHeight,
		FieldHeight:  c.FieldHeight,
		CardMargin:   c.CardMargin,
	}
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CardWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.XMargin, validation.Min(0.0)),
		validation.Field(&c.HeaderHeight, validation.Required, validation.Min(1.0)),
		validation.Field(&c.FieldHeight, validation.Required, validation.Min(1.0)),
		validation.Field(&c.CardMargin, validation.Min(0.0)),
		validation.Field(&c.Strategy, validation.In("detailed", "light")),
	)
}

// ViewportConfig holds the fit-to-view settings.
type ViewportConfig struct {
	Padding float64 `toml:"padding"`

	// SilentWindow is a Go duration string such as "250ms".
	SilentWindow string `toml:"silent_window"`
}

// Window returns the parsed silent window. Validate reports parse errors.
func (c *ViewportConfig) Window() time.Duration {
	d, err := time.ParseDuration(c.SilentWindow)
	if err != nil {
		return viewport.DefaultSilentWindow
	}
	return d
}

// Validate validates the viewport configuration.
func (c *ViewportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Padding, validation.Min(0.0)),
		validation.Field(&c.SilentWindow, validation.Required, validation.By(isDuration)),
	)
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// Prefix namespaces the keys on a shared backend.
	Prefix string `toml:"prefix"`
}

// Options converts the section into the arguments of [cache.Open].
func (c *CacheConfig) Options() cache.Config {
	return cache.Config{
		Backend:         c.Backend,
		Dir:             c.Dir,
		RedisAddr:       c.RedisAddr,
		RedisPassword:   c.RedisPassword,
		RedisDB:         c.RedisDB,
		MongoURI:        c.MongoURI,
		MongoDatabase:   c.MongoDatabase,
		MongoCollection: c.MongoCollection,
		Prefix:          c.Prefix,
	}
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == cache.BackendRedis, validation.Required, validation.By(isHostPort))),
		validation.Field(&c.RedisDB, validation.Min(0)),
		validation.Field(&c.MongoURI, validation.When(c.Backend == cache.BackendMongo, validation.Required)),
		validation.Field(&c.MongoDatabase, validation.When(c.Backend == cache.BackendMongo, validation.Required)),
		validation.Field(&c.MongoCollection, validation.When(c.Backend == cache.BackendMongo, validation.Required)),
		validation.Field(&c.Prefix, validation.Length(0, 64), validation.Match(prefixPattern)),
	)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required, validation.By(isHostPort)),
	)
}

// prefixPattern restricts cache prefixes to printable key characters.
var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]*$`)

func isDuration(value any) error {
	s, _ := value.(string)
	if _, err := time.ParseDuration(s); err != nil {
		return errors.New("must be a duration such as 250ms")
	}
	return nil
}

func isHostPort(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("must be host:port")
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return errors.New("port must be between 0 and 65535")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/typegraph/config.toml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, appName, "config.toml"), nil
}

// Load reads the configuration at path, applies environment overrides and
// validates the result. A missing file yields the defaults; unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, typeerrors.Wrap(typeerrors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, typeerrors.New(typeerrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, typeerrors.Wrap(typeerrors.ErrCodeInvalidConfig, err, "config validation failed")
	}
	return cfg, nil
}

// LoadDefault loads the file at [DefaultPath].
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ApplyEnv overrides settings from environment variables. Setting a Redis
// address or Mongo URI also selects that backend unless TYPEGRAPH_CACHE
// names one explicitly.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = cache.BackendRedis
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Cache.MongoURI = v
		c.Cache.Backend = cache.BackendMongo
	}
	if v := getenv(EnvCache); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv(EnvCachePrefix); v != "" {
		c.Cache.Prefix = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}
