package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/typegraph/pkg/cache"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvRedisAddr, EnvMongoURI, EnvAddr, EnvCache, EnvCachePrefix} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if got := cfg.Layout.Metrics(); got != layout.DefaultMetrics() {
		t.Errorf("Metrics() = %+v, want %+v", got, layout.DefaultMetrics())
	}
	if got := cfg.Viewport.Window(); got != 250*time.Millisecond {
		t.Errorf("Window() = %v, want 250ms", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	noEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
}

func TestLoadFile(t *testing.T) {
	noEnv(t)
	path := writeConfig(t, `
[layout]
card_width = 300
with_asset = true
strategy = "light"

[viewport]
padding = 40
silent_window = "1s"

[cache]
backend = "none"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Layout.CardWidth != 300 {
		t.Errorf("CardWidth = %v, want 300", cfg.Layout.CardWidth)
	}
	if cfg.Layout.HeaderHeight != layout.DefaultMetrics().HeaderHeight {
		t.Errorf("HeaderHeight = %v, want default", cfg.Layout.HeaderHeight)
	}
	if !cfg.Layout.WithAsset {
		t.Error("WithAsset = false, want true")
	}
	if cfg.Viewport.Padding != 40 {
		t.Errorf("Padding = %v, want 40", cfg.Viewport.Padding)
	}
	if cfg.Viewport.Window() != time.Second {
		t.Errorf("Window() = %v, want 1s", cfg.Viewport.Window())
	}
	if cfg.Cache.Backend != cache.BackendNone {
		t.Errorf("Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[layout]\ncolour = 1\n", "unknown key"},
		{"bad toml", "[layout\n", "parse"},
		{"negative width", "[layout]\ncard_width = -1\n", "CardWidth"},
		{"bad strategy", "[layout]\nstrategy = \"fancy\"\n", "Strategy"},
		{"bad window", "[viewport]\nsilent_window = \"soon\"\n", "SilentWindow"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "Backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "RedisAddr"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n", "MongoURI"},
		{"bad addr", "[server]\naddr = \"localhost\"\n", "Addr"},
		{"bad prefix", "[cache]\nprefix = \"team a/\"\n", "Prefix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !typeerrors.Is(err, typeerrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %q, want %q", typeerrors.GetCode(err), typeerrors.ErrCodeInvalidConfig)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRedisAddr: "cache:6379",
		EnvAddr:      ":7000",
	}
	cfg := NewDefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Cache.Backend != cache.BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %q, want :7000", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestApplyEnvExplicitBackendWins(t *testing.T) {
	env := map[string]string{
		EnvMongoURI: "mongodb://localhost:27017",
		EnvCache:    cache.BackendNone,
	}
	cfg := NewDefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Cache.Backend != cache.BackendNone {
		t.Errorf("Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Cache.MongoURI == "" {
		t.Error("MongoURI should still be set")
	}
}

func TestCacheOptions(t *testing.T) {
	c := CacheConfig{Backend: cache.BackendRedis, RedisAddr: "r:6379", RedisDB: 2, Prefix: "staging:"}
	got := c.Options()
	if got.Backend != cache.BackendRedis || got.RedisAddr != "r:6379" || got.RedisDB != 2 || got.Prefix != "staging:" {
		t.Errorf("Options() = %+v", got)
	}
}

func TestCachePrefix(t *testing.T) {
	noEnv(t)
	cfg, err := Load(writeConfig(t, "[cache]\nbackend = \"none\"\nprefix = \"staging:\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	key := cfg.Cache.Options().Keyer().PositionsKey("m", cache.PositionsKeyOpts{})
	if !strings.HasPrefix(key, "staging:positions:") {
		t.Errorf("PositionsKey = %q, want staging:positions: prefix", key)
	}

	cfg.ApplyEnv(func(k string) string {
		if k == EnvCachePrefix {
			return "prod:"
		}
		return ""
	})
	if cfg.Cache.Prefix != "prod:" {
		t.Errorf("Prefix = %q, want prod: from the environment", cfg.Cache.Prefix)
	}
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
