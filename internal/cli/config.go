package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/depinfo/pkg/errors"
)

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Color modes.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// Config is the depinfo configuration file.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Npm    NpmConfig    `toml:"npm"`
	Output OutputConfig `toml:"output"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects where package sizes are memoized.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// NpmConfig locates unpacked packages for size lookups.
type NpmConfig struct {
	PackagesDir string `toml:"packages_dir"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	Color string `toml:"color"`
}

// ServerConfig configures "depinfo serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "24h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:   backendFile,
			TTL:       duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
		Output: OutputConfig{Color: colorAuto},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// configPath picks the config file: the --config flag, $DEPINFO_CONFIG, then
// the XDG location. explicit reports whether the user named the file, in
// which case it must exist.
func configPath(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv("DEPINFO_CONFIG"); env != "" {
		return env, true
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), false
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".config", appName, "config.toml"), false
}

// loadConfig reads the config file named by flag (or found on the search
// path) over the defaults. A missing file on the search path is not an error.
func loadConfig(flag string) (*Config, error) {
	cfg := defaultConfig()
	path, explicit := configPath(flag)
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return defaultConfig(), nil
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Cache.RedisDB < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_db must not be negative")
	}
	switch c.Output.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return errs.ValidateListenAddr(c.Server.Addr)
}
