package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depinfo/pkg/buildinfo"
	"github.com/matzehuels/depinfo/pkg/cache"
	errs "github.com/matzehuels/depinfo/pkg/errors"
	"github.com/matzehuels/depinfo/pkg/info"
	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/sizes"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depinfo"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFlag string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depinfo prints module graphs and the npm packages they resolve to",
		Long: `depinfo reads a module graph and an npm resolution snapshot and reports
the dependency tree of the program's root module, with module and package
sizes, as a text tree, augmented JSON, Graphviz DOT or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			installHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default $XDG_CONFIG_HOME/depinfo/config.toml)")

	root.AddCommand(c.infoCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration once per CLI.
func (c *CLI) loadConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := loadConfig(c.configFlag)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Cache and Size Oracle
// =============================================================================

// newCache opens the configured cache backend. Size lookups are best effort,
// so an unavailable backend degrades to a NullCache with a warning.
func (c *CLI) newCache(ctx context.Context, cfg *Config, noCache bool) cache.Cache {
	logger := loggerFromContext(ctx)
	if noCache {
		return cache.NewNullCache()
	}
	switch cfg.Cache.Backend {
	case backendNone:
		return cache.NewNullCache()
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newSizer builds the package size oracle. Without a packages directory no
// sizes are known and nil is returned.
func newSizer(cfg *Config, c cache.Cache) info.PackageSizer {
	if cfg.Npm.PackagesDir == "" {
		return nil
	}
	return sizes.Cached(sizes.Dir(cfg.Npm.PackagesDir), c, cfg.Cache.TTL.Duration)
}

// =============================================================================
// Inputs
// =============================================================================

// loadGraph reads a module graph file, mapping failures to error codes.
func loadGraph(ctx context.Context, path string) (*modgraph.Graph, error) {
	s := startStep(loggerFromContext(ctx), "load graph")
	g, err := modgraph.ReadGraphFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read graph")
		}
		return nil, errs.Wrap(graphErrorCode(err), err, "read graph %s", path)
	}
	s.done("file", filepath.Base(path), "modules", g.ModuleCount())
	return g, nil
}

// graphErrorCode classifies a graph decoding failure. Malformed npm
// specifiers get their own code.
func graphErrorCode(err error) errs.Code {
	if errors.Is(err, npm.ErrInvalidReference) {
		return errs.ErrCodeInvalidSpecifier
	}
	return errs.ErrCodeInvalidGraph
}

// loadSnapshot reads a snapshot file. An empty path yields an empty snapshot.
func loadSnapshot(ctx context.Context, path string) (*npm.Snapshot, error) {
	if path == "" {
		return npm.NewSnapshot(), nil
	}
	s := startStep(loggerFromContext(ctx), "load snapshot")
	snap, err := npm.ReadSnapshotFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read snapshot")
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "read snapshot %s", path)
	}
	s.done("file", filepath.Base(path), "packages", snap.Len())
	return snap, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/depinfo/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// resolveCacheDir returns the configured cache directory or the XDG default.
func resolveCacheDir(cfg *Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}
