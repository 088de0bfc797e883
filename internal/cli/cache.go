package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depinfo/pkg/cache"
	errs "github.com/matzehuels/depinfo/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the package size cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached package sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.ErrOrStderr()

			var store cache.Cache
			switch cfg.Cache.Backend {
			case backendNone:
				printInfo(out, "Caching is disabled")
				return nil
			case backendRedis:
				rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
				if err != nil {
					return errs.Wrap(errs.ErrCodeCache, err, "open redis cache")
				}
				store = rc
			default:
				dir, err := resolveCacheDir(cfg)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return errs.Wrap(errs.ErrCodeCache, err, "open file cache")
				}
				store = fc
			}
			defer store.Close()

			if err := store.Clear(ctx); err != nil {
				return errs.Wrap(errs.ErrCodeCache, err, "clear cache")
			}
			printSuccess(out, "Cleared %s cache", cfg.Cache.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail(out, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != backendFile {
				printWarning(cmd.ErrOrStderr(), "cache backend is %s; the directory is unused", cfg.Cache.Backend)
			}
			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
