package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path, _ := configPath(c.configFlag)
			fmt.Fprintln(out, StyleTitle.Render("depinfo config"))
			printDetail(out, "File: %s", path)
			printKeyValue(out, "cache", cfg.Cache.Backend)
			if cfg.Cache.Backend == backendRedis {
				printKeyValue(out, "redis", cfg.Cache.RedisAddr+"/"+strconv.Itoa(cfg.Cache.RedisDB))
			} else if dir, err := resolveCacheDir(cfg); err == nil {
				printKeyValue(out, "cache dir", dir)
			}
			printKeyValue(out, "ttl", cfg.Cache.TTL.String())
			packages := cfg.Npm.PackagesDir
			if packages == "" {
				packages = "(sizes unknown)"
			}
			printKeyValue(out, "packages", packages)
			printKeyValue(out, "color", cfg.Output.Color)
			printKeyValue(out, "addr", cfg.Server.Addr)
			return nil
		},
	}
}
