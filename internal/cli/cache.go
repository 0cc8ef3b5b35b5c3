package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/internal/config"
	"github.com/matzehuels/equipneeds/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and catalog cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached API responses and catalog snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings().Cache

			if cfg.Backend == config.BackendFile || cfg.Backend == "" {
				dir, err := cfg.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			backend, err := cfg.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			cleared, err := cache.Clear(cmd.Context(), backend)
			if err != nil {
				return err
			}
			if !cleared {
				printInfo("The %s backend keeps nothing to clear", cfg.Backend)
				return nil
			}
			printSuccess("Cleared the %s cache", cfg.Backend)
			if dir, err := cfg.CacheDir(); err == nil && cfg.Backend == config.BackendFile {
				printDetail("Directory: %s", dir)
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
			dir, err := c.settings().Cache.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
