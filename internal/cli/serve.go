package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		playerFile string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the needs report over HTTP",
		Long: `Serve the needs report over HTTP.

The catalog session is built on the first request and reused until the
recipe tree digest changes or POST /v1/catalog/invalidate drops it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			rt, err := c.newRuntime(ctx, playerFile, catalogProgress(logger, nil))
			if err != nil {
				return err
			}
			defer rt.Close()

			opts := server.Options{Logger: logger, TraitBonus: cfg.Voyage.TraitBonus}
			if rt.stores {
				opts.Stores = rt.client
			}
			srv := server.New(rt.players, rt.sessions(cfg, logger), opts)
			printInfo("Listening on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&playerFile, "player", "", "read the player snapshot from a JSON file instead of the API")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
