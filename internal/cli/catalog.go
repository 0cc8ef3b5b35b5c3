package cli

import (
	"github.com/spf13/cobra"
)

// catalogCommand creates the catalog command group.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the equipment catalog",
	}
	cmd.AddCommand(c.catalogSyncCommand())
	return cmd
}

// catalogSyncCommand creates the "catalog sync" subcommand.
func (c *CLI) catalogSyncCommand() *cobra.Command {
	var (
		playerFile string
		rebuild    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Complete the catalog for the current recipe tree and cache it",
		Long: `Complete the equipment catalog for the current recipe tree.

Archetypes missing from the player payload are fetched from the item
description service until every recipe and every crew slot resolves. A
complete catalog is cached under the recipe tree digest, so later runs
with the same digest skip the fetches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			spinner := newSpinnerWithContext(ctx, "Loading player...")
			spinner.Start()
			defer spinner.Stop()

			rt, err := c.newRuntime(ctx, playerFile, catalogProgress(logger, spinner))
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.loadPlayer(ctx, logger)
			if err != nil {
				return err
			}
			if rebuild && snap.RecipeTreeDigest != "" {
				if err := rt.snaps.Invalidate(ctx, snap.RecipeTreeDigest); err != nil {
					logger.Warn("could not drop cached catalog", "digest", snap.RecipeTreeDigest, "err", err)
				}
			}

			spinner.SetMessage("Loading equipment...")
			building := startPhase(logger, "Catalog ready")
			sess, err := rt.sessions(c.settings(), logger).Load(ctx, snap)
			if err != nil {
				spinner.StopWithError("Catalog sync failed")
				return err
			}
			spinner.Stop()
			building.done("archetypes", sess.Catalog.Len(), "fetches", sess.Report.Fetches)

			r := sess.Report
			if r.Complete {
				printSuccess("Catalog complete for digest %s", StyleHighlight.Render(sess.Digest))
			} else {
				printWarning("Catalog incomplete: %d archetypes missing", len(r.Missing))
			}
			printCatalogStats(sess.Catalog.Len(), r)
			if len(r.Dropped) > 0 {
				printDetail("Dropped refs: %v", r.Dropped)
			}
			if len(r.Unresolved) > 0 {
				printDetail("Unknown to the service: %v", r.Unresolved)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&playerFile, "player", "", "read the player snapshot from a JSON file instead of the API")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "ignore the cached catalog for this digest")
	return cmd
}
