package cli

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/needs"
)

// needsFlags holds the options for the needs command.
type needsFlags struct {
	player      string
	crew        []string
	onlyNeeded  bool
	faction     bool
	cadet       bool
	allLevels   bool
	query       string
	jsonOutput  bool
	interactive bool
}

// options maps the filter flags onto resolver options.
func (f needsFlags) options() needs.Options {
	return needs.Options{
		OnlyNeeded:  f.onlyNeeded,
		OnlyFaction: f.faction,
		Cadetable:   f.cadet,
		AllLevels:   f.allLevels,
		Text:        f.query,
	}
}

// needsCommand creates the needs command.
func (c *CLI) needsCommand() *cobra.Command {
	var flags needsFlags

	cmd := &cobra.Command{
		Use:   "needs",
		Short: "Report the base materials the crew still needs",
		Long: `Report the base crafting materials the crew still needs.

Every unowned equipment slot is expanded through its recipe down to base
materials. Owned stock of intermediates and materials is subtracted once
across the whole roster. Without --crew the roster minus the buyback pool
is resolved.`,
		Example: `  # Everything still missing for the roster
  equipneeds needs --only-needed

  # Two crew members, including equipment for future levels
  equipneeds needs --crew "James T. Kirk" --crew spock_command --all-levels

  # Materials that take a faction shop or a quest (4 star by rarity)
  equipneeds needs -q 4 --faction`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNeeds(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.player, "player", "", "read the player snapshot from a JSON file instead of the API")
	cmd.Flags().StringSliceVar(&flags.crew, "crew", nil, "crew name, symbol or id (repeatable)")
	cmd.Flags().BoolVar(&flags.onlyNeeded, "only-needed", false, "hide materials already covered by the inventory")
	cmd.Flags().BoolVar(&flags.faction, "faction", false, "only materials obtainable from factions alone")
	cmd.Flags().BoolVar(&flags.cadet, "cadet", false, "only materials obtainable from cadet missions")
	cmd.Flags().BoolVar(&flags.allLevels, "all-levels", false, "include equipment for levels the crew has not reached")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "filter by number (rarity, need, have) or name/source text")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "browse the report interactively")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	return cmd
}

func (c *CLI) runNeeds(cmd *cobra.Command, flags needsFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := c.settings()

	spinner := newSpinnerWithContext(ctx, "Loading player...")
	spinner.Start()
	defer spinner.Stop()

	rt, err := c.newRuntime(ctx, flags.player, catalogProgress(logger, spinner))
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.loadPlayer(ctx, logger)
	if err != nil {
		return err
	}
	ids, err := resolveCrew(flags.crew, snap.Roster(), snap.FullCrewCatalog())
	if err != nil {
		return err
	}

	// The browser applies filters itself, so it gets the unfiltered report.
	opts := flags.options()
	if flags.interactive {
		opts = needs.Options{AllLevels: flags.allLevels}
	}

	spinner.SetMessage("Loading equipment...")
	resolving := startPhase(logger, "Resolved needs")
	mgr := rt.sessions(cfg, logger)
	report, sess, err := mgr.Resolve(ctx, snap, ids, opts)
	if err != nil {
		return err
	}
	spinner.Stop()
	resolving.done("crew", report.Crew, "materials", len(report.Records), "iterations", report.Stats.Iterations)

	if len(ids) > 0 && report.Crew == 0 {
		return errors.New(errors.ErrCodeCrewNotFound, "none of the requested crew exist")
	}
	if !sess.Report.Complete {
		printWarning("Catalog incomplete, %d archetypes still missing", len(sess.Report.Missing))
	}

	out := cmd.OutOrStdout()
	switch {
	case flags.jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case flags.interactive:
		model := newNeedsModel(report.Records, flags.options())
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}

	if len(report.Records) == 0 {
		printSuccess("Nothing to craft for %d crew", report.Crew)
		return nil
	}
	fmt.Fprintln(out, renderNeedsTable(report.Records))
	printDetail("%d materials for %d crew · %d expansion steps", len(report.Records), report.Crew, report.Stats.Iterations)
	if report.Stats.Dropped > 0 {
		printWarning("%d demands skipped for missing recipe data (see --verbose)", report.Stats.Dropped)
	}
	if !flags.onlyNeeded {
		printNextStep("Hide covered materials", appName+" needs --only-needed")
	}
	return nil
}
