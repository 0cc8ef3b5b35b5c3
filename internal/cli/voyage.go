package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/voyage"
)

// voyageCommand creates the voyage command group.
func (c *CLI) voyageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voyage",
		Short: "Voyage helpers",
	}
	cmd.AddCommand(c.voyageShipsCommand())
	cmd.AddCommand(c.voyageRefreshCommand())
	return cmd
}

// voyageShipsCommand creates the "voyage ships" subcommand.
func (c *CLI) voyageShipsCommand() *cobra.Command {
	var (
		playerFile string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "ships",
		Short: "Rank owned ships for the next voyage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := c.newRuntime(ctx, playerFile, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.players.Player(ctx)
			if err != nil {
				return err
			}
			descs := snap.Character.VoyageDescriptions
			if len(descs) == 0 {
				return errors.New(errors.ErrCodeNotFound, "no voyage available")
			}

			ranked := voyage.BestShips(snap.Character.Ships, descs[0], voyage.Options{TraitBonus: c.settings().Voyage.TraitBonus})
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}
			printInfo("Voyage ship trait: %s", StyleHighlight.Render(descs[0].ShipTrait))
			fmt.Fprintln(cmd.OutOrStdout(), renderShipTable(ranked, descs[0].ShipTrait))
			return nil
		},
	}

	cmd.Flags().StringVar(&playerFile, "player", "", "read the player snapshot from a JSON file instead of the API")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "ships to show (0 for all)")
	return cmd
}

// renderShipTable renders ranked ships. Ships carrying trait are marked.
func renderShipTable(ranked []voyage.Candidate, trait string) string {
	rows := make([][]string, 0, len(ranked))
	for i, cand := range ranked {
		mark := ""
		for _, t := range cand.Ship.Traits {
			if t == trait {
				mark = iconSuccess
				break
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			cand.Ship.Name,
			strconv.Itoa(cand.Ship.Antimatter),
			mark,
			strconv.Itoa(cand.Score),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Ship", "Antimatter", "Trait", "Score").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if col == 3 {
				return styleIconSuccess
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// voyageRefreshCommand creates the "voyage refresh" subcommand.
func (c *CLI) voyageRefreshCommand() *cobra.Command {
	var newOnly bool

	cmd := &cobra.Command{
		Use:   "refresh <voyage-id>",
		Short: "Fetch the status and log of a running voyage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "invalid voyage id %q", args[0])
			}

			ctx := cmd.Context()
			cfg := c.settings()
			if cfg.API.Token == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "voyage refresh needs api.token")
			}
			rt, err := c.newRuntime(ctx, "", nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			spinner := newSpinnerWithContext(ctx, "Refreshing voyage...")
			spinner.Start()
			refresh, err := rt.client.RefreshVoyage(ctx, id, newOnly)
			spinner.Stop()
			if err != nil {
				return err
			}
			printVoyage(refresh)
			return nil
		},
	}

	cmd.Flags().BoolVar(&newOnly, "new-only", false, "only log entries since the last refresh")
	return cmd
}

// printVoyage prints the status line and the narrative.
func printVoyage(r *voyage.Refresh) {
	if s := r.Status; s != nil {
		printKeyValue("Voyage", strconv.Itoa(s.ID))
		printKeyValue("State", s.State)
		printKeyValue("Antimatter", fmt.Sprintf("%d / %d", s.Hp, s.MaxHp))
	}
	if len(r.Narrative) == 0 {
		printInfo("No new log entries")
		return
	}
	printNewline()
	for _, e := range r.Narrative {
		line := strings.TrimSpace(e.Text)
		if e.Encounter != "" {
			line = fmt.Sprintf("[%s] %s", e.Encounter, line)
		}
		printDetail("%3d  %s", e.Index, line)
	}
}
