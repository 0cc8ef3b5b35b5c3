package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/render/recipetree"
)

// Tree output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// treeFlags holds the options for the tree command.
type treeFlags struct {
	player string
	format string
	output string
	depth  int
	have   bool
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var flags treeFlags

	cmd := &cobra.Command{
		Use:   "tree <symbol|id>",
		Short: "Render the recipe tree of an item as DOT or SVG",
		Long: `Render the recipe tree below an item.

Each archetype appears once even when several recipes use it, so cyclic
recipe data still terminates. Edges carry the per-craft count.`,
		Example: `  # DOT on stdout
  equipneeds tree tricorder_quality4

  # SVG with owned counts, three levels deep
  equipneeds tree 1432 --format svg --have --depth 3 -o tricorder.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.player, "player", "", "read the player snapshot from a JSON file instead of the API")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&flags.depth, "depth", recipetree.DefaultMaxDepth, "recipe levels to expand")
	cmd.Flags().BoolVar(&flags.have, "have", false, "annotate nodes with owned counts")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runTree(cmd *cobra.Command, target string, flags treeFlags) error {
	if flags.format != formatDOT && flags.format != formatSVG {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use dot or svg)", flags.format)
	}
	if flags.depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative")
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

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
	sess, err := rt.sessions(c.settings(), logger).Load(ctx, snap)
	if err != nil {
		return err
	}
	spinner.Stop()

	root, err := lookupArchetype(sess.Catalog, target)
	if err != nil {
		return err
	}
	opts := recipetree.Options{MaxDepth: flags.depth, Detailed: true}
	if flags.have {
		opts.Inventory = snap.Inventory()
	}
	tree, err := recipetree.Walk(sess.Catalog, root.ID, opts)
	if err != nil {
		return err
	}

	data := []byte(tree.DOT())
	if flags.format == formatSVG {
		if data, err = recipetree.RenderSVG(ctx, string(data)); err != nil {
			return err
		}
	}

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flags.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	printSuccess("Rendered %s (%d nodes)", StyleHighlight.Render(root.Name), len(tree.Nodes))
	printFile(flags.output)
	return nil
}

// lookupArchetype resolves a tree target given as a numeric id or a symbol.
func lookupArchetype(cat *catalog.Catalog, target string) (archetype.Archetype, error) {
	if id, err := strconv.Atoi(target); err == nil {
		if a, ok := cat.Lookup(id); ok {
			return a, nil
		}
	} else if a, ok := cat.LookupSymbol(target); ok {
		return a, nil
	}
	return archetype.Archetype{}, errors.New(errors.ErrCodeArchetypeNotFound, "no item %q in the catalog", target)
}
