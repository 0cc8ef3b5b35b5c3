package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/equipneeds/internal/config"
	"github.com/matzehuels/equipneeds/pkg/buildinfo"
	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/integrations/stt"
	"github.com/matzehuels/equipneeds/pkg/player"
	"github.com/matzehuels/equipneeds/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	configPath string
	noCache    bool
	cfg        *config.Config
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
		Use:          appName,
		Short:        "equipneeds totals the crafting materials your crew still needs",
		Long:         `equipneeds expands the equipment recipes of a crew roster down to base materials, nets them against the inventory and reports what is still missing and where to get it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+appName+".toml in the config dir)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the response and snapshot cache")

	root.AddCommand(c.needsCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.voyageCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Runtime Factory
// =============================================================================

// runtime bundles the collaborators one command invocation needs.
type runtime struct {
	cache   cache.Cache
	client  *stt.Client
	players player.Source
	builder *catalog.Builder
	snaps   *catalog.CacheSnapshotStore
	stores  bool // faction stores need an authenticated client
}

// newRuntime opens the cache and wires the API client, the player source and
// the catalog builder. progress receives catalog build status lines.
func (c *CLI) newRuntime(ctx context.Context, playerFile string, progress func(string)) (*runtime, error) {
	cfg := c.settings()

	backend, err := cfg.Cache.Open(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "err", err)
		backend = cache.NewNullCache()
	}

	client := stt.NewClient(backend, cfg.API.BaseURL, cfg.API.Token, cfg.Cache.TTL)
	client.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}).
		WithRetryPolicy(cfg.API.RetryPolicy())

	if playerFile == "" {
		playerFile = cfg.Player.File
	}
	var players player.Source = client
	if playerFile != "" {
		players = player.FileSource{Path: playerFile}
	} else if cfg.API.Token == "" {
		backend.Close()
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"no player source: pass --player or set api.token (or %s)", config.TokenEnv)
	}

	opts := cfg.Catalog.BuilderOptions()
	opts.Logger = c.Logger
	opts.Progress = progress
	snapshots := catalog.NewCacheSnapshotStore(backend, nil, cache.TTLSnapshot)

	return &runtime{
		cache:   backend,
		client:  client,
		players: players,
		builder: catalog.NewBuilder(client, snapshots, opts),
		snaps:   snapshots,
		stores:  cfg.API.Token != "",
	}, nil
}

// sessions returns a session manager over the runtime's builder.
func (r *runtime) sessions(cfg *config.Config, logger *log.Logger) *session.Manager {
	return session.NewManager(r.builder, session.Options{
		MaxIterations: cfg.Needs.MaxIterations,
		Logger:        logger,
	})
}

// loadPlayer reads the player snapshot and fills faction stores. Store
// failures only cost faction sources, so they are logged and ignored.
func (r *runtime) loadPlayer(ctx context.Context, logger *log.Logger) (*player.Snapshot, error) {
	snap, err := r.players.Player(ctx)
	if err != nil {
		return nil, err
	}
	if !r.stores {
		logger.Debug("no API token, skipping faction stores")
		return snap, nil
	}
	if err := r.client.LoadFactionStores(ctx, snap.Character.Factions); err != nil {
		logger.Warn("faction stores incomplete", "err", err)
	}
	return snap, nil
}

// Close waits for pending snapshot writes and releases the cache.
func (r *runtime) Close() error {
	r.builder.Wait()
	return r.cache.Close()
}
