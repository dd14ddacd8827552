package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/config"
	"github.com/leapstack-labs/shadercat/internal/paths"
	"github.com/leapstack-labs/shadercat/internal/prefs"
	"github.com/leapstack-labs/shadercat/internal/resolver"
	"github.com/leapstack-labs/shadercat/internal/shader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Roots    paths.Roots
	Catalog  *shader.Catalog
	Store    prefs.Store
	Resolver *resolver.Resolver
}

// NewCommandContext creates a CommandContext with catalog, preference store
// and resolver. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openStore(cmdCtx.Cfg.StatePath, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}

	cmdCtx.Store = store
	cmdCtx.Resolver = resolver.New(cmdCtx.Catalog, store, cmdCtx.Logger)

	return cmdCtx, closeStore, nil
}

// NewCommandContextWithoutStore creates a CommandContext with a catalog but
// no preference store. Useful for commands that only inspect shaders.
func NewCommandContextWithoutStore(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx, err := newBaseContext(cmd)
	if err != nil {
		return nil, err
	}

	cat, err := shader.NewCatalog(shader.CatalogOptions{
		SystemRoot:      cmdCtx.Roots.System,
		UserRoots:       cmdCtx.Roots.User,
		RequireFallback: cmdCtx.Cfg.RequireFallback,
		Logger:          cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load shader catalog: %w\nHint: use --system-dir to point at the bundled Shaders directory", err)
	}
	cmdCtx.Catalog = cat

	return cmdCtx, nil
}

// newBaseContext resolves config, logger, renderer and shader roots.
func newBaseContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	roots, err := paths.Resolve(paths.OSEnv(), cfg.SystemDir, cfg.UserDirs)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Roots:    roots,
	}, nil
}

// openStore opens the preference store at statePath. The in-memory path
// uses a MemoryStore; anything else is a migrated SQLite database.
func openStore(statePath string, logger *slog.Logger) (prefs.Store, func(), error) {
	if statePath == prefs.MemoryPath {
		return prefs.NewMemoryStore(), func() {}, nil
	}

	store := prefs.NewSQLiteStore()
	if err := store.Open(statePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Debug("preference store opened", "path", statePath)

	return store, func() { _ = store.Close() }, nil
}

// contextFromFlag returns the preference context selected by --system.
func contextFromFlag(cmd *cobra.Command) (prefs.Context, error) {
	if !cmd.Flags().Changed("system") {
		return prefs.Global(), nil
	}
	id, err := cmd.Flags().GetString("system")
	if err != nil {
		return prefs.Context{}, err
	}
	ctx := prefs.System(id)
	if err := ctx.Validate(); err != nil {
		return prefs.Context{}, err
	}
	return ctx, nil
}

// partition names where an entry lives.
func partition(cat *shader.Catalog, e shader.Entry) string {
	for _, s := range cat.SystemShaders() {
		if s == e {
			return "system"
		}
	}
	return "custom"
}
