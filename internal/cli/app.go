package cli

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/agent"
	"github.com/mesh-intelligence/activities/internal/config"
	"github.com/mesh-intelligence/activities/internal/paths"
	"github.com/mesh-intelligence/activities/internal/shell"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// app is the client session a command runs in: one store, one toast layer
// and one shell wired to the configured API.
type app struct {
	cfg       types.Config
	configDir string
	logger    *slog.Logger
	store     *store.Store
	toasts    *shell.Toaster
	shell     *shell.Shell
}

// loadConfig resolves the config directory and reads the effective
// configuration, applying flag overrides.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (types.Config, string, error) {
	dir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, "", userError("resolve config directory: %w", err)
	}
	cfg, err := config.Load(dir, cmd.Flags())
	if err != nil {
		return types.Config{}, "", userError("%w", err)
	}
	return cfg, dir, nil
}

// newApp builds the session for cmd. Store failures are logged and raised as
// toasts.
func newApp(cmd *cobra.Command, flags *rootFlags, opts ...shell.Option) (*app, error) {
	cfg, dir, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg, cmd.ErrOrStderr())

	client, err := agent.New(cfg, agent.WithLogger(logger))
	if err != nil {
		return nil, userError("create API client: %w", err)
	}

	toasts := shell.NewToaster(cfg.ToastTTL)
	st := store.New(client,
		store.WithLogger(logger),
		store.WithFailureHandler(toasts.StoreFailure),
	)
	opts = append([]shell.Option{shell.WithLogger(logger)}, opts...)

	return &app{
		cfg:       cfg,
		configDir: dir,
		logger:    logger,
		store:     st,
		toasts:    toasts,
		shell:     shell.New(st, toasts, opts...),
	}, nil
}

// failed returns a system error when the store raised any failure toast.
func (a *app) failed() error {
	if a.toasts.Errors() == 0 {
		return nil
	}
	return sysError("request to %s failed", a.cfg.APIURL)
}

// render writes the shell frame, or v as JSON in JSON mode.
func (a *app) render(cmd *cobra.Command, flags *rootFlags, v any) error {
	if flags.jsonMode {
		return writeJSON(cmd, v)
	}
	a.shell.Render(cmd.OutOrStdout())
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError("encode output: %w", err)
	}
	return nil
}

// usageArgs validates positional args and reports violations as user errors.
func usageArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return userError("%s requires %d argument(s): %v", cmd.Name(), n, names)
		}
		return nil
	}
}

// activityArg returns the id argument, rejecting ids that cannot name an
// activity.
func activityArg(args []string) (string, error) {
	if err := types.CheckID(args[0]); err != nil {
		return "", userError("%w", err)
	}
	return args[0], nil
}
