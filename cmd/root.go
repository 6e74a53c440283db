// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cursorctl/internal/config"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// rootOptions holds the persistent flags. Each command tree gets its own copy.
type rootOptions struct {
	cfgFile      string
	dryRun       bool
	json         bool
	screen       string
	margin       int
	moveDuration int
	typeInterval int
}

// Execute builds the command tree and runs it with the signal-aware context from main.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// NewRootCommand returns a fresh command tree. With no subcommand it starts the chat REPL.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cursorctl",
		Short: "Control the mouse and keyboard with plain-English commands.",
		Long: `cursorctl turns sentences like "move to center", "double click at 200, 100" or
"type hello and press enter" into real pointer and keyboard input.

Run it without arguments for an interactive chat, or use a subcommand.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.PersistentPreRunE = loadConfig(opts)
	addPersistentFlags(cmd, opts)
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	cmd.AddCommand(newDoCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newPositionsCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func addPersistentFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./cursorctl.yaml or ~/.cursorctl/cursorctl.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "use the in-memory virtual backend instead of the real devices")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print replies as JSON")
	cmd.PersistentFlags().StringVar(&opts.screen, "screen", "", "screen size as WIDTHxHEIGHT instead of asking the device")
	cmd.PersistentFlags().IntVar(&opts.margin, "margin", 0, "inset in pixels for named positions (overrides engine.margin_px)")
	cmd.PersistentFlags().IntVar(&opts.moveDuration, "move-duration", 0, "pointer move duration in ms (overrides engine.move_duration_ms)")
	cmd.PersistentFlags().IntVar(&opts.typeInterval, "type-interval", 0, "delay between typed characters in ms (overrides engine.type_interval_ms)")
}

// applyFlags copies explicitly set flags over the loaded configuration and revalidates it.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) error {
	flags := cmd.Flags()
	if opts.dryRun {
		cfg.SetBackendKind(config.BackendVirtual)
	}
	if flags.Changed("screen") {
		w, h, err := parseScreen(opts.screen)
		if err != nil {
			return err
		}
		cfg.SetBackendScreenSize(w, h)
	}
	if flags.Changed("margin") {
		cfg.SetEngineMarginPx(opts.margin)
	}
	if flags.Changed("move-duration") {
		cfg.SetEngineMoveDurationMs(opts.moveDuration)
	}
	if flags.Changed("type-interval") {
		cfg.SetEngineTypeIntervalMs(opts.typeInterval)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// parseScreen parses WIDTHxHEIGHT.
func parseScreen(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(s)), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid --screen %q: want WIDTHxHEIGHT such as 1920x1080", s)
	}
	return w, h, nil
}

// loadConfig returns the pre-run hook that loads and validates the configuration, initializes
// the logger and stores the config in the command context.
func loadConfig(opts *rootOptions) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		config.SetDefaults(v)

		if err := initializeConfig(cmd, v, opts); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}

		cfg, err := config.NewConfigFromViper(v)
		if err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "cursorctl"})
			return fmt.Errorf("failed to load or validate config: %w", err)
		}
		if err := applyFlags(cmd, cfg, opts); err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "cursorctl"})
			return err
		}

		if err := observability.InitializeLogger(cfg.Logger()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: file logging disabled:", err)
		}
		observability.GetLogger().Debug("Starting cursorctl",
			zap.String("version", Version),
			zap.String("backend", cfg.Backend().Kind))

		cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
		return nil
	}
}

// initializeConfig layers, lowest first: defaults, config file, .env, CURSORCTL_* environment.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, opts *rootOptions) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	if opts.cfgFile != "" {
		v.SetConfigFile(opts.cfgFile)
	} else {
		v.SetConfigName("cursorctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cursorctl"))
		}
	}

	v.SetEnvPrefix("CURSORCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// configFromContext returns the config stored by the root pre-run hook.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// isTerminal reports whether f looks like an interactive terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
