package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/uc-mcp/internal/app"
	"github.com/bobmcallan/uc-mcp/internal/common"
	"github.com/bobmcallan/uc-mcp/internal/config"
	"github.com/bobmcallan/uc-mcp/internal/server"
)

type rootOptions struct {
	configFiles []string
	port        int
	host        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "uc-mcp",
		Short:         "Authenticated MCP gateway for a data catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringArrayVarP(&opts.configFiles, "config", "c", nil, "configuration file path (repeatable, later files win)")
	root.PersistentFlags().IntVarP(&opts.port, "port", "p", 0, "server port (overrides config)")
	root.PersistentFlags().StringVar(&opts.host, "host", "", "server host (overrides config)")

	root.AddCommand(
		newServeCmd(opts),
		newToolsCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the registered tools and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cfg.Logging.Level = "error"

			application, err := app.New(cfg, setupLogger(cfg))
			if err != nil {
				return err
			}
			defer application.Close()

			out := cmd.OutOrStdout()
			for _, t := range application.Adapter.Tools() {
				fmt.Fprintf(out, "%-24s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uc-mcp version %s\n", config.GetFullVersion())
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)

	logger.Info().
		Int("port", cfg.Server.Port).
		Str("host", cfg.Server.Host).
		Str("environment", cfg.Environment).
		Str("config_files", fmt.Sprintf("%v", opts.configFiles)).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to initialize application")
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Str("error", err.Error()).Msg("application shutdown failed")
		}
	}()

	ctx, cancel := signalAwareContext(parent)
	defer cancel()

	srv := server.New(application)
	if err := application.Run(ctx, srv.Serve); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// loadConfig resolves config files, applies flag overrides and validates.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if len(opts.configFiles) == 0 {
		if path, ok := discoverConfig(); ok {
			opts.configFiles = []string{path}
		}
	}

	cfg, err := config.LoadFromFiles(opts.configFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// CLI flags have the highest priority
	config.ApplyFlagOverrides(cfg, opts.port, opts.host)

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Configuration error, mandatory fields are missing or invalid:")
		fmt.Fprintln(os.Stderr, "")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Values can be set via TOML file, UCMCP_* environment variables, or CLI flags.")
		fmt.Fprintln(os.Stderr, "")
		return nil, fmt.Errorf("invalid configuration: %d issue(s)", len(issues))
	}

	return cfg, nil
}

// setupLogger creates an arbor logger based on config.
func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(cfg.Logging)
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
