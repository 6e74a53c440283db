package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cursorctl/internal/mcp"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the command interface as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMCP(cmd)
		},
	}
}

// NewMCPCommand is the root command of the standalone tool-server binary.
func NewMCPCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cursorctl-mcp",
		Short:         "MCP tool server for cursorctl",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMCP(cmd)
		},
	}
	cmd.PersistentPreRunE = loadConfig(opts)
	addPersistentFlags(cmd, opts)
	return cmd
}

func serveMCP(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rt.Start(ctx)
	defer rt.Stop()

	server := mcp.NewServer(cfg.MCP().ServerName, Version, rt.Session, rt.Backend, logger)
	return server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
