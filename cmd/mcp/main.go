// File: cmd/mcp/main.go
// This is the main entrypoint for the standalone MCP tool server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/cursorctl/cmd"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	// Stdout carries the protocol, so errors go to stderr only.
	if err := cmd.NewMCPCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "cursorctl-mcp:", err)
		stop()
		os.Exit(1)
	}
}
