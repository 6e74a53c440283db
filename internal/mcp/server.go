// Package mcp exposes the command interface as tools over the Model Context Protocol, so
// tool-calling clients can drive the pointer and keyboard with the same sentences a user types.
package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cursorctl/internal/agent"
	"github.com/xkilldash9x/cursorctl/internal/backend"
)

// Server wraps an MCP server bound to one session.
type Server struct {
	session *agent.Session
	device  backend.Backend
	logger  *zap.Logger
	mcp     *server.MCPServer
}

// NewServer registers the tools. device is used only for pointer queries and may be nil.
func NewServer(name, version string, session *agent.Session, device backend.Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: session,
		device:  device,
		logger:  logger.With(zap.String("component", "mcp_server")),
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(runCommandTool(), s.handleRunCommand)
	s.mcp.AddTool(screenInfoTool(), s.handleScreenInfo)
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// Serve speaks the protocol over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	s.logger.Info("MCP server listening on stdio.", zap.String("session_id", s.session.ID()))
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	s.logger.Info("MCP server stopped.")
	return nil
}

func runCommandTool() mcp.Tool {
	return mcp.NewTool("run_command",
		mcp.WithDescription("Run one plain-English pointer or keyboard command, such as \"move to center\", \"double click at 200, 100\", \"type \\\"hello\\\" and press enter\" or \"scroll down 3\". Returns the reply and what was executed."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command text, exactly as a user would type it."),
		),
	)
}

func screenInfoTool() mcp.Tool {
	return mcp.NewTool("screen_info",
		mcp.WithDescription("Report the screen size, the current pointer position and the coordinates of every named position."),
	)
}
