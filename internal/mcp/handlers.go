// File: internal/mcp/handlers.go
package mcp

import (
	"context"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) handleRunCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	reply := s.session.Handle(ctx, command)
	resp := CommandResponse{
		Reply:   reply.Text,
		Intent:  reply.Intent.Kind,
		Actions: reply.Actions,
		Result:  reply.Result,
		Error:   reply.Error,
	}
	switch {
	case reply.Err != nil:
		resp.Status = statusError
	case reply.Intent.Kind == schemas.IntentUnrecognized:
		resp.Status = statusNotUnderstood
	case reply.Result != nil:
		resp.Status = statusDone
	default:
		resp.Status = statusReplied
	}

	s.logger.Debug("Tool call handled.",
		zap.String("tool", "run_command"),
		zap.String("status", resp.Status))

	body, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode response: " + err.Error()), nil
	}
	if resp.Status == statusError {
		return mcp.NewToolResultError(string(body)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleScreenInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	engine := s.session.Engine()
	geo := engine.Geometry()
	info := ScreenInfo{Width: geo.Width, Height: geo.Height}

	if s.device != nil {
		if p, err := s.device.PointerPosition(ctx); err == nil {
			info.Pointer = &p
		} else {
			s.logger.Warn("Could not read pointer position.", zap.Error(err))
		}
	}

	info.Positions = make(map[schemas.NamedPosition]schemas.Point, len(schemas.NamedPositions))
	for _, pos := range schemas.NamedPositions {
		p, err := engine.Translator().Resolve(pos, geo)
		if err != nil {
			// Too small for the margin: report the size alone.
			info.Positions = nil
			break
		}
		info.Positions[pos] = p
	}

	body, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode response: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
