// Package service assembles the MCP diagnostics server: tool registration and
// the stdio transport lifecycle.
package service

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sagaforge/engine/internal/mcp/domain"
	"github.com/sagaforge/engine/internal/rules/engine"
)

const (
	serverName    = "sagaforge-engine"
	serverVersion = "0.1.0"
)

// Server hosts the resolution tools over MCP.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer builds the MCP server and registers every resolution tool.
func NewServer(source domain.CharacterSource, eng *engine.Engine) (*Server, error) {
	if source == nil {
		return nil, fmt.Errorf("character source is required")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(mcpServer, domain.ResolveAttackTool(), domain.ResolveAttackHandler(source, eng))
	mcp.AddTool(mcpServer, domain.ResolveSkillTool(), domain.ResolveSkillHandler(source, eng))
	mcp.AddTool(mcpServer, domain.ResolveDefenseTool(), domain.ResolveDefenseHandler(source, eng))
	mcp.AddTool(mcpServer, domain.ModifierAuditTool(), domain.ModifierAuditHandler(source, eng))

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.mcpServer.Run(ctx, transport)
}
