// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes srtbspeeds tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/srtbspeeds/internal/chartservice"
	"github.com/starford/srtbspeeds/internal/difficulty"
)

const speedsFormatURI = "srtbspeeds://speeds-format"

// Server wraps the MCP server with srtbspeeds tools.
type Server struct {
	mcp *server.MCPServer
	svc *chartservice.Service
}

// New creates a new MCP server with all srtbspeeds tools registered.
func New(svc *chartservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"srtbspeeds",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	difficultyArg := mcp.WithString("difficulty", mcp.Required(),
		mcp.Description("Difficulty name (easy, normal, hard, expert, xd, remixd, all) or menu number 1-7"))
	pathArg := mcp.WithString("path", mcp.Required(),
		mcp.Description("Library-relative chart path (e.g. pack/song.srtb)"))

	s.mcp.AddTool(mcp.NewTool("list_charts",
		mcp.WithDescription("List catalogued charts and the speed-trigger entries each one holds."),
	), s.listCharts)

	s.mcp.AddTool(mcp.NewTool("extract_speeds",
		mcp.WithDescription("Return the speeds text stored in a chart for one difficulty."),
		pathArg, difficultyArg,
	), s.extractSpeeds)

	s.mcp.AddTool(mcp.NewTool("integrate_speeds",
		mcp.WithDescription("Embed speeds text into a chart for one difficulty, replacing any existing triggers. "+
			"Text MUST follow the speeds format; read it first via get_speeds_format or the "+
			speedsFormatURI+" resource."),
		pathArg, difficultyArg,
		mcp.WithString("speeds", mcp.Required(), mcp.Description("Speeds text, one trigger per line")),
	), s.integrateSpeeds)

	s.mcp.AddTool(mcp.NewTool("remove_speeds",
		mcp.WithDescription("Delete the speed triggers stored in a chart for one difficulty."),
		pathArg, difficultyArg,
	), s.removeSpeeds)

	s.mcp.AddTool(mcp.NewTool("export_speeds",
		mcp.WithDescription("Write the speed triggers of one difficulty to a .speeds file next to the chart."),
		pathArg, difficultyArg,
	), s.exportSpeeds)

	s.mcp.AddTool(mcp.NewTool("get_speeds_format",
		mcp.WithDescription("Returns the speeds text format. Call this before integrating speeds."),
	), s.getSpeedsFormat)

	s.mcp.AddResource(
		mcp.NewResource(speedsFormatURI, "Speeds Format",
			mcp.WithResourceDescription("Line format of speed-trigger text files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSpeedsFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// target reads the path and difficulty arguments shared by the speeds tools.
func target(req mcp.CallToolRequest) (string, difficulty.Difficulty, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return "", 0, err
	}
	raw, err := req.RequireString("difficulty")
	if err != nil {
		return "", 0, err
	}
	d, err := difficulty.Parse(raw)
	if err != nil {
		return "", 0, err
	}
	return path, d, nil
}

func toolError(path string, err error) *mcp.CallToolResult {
	if chartservice.IsNotFound(err) {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, path))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listCharts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	charts, err := s.svc.ListCharts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(charts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) extractSpeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, d, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.Extract(ctx, path, d)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) integrateSpeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, d, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("speeds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Integrate(ctx, path, d, text)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("integrated %d triggers into %s under %s", res.TriggerCount, res.Path, res.Key)), nil
}

func (s *Server) removeSpeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, d, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Remove(ctx, path, d); err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %s from %s", d.Key(), path)), nil
}

func (s *Server) exportSpeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, d, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sidecar, err := s.svc.ExportSidecar(ctx, path, d)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported %s to %s", d.Key(), sidecar)), nil
}

func (s *Server) getSpeedsFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SpeedsFormatContract), nil
}

func (s *Server) readSpeedsFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      speedsFormatURI,
			MIMEType: "text/markdown",
			Text:     SpeedsFormatContract,
		},
	}, nil
}
