package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Splits", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Splits training calculator. Derive the missing distance, duration or pace of a segment, total a list of segments, resolve named race paces (e.g. @MP, @5KP) and read stored trainings."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolAugmentSegment, Handler: h.augmentSegment},
		server.ServerTool{Tool: toolSegmentsTotal, Handler: h.segmentsTotal},
		server.ServerTool{Tool: toolResolvePace, Handler: h.resolvePace},
		server.ServerTool{Tool: toolPace400, Handler: h.pace400},
		server.ServerTool{Tool: toolListTrainings, Handler: h.listTrainings},
		server.ServerTool{Tool: toolGetTraining, Handler: h.getTraining},
	)

	s.AddResources(
		server.ServerResource{Resource: resNamedPaces, Handler: h.namedPaces},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resNamedPaces = mcp.NewResource(
	"splits://named_paces",
	"Named Paces",
	mcp.WithResourceDescription("Race-pace vocabulary: each @TOKEN with its pace per kilometer (MM:SS)"),
	mcp.WithMIMEType("application/json"),
)
