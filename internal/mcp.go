package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// MCPServer exposes the URL pipeline as an MCP tool
type MCPServer struct {
	pipeline  *Pipeline
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(pipeline *Pipeline, version string, logger *zap.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		"blindspot-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		pipeline:  pipeline,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.mcpServer.AddTool(mcp.NewTool("analyze_youtube_blindspots",
		mcp.WithDescription("Download a YouTube video's audio, translate its speech to English with OpenAI Whisper (PAID) and return the transcript together with an emotional blindspot analysis (blindspots, key quotes, interpretation)."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleAnalyze)

	return s
}

// handleAnalyze implements the analyze_youtube_blindspots tool
func (s *MCPServer) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	resp, err := s.pipeline.Run(ctx, AnalysisRequest{YouTubeURL: url})
	if err != nil {
		s.logger.Error("MCP analysis failed", zap.String("url", url), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("analysis failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(FormatResponse(resp))},
	}, nil
}

// FormatResponse renders a response as plain text with transcript and analysis sections
func FormatResponse(resp *AnalysisResponse) string {
	var buf strings.Builder
	buf.WriteString("Transcript:\n")
	buf.WriteString(strings.TrimSpace(resp.Transcript))
	buf.WriteString("\n\nAnalysis:\n")
	buf.WriteString(strings.TrimSpace(resp.Emotions))
	buf.WriteString("\n")
	return buf.String()
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		go func() {
			<-ctx.Done()
			_ = httpServer.Shutdown(context.Background())
		}()
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	return server.ServeStdio(s.mcpServer)
}
