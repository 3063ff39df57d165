package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rtzll/blindspot/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing blindspot analysis",
	Long: `Run a Model Context Protocol (MCP) server that exposes the analysis pipeline as a tool.

The MCP server provides one tool:
- analyze_youtube_blindspots: transcript plus emotional blindspot analysis of a YouTube video

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  blindspot mcp

  # Run MCP server with HTTP transport on port 8080
  blindspot mcp --transport=http --mcp-port=8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(config); err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("mcp-port")

		app := internal.NewApp(config, logger)
		mcpServer := internal.NewMCPServer(app.Pipeline(internal.InputModeURL), version, logger)

		// logs go to stderr, stdout belongs to the stdio transport
		logger.Info("Starting blindspot MCP server", zap.String("transport", transport), zap.Int("port", port))

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("mcp-port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
