package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rtzll/blindspot/internal"
)

var (
	config *internal.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blindspot [YouTube URL or ID]",
	Short: "Emotional blindspot analysis of YouTube videos and audio",
	Long: `blindspot downloads the audio of a YouTube video with yt-dlp, translates the
speech to English with OpenAI Whisper and asks an OpenAI model for an
"emotional blindspot" analysis: blindspots, key quotes and an interpretation.

Run it once from the command line, or start the HTTP service with "blindspot serve".`,
	Example: `  # Analyze a YouTube video once
  blindspot "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  blindspot tAP1eZYEuKA

  # Copy the analysis to the clipboard
  blindspot tAP1eZYEuKA --copy

  # Serve POST /analyze on port 5000
  blindspot serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var err error
		config, err = internal.InitConfig(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		if err := internal.EnsureDirs(config.ConfigDir, config.TempDir); err != nil {
			return fmt.Errorf("creating directories: %w", err)
		}
		if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
		}

		logger, err = internal.NewLogger(config)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(config); err != nil {
			return err
		}

		arg := args[0]
		if internal.IsLikelyCommand(arg) {
			return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
		}

		youtubeURL, videoID := internal.ParseArg(arg)

		// the one-shot run only reports problems, progress goes to the spinner
		if !config.Verbose {
			logger = zap.NewNop()
		}
		logger.Info("Analyzing video", zap.String("video_id", videoID), zap.String("url", youtubeURL))

		app := internal.NewApp(config, logger)
		resp, err := app.AnalyzeYouTube(cmd.Context(), youtubeURL, internal.IsTerminal())
		if err != nil {
			return err
		}

		copyFlag, _ := cmd.Flags().GetBool("copy")
		if copyFlag {
			if err := clipboard.WriteAll(resp.Emotions); err != nil {
				return fmt.Errorf("copying analysis to clipboard: %w", err)
			}
		}

		output := internal.FormatResponse(resp)
		if internal.IsTerminal() {
			if rendered, err := internal.RenderMarkdown(output); err == nil {
				output = rendered
			}
		}
		fmt.Print(output)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	// Purge whatever an interrupted run left in the temp dir. For serve this runs only
	// after Serve returned, i.e. once in-flight requests drained or the 30s shutdown
	// grace period ran out; files of requests still running past that are removed too.
	if ctx.Err() != nil && config != nil {
		if cleanupErr := internal.CleanupTempDir(config.TempDir); cleanupErr != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", cleanupErr)
		}
	}

	return err
}

func init() {
	internal.AddOpenAIFlags(rootCmd)
	internal.AddDownloadFlags(rootCmd)
	rootCmd.Flags().Bool("copy", false, "Copy the analysis to the clipboard")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/blindspot/config.toml)")
}
