package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rtzll/blindspot/internal"
)

// serveCmd runs the HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /analyze over HTTP",
	Long: `Start the HTTP service.

In url mode (default) POST /analyze expects {"youtubeUrl": "..."}; in upload
mode it expects a multipart form with the audio file in the "audio" field.
Both respond with {"transcript": "...", "emotions": "..."}.`,
	Example: `  # Serve on the default port (5000, or $PORT)
  blindspot serve

  # Accept uploaded audio instead of YouTube URLs
  blindspot serve --input upload --port 8080

  # Use a local yt-dlp binary with cookies
  BLINDSPOT_YTDLP_PATH=./yt-dlp blindspot serve --cookies cookies.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(config); err != nil {
			return err
		}

		if !config.Verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		var options []internal.AppOption
		if config.InputMode == internal.InputModeURL && config.YTDLPInstall {
			executable, err := internal.InstallYTDLP(cmd.Context(), logger)
			if err != nil {
				return err
			}
			options = append(options, internal.WithDownloader(internal.NewYTDLP(executable)))
		}

		app := internal.NewApp(config, logger, options...)
		router := internal.NewRouter(app.Pipeline(config.InputMode), config.InputMode, logger)

		logger.Info("Starting blindspot",
			zap.String("version", version),
			zap.String("input_mode", string(config.InputMode)),
			zap.String("temp_dir", config.TempDir))
		return internal.Serve(cmd.Context(), router, config.Port, logger)
	},
}

func init() {
	internal.AddServeFlags(serveCmd)
	internal.AddOpenAIFlags(serveCmd)
	internal.AddDownloadFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
