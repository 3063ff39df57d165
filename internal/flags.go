package internal

import (
	"github.com/spf13/cobra"
)

// AddServeFlags adds flags for the HTTP service
func AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "P", 5000, "Port to listen on (overrides PORT)")
	cmd.Flags().String("input", string(InputModeURL), "Accepted input for POST /analyze: url or upload")
}

// AddDownloadFlags adds flags related to yt-dlp
func AddDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("cookies", "", "Cookie file passed to yt-dlp")
}

// AddOpenAIFlags adds flags related to OpenAI API functionality
func AddOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "gpt-4o-mini", "OpenAI model to use for the analysis")
	cmd.Flags().StringP("prompt", "p", "", "Custom system prompt (string or file path)")
}

// ValidateOpenAIRequirements validates the OpenAI API key and analysis model
func ValidateOpenAIRequirements(config *Config) error {
	if err := ValidateOpenAIAPIKey(config.OpenAIAPIKey); err != nil {
		return err
	}
	return ValidateModel(config.AnalysisModel)
}
