package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// App holds the application state and dependencies
type App struct {
	config     *Config
	logger     *zap.Logger
	downloader Downloader
	ai         *AI
	ui         UIManager
}

// AppOption customizes App creation
type AppOption func(*App)

// WithDownloader sets a custom downloader
func WithDownloader(downloader Downloader) AppOption {
	return func(a *App) {
		a.downloader = downloader
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// WithUI sets the UI manager used by the one-shot CLI run
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// NewApp initializes the application
func NewApp(config *Config, logger *zap.Logger, options ...AppOption) *App {
	app := &App{
		config:     config,
		logger:     logger,
		downloader: NewYTDLP(config.YTDLPPath),
		ui:         NewUIManager(config.Verbose),
	}

	for _, option := range options {
		option(app)
	}

	if app.ai == nil {
		app.ai = NewAI(config, NewPromptManager(config.Prompt), logger)
	}

	return app
}

// Config returns the settings the app was built with
func (app *App) Config() *Config {
	return app.config
}

// Acquirer returns the acquirer for the given input mode
func (app *App) Acquirer(mode InputMode) AudioAcquirer {
	if mode == InputModeUpload {
		return NewUploadAcquirer(app.config, app.logger)
	}
	return NewYTDLPAcquirer(app.downloader, app.config, app.logger)
}

// Pipeline builds an analysis pipeline for the given input mode
func (app *App) Pipeline(mode InputMode, options ...PipelineOption) *Pipeline {
	return NewPipeline(app.Acquirer(mode), app.ai, app.ai, app.logger, options...)
}

// AnalyzeYouTube runs the URL pipeline once with a status spinner, for the CLI
func (app *App) AnalyzeYouTube(ctx context.Context, youtubeURL string, showStatus bool) (*AnalysisResponse, error) {
	var spinner ProgressBar
	var options []PipelineOption
	if showStatus {
		spinner = app.ui.NewSpinner("Starting...")
		options = append(options, WithStageHook(func(stage Stage) {
			spinner.Describe(stageDescription(stage))
		}))
		defer spinner.Finish()
	}

	resp, err := app.Pipeline(InputModeURL, options...).Run(ctx, AnalysisRequest{YouTubeURL: youtubeURL})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", youtubeURL, err)
	}
	return resp, nil
}

func stageDescription(stage Stage) string {
	switch stage {
	case StageAcquire:
		return "Downloading audio..."
	case StageTranscribe:
		return "Transcribing with OpenAI Whisper..."
	case StageAnalyze:
		return "Analyzing emotional blindspots..."
	default:
		return "Analysis complete"
	}
}
