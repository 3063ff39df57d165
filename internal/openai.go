package internal

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranslation(ctx context.Context, file *os.File, model string) (string, error)
	CreateChatCompletion(ctx context.Context, model string, temperature float64, systemPrompt, userContent string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client. Each call is a single attempt.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client}
}

// CreateTranslation sends audio to the translations endpoint, which always answers in English
func (c *OpenAIClient) CreateTranslation(ctx context.Context, file *os.File, model string) (string, error) {
	resp, err := c.client.Audio.Translations.New(ctx, openai.AudioTranslationNewParams{
		File:  file,
		Model: openai.AudioModel(model),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CreateChatCompletion sends a system + user message pair and returns the first choice
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model string, temperature float64, systemPrompt, userContent string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userContent),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// AI handles OpenAI API interactions for transcription and analysis
type AI struct {
	client             OpenAIClientInterface
	prompts            *PromptManager
	transcriptionModel string
	analysisModel      string
	temperature        float64
	whisperTimeout     time.Duration
	analysisTimeout    time.Duration
	logger             *zap.Logger
	apiKey             string
	clientOnce         sync.Once
}

// AIOption customizes AI creation
type AIOption func(*AI)

// WithOpenAIClient sets the client instead of building one lazily from the API key
func WithOpenAIClient(client OpenAIClientInterface) AIOption {
	return func(ai *AI) {
		ai.client = client
	}
}

// NewAI creates a new AI processor. Without WithOpenAIClient the SDK client
// is created on first use from config.OpenAIAPIKey.
func NewAI(config *Config, prompts *PromptManager, logger *zap.Logger, options ...AIOption) *AI {
	ai := &AI{
		prompts:            prompts,
		transcriptionModel: config.TranscriptionModel,
		analysisModel:      config.AnalysisModel,
		temperature:        config.AnalysisTemperature,
		whisperTimeout:     config.WhisperTimeout,
		analysisTimeout:    config.AnalysisTimeout,
		logger:             logger,
		apiKey:             config.OpenAIAPIKey,
	}
	for _, option := range options {
		option(ai)
	}
	return ai
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	ai.clientOnce.Do(func() {
		if ai.client == nil && ai.apiKey != "" {
			ai.client = NewOpenAIClient(ai.apiKey)
		}
	})
	if ai.client == nil {
		return ValidateOpenAIAPIKey(ai.apiKey)
	}
	return nil
}

// Transcribe translates the artifact's speech to English text
func (ai *AI) Transcribe(ctx context.Context, artifact *AudioArtifact) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", &TranscriptionError{Err: err}
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		return "", &TranscriptionError{Err: fmt.Errorf("opening audio: %w", err)}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			ai.logger.Warn("Failed to close audio file", zap.String("artifact", artifact.Path), zap.Error(closeErr))
		}
	}()

	ctx, cancel := withOptionalTimeout(ctx, ai.whisperTimeout)
	defer cancel()

	text, err := ai.client.CreateTranslation(ctx, file, ai.transcriptionModel)
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	return text, nil
}

// Analyze runs the blindspot prompt over a transcript. The reply is returned as-is.
func (ai *AI) Analyze(ctx context.Context, transcript string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", &AnalysisError{Err: err}
	}

	systemPrompt, err := ai.prompts.SystemPrompt()
	if err != nil {
		return "", &AnalysisError{Err: err}
	}

	ctx, cancel := withOptionalTimeout(ctx, ai.analysisTimeout)
	defer cancel()

	content, err := ai.client.CreateChatCompletion(ctx, ai.analysisModel, ai.temperature, systemPrompt, transcript)
	if err != nil {
		return "", &AnalysisError{Err: fmt.Errorf("creating chat completion: %w", err)}
	}
	return content, nil
}

// withOptionalTimeout applies d to ctx unless d is zero
func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
