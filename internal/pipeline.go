package internal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Stage names a step of the analysis pipeline
type Stage string

const (
	StageAcquire    Stage = "acquire"
	StageTranscribe Stage = "transcribe"
	StageAnalyze    Stage = "analyze"
	StageDone       Stage = "done"
)

// Transcriber turns an audio artifact into English text
type Transcriber interface {
	Transcribe(ctx context.Context, artifact *AudioArtifact) (string, error)
}

// Analyzer produces the blindspot analysis for a transcript
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

// AnalysisResponse is the body returned for a successful run
type AnalysisResponse struct {
	Transcript string `json:"transcript"`
	Emotions   string `json:"emotions"`
}

// Pipeline runs acquisition, transcription and analysis for one request
type Pipeline struct {
	acquirer    AudioAcquirer
	transcriber Transcriber
	analyzer    Analyzer
	logger      *zap.Logger
	onStage     func(Stage)
}

// PipelineOption customizes Pipeline creation
type PipelineOption func(*Pipeline)

// WithStageHook registers a callback invoked as each stage begins
func WithStageHook(hook func(Stage)) PipelineOption {
	return func(p *Pipeline) {
		p.onStage = hook
	}
}

// NewPipeline wires the three steps together
func NewPipeline(acquirer AudioAcquirer, transcriber Transcriber, analyzer Analyzer, logger *zap.Logger, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		acquirer:    acquirer,
		transcriber: transcriber,
		analyzer:    analyzer,
		logger:      logger,
		onStage:     func(Stage) {},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Run executes the pipeline. The audio artifact is removed before Run returns,
// whichever step fails.
func (p *Pipeline) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if req.empty() {
		return nil, &ValidationError{Message: "YouTube URL or audio file is required", Err: ErrMissingInput}
	}

	started := time.Now()

	p.onStage(StageAcquire)
	artifact, err := p.acquirer.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	defer artifact.Remove()

	p.onStage(StageTranscribe)
	p.logger.Info("Starting transcription", zap.String("artifact", artifact.Path))
	transcript, err := p.transcriber.Transcribe(ctx, artifact)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Transcription complete", zap.Int("chars", len(transcript)))

	p.onStage(StageAnalyze)
	p.logger.Info("Starting emotion analysis")
	emotions, err := p.analyzer.Analyze(ctx, transcript)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Emotion analysis complete", zap.Duration("duration", time.Since(started)))

	p.onStage(StageDone)
	return &AnalysisResponse{
		Transcript: transcript,
		Emotions:   emotions,
	}, nil
}

// uploadLimit is the largest upload the pipeline's acquirer accepts, 0 when it takes no uploads
func (p *Pipeline) uploadLimit() int64 {
	if upload, ok := p.acquirer.(*UploadAcquirer); ok {
		return upload.maxBytes
	}
	return 0
}
