package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisRequest is one caller's input: a YouTube URL or an uploaded audio stream
type AnalysisRequest struct {
	YouTubeURL string
	Upload     io.Reader
	UploadName string
}

func (r AnalysisRequest) empty() bool {
	return strings.TrimSpace(r.YouTubeURL) == "" && r.Upload == nil
}

// AudioArtifact is a temporary audio file owned by a single pipeline run
type AudioArtifact struct {
	Path   string
	logger *zap.Logger
}

// Remove deletes the artifact from disk, together with any file yt-dlp left next
// to it (.part, .ytdl, per-format fragments). Calling it more than once is harmless.
func (a *AudioArtifact) Remove() {
	if a == nil || a.Path == "" {
		return
	}
	for _, path := range a.files() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("Failed to remove temporary audio file", zap.String("artifact", path), zap.Error(err))
			continue
		}
		a.logger.Debug("Temporary audio file deleted", zap.String("artifact", path))
	}
}

// files lists the artifact path plus every sibling sharing its unique stem
func (a *AudioArtifact) files() []string {
	files := []string{a.Path}
	dir, base := filepath.Split(a.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return files
	}
	for _, entry := range entries {
		if name := entry.Name(); name != base && strings.HasPrefix(name, stem) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files
}

// AudioAcquirer turns a request into a readable audio artifact
type AudioAcquirer interface {
	Acquire(ctx context.Context, req AnalysisRequest) (*AudioArtifact, error)
}

// artifactPrefix starts the name of every audio file this service writes
const artifactPrefix = "audio-"

// artifactPath returns a fresh path under dir so concurrent runs never share a file
func artifactPath(dir, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "webm"
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s.%s", artifactPrefix, uuid.NewString(), ext))
}

// YTDLPAcquirer downloads the best audio stream of a URL with yt-dlp
type YTDLPAcquirer struct {
	downloader  Downloader
	tempDir     string
	format      string
	mergeFormat string
	cookies     string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewYTDLPAcquirer creates a URL acquirer from config
func NewYTDLPAcquirer(downloader Downloader, config *Config, logger *zap.Logger) *YTDLPAcquirer {
	return &YTDLPAcquirer{
		downloader:  downloader,
		tempDir:     config.TempDir,
		format:      config.YTDLPFormat,
		mergeFormat: config.YTDLPMergeFormat,
		cookies:     config.YTDLPCookies,
		timeout:     config.DownloadTimeout,
		logger:      logger,
	}
}

// Acquire runs the downloader and returns the file it wrote
func (a *YTDLPAcquirer) Acquire(ctx context.Context, req AnalysisRequest) (*AudioArtifact, error) {
	youtubeURL := strings.TrimSpace(req.YouTubeURL)
	if youtubeURL == "" {
		return nil, &ValidationError{Message: "YouTube URL is required"}
	}

	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, &AcquisitionError{ExitCode: -1, Err: fmt.Errorf("creating temp directory: %w", err)}
	}

	artifact := &AudioArtifact{Path: artifactPath(a.tempDir, a.mergeFormat), logger: a.logger}
	a.logger.Info("Starting yt-dlp download", zap.String("url", youtubeURL), zap.String("artifact", artifact.Path))

	dlCtx, cancel := withOptionalTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.downloader.Download(dlCtx, DownloadOptions{
		URL:         youtubeURL,
		Output:      artifact.Path,
		Format:      a.format,
		MergeFormat: a.mergeFormat,
		Cookies:     a.cookies,
	})
	logProcessOutput(a.logger, res)

	if err != nil {
		artifact.Remove()
		exitCode := -1
		if res != nil && res.ExitCode != 0 {
			exitCode = res.ExitCode
		}
		return nil, &AcquisitionError{ExitCode: exitCode, Err: err}
	}
	if res.ExitCode != 0 {
		artifact.Remove()
		a.logger.Error("yt-dlp failed", zap.Int("exit_code", res.ExitCode))
		return nil, &AcquisitionError{ExitCode: res.ExitCode, Err: errors.New(lastLine(res.Stderr))}
	}

	if !FileExists(artifact.Path) {
		artifact.Remove()
		return nil, &AcquisitionError{ExitCode: 0, Err: fmt.Errorf("yt-dlp finished without writing %s", artifact.Path)}
	}

	a.logger.Info("yt-dlp finished successfully", zap.String("artifact", artifact.Path))
	return artifact, nil
}

// UploadAcquirer stores an uploaded audio stream in the temp dir
type UploadAcquirer struct {
	tempDir  string
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadAcquirer creates an upload acquirer from config
func NewUploadAcquirer(config *Config, logger *zap.Logger) *UploadAcquirer {
	return &UploadAcquirer{
		tempDir:  config.TempDir,
		maxBytes: config.MaxUploadBytes,
		logger:   logger,
	}
}

// Acquire copies the upload to disk, refusing payloads above the size limit
func (a *UploadAcquirer) Acquire(ctx context.Context, req AnalysisRequest) (*AudioArtifact, error) {
	if req.Upload == nil {
		return nil, &ValidationError{Message: "Audio file is required"}
	}

	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, &AcquisitionError{ExitCode: -1, Err: fmt.Errorf("creating temp directory: %w", err)}
	}

	artifact := &AudioArtifact{Path: artifactPath(a.tempDir, filepath.Ext(req.UploadName)), logger: a.logger}

	file, err := os.OpenFile(artifact.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, &AcquisitionError{ExitCode: -1, Err: fmt.Errorf("creating temp file: %w", err)}
	}

	// one extra byte tells an exact-limit upload apart from an oversized one
	written, copyErr := io.Copy(file, io.LimitReader(req.Upload, a.maxBytes+1))
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		artifact.Remove()
		return nil, &AcquisitionError{ExitCode: -1, Err: fmt.Errorf("saving upload: %w", copyErr)}
	case closeErr != nil:
		artifact.Remove()
		return nil, &AcquisitionError{ExitCode: -1, Err: fmt.Errorf("saving upload: %w", closeErr)}
	case written > a.maxBytes:
		artifact.Remove()
		return nil, &ValidationError{Message: fmt.Sprintf("Audio file exceeds the %d byte limit", a.maxBytes)}
	case written == 0:
		artifact.Remove()
		return nil, &ValidationError{Message: "Audio file is empty"}
	}

	a.logger.Info("Upload saved", zap.String("artifact", artifact.Path), zap.Int64("bytes", written))
	return artifact, nil
}

// lastLine returns the last non-empty line of s, which is where yt-dlp puts its ERROR message
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}
