package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// DownloadOptions describes a single yt-dlp audio download
type DownloadOptions struct {
	URL         string
	Output      string
	Format      string
	MergeFormat string
	Cookies     string
}

// DownloadResult is what the downloader process reported
type DownloadResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Downloader runs the external audio downloader
type Downloader interface {
	Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error)
}

// YTDLP drives yt-dlp through go-ytdlp
type YTDLP struct {
	executable string
}

// NewYTDLP creates a downloader for the given executable (system binary name or local path)
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

// InstallYTDLP fetches a managed yt-dlp binary (or reuses a cached one) and returns its path
func InstallYTDLP(ctx context.Context, logger *zap.Logger) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("installing yt-dlp: %w", err)
	}
	logger.Info("Using managed yt-dlp",
		zap.String("executable", resolved.Executable),
		zap.String("version", resolved.Version))
	return resolved.Executable, nil
}

// Download runs yt-dlp and waits for it to exit
func (y *YTDLP) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	dl := ytdlp.New().
		Format(opts.Format).
		MergeOutputFormat(opts.MergeFormat).
		NoPlaylist().
		Output(opts.Output)

	if y.executable != "" {
		dl = dl.SetExecutable(y.executable)
	}
	if opts.Cookies != "" {
		dl = dl.Cookies(opts.Cookies)
	}

	result, err := dl.Run(ctx, opts.URL)
	if result == nil {
		if err == nil {
			err = errors.New("yt-dlp returned no result")
		}
		return nil, fmt.Errorf("running yt-dlp: %w", err)
	}

	res := &DownloadResult{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}
	if err != nil && res.ExitCode <= 0 {
		// the process failed to start or was killed before reporting a status
		return res, fmt.Errorf("running yt-dlp: %w", err)
	}
	return res, nil
}

// logProcessOutput writes each non-empty line of the downloader's output streams
func logProcessOutput(logger *zap.Logger, res *DownloadResult) {
	if res == nil {
		return
	}
	for line := range strings.Lines(res.Stdout) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Info("yt-dlp", zap.String("stream", "stdout"), zap.String("line", line))
		}
	}
	for line := range strings.Lines(res.Stderr) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Warn("yt-dlp", zap.String("stream", "stderr"), zap.String("line", line))
		}
	}
}
