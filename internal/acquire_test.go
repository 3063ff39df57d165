package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestYTDLPAcquirer(t *testing.T) {
	config := testConfig(t)
	config.YTDLPCookies = "cookies.txt"
	downloader := &fakeDownloader{content: []byte("webm bytes")}
	acquirer := NewYTDLPAcquirer(downloader, config, zaptest.NewLogger(t))

	artifact, err := acquirer.Acquire(context.Background(), AnalysisRequest{YouTubeURL: "  https://youtu.be/example  "})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer artifact.Remove()

	content, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(content) != "webm bytes" {
		t.Errorf("artifact content: %q", content)
	}

	opts := downloader.calls[0]
	if opts.URL != "https://youtu.be/example" {
		t.Errorf("url should be trimmed, got %q", opts.URL)
	}
	if opts.Cookies != "cookies.txt" {
		t.Errorf("cookies: got %q", opts.Cookies)
	}
	if opts.Output != artifact.Path {
		t.Errorf("output %q does not match artifact %q", opts.Output, artifact.Path)
	}

	artifact.Remove()
	artifact.Remove()
	assertDirEmpty(t, config.TempDir)
}

func TestYTDLPAcquirerFailures(t *testing.T) {
	tests := []struct {
		name         string
		req          AnalysisRequest
		downloader   *fakeDownloader
		wantExitCode int
		wantMessage  string
		validation   bool
	}{
		{
			name:        "missing url",
			req:         AnalysisRequest{},
			downloader:  &fakeDownloader{},
			wantMessage: "YouTube URL is required",
			validation:  true,
		},
		{
			name: "non-zero exit",
			req:  AnalysisRequest{YouTubeURL: "https://youtu.be/example"},
			downloader: &fakeDownloader{result: &DownloadResult{
				ExitCode: 1,
				Stderr:   "WARNING: something\nERROR: [youtube] example: Video unavailable\n",
			}},
			wantExitCode: 1,
			wantMessage:  "yt-dlp exited with code 1: ERROR: [youtube] example: Video unavailable",
		},
		{
			name:         "process did not start",
			req:          AnalysisRequest{YouTubeURL: "https://youtu.be/example"},
			downloader:   &fakeDownloader{err: errors.New(`exec: "yt-dlp": executable file not found in $PATH`)},
			wantExitCode: -1,
			wantMessage:  "executable file not found",
		},
		{
			name:        "no output file",
			req:         AnalysisRequest{YouTubeURL: "https://youtu.be/example"},
			downloader:  &fakeDownloader{skipWrite: true},
			wantMessage: "finished without writing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(t)
			acquirer := NewYTDLPAcquirer(tt.downloader, config, zaptest.NewLogger(t))

			artifact, err := acquirer.Acquire(context.Background(), tt.req)
			if err == nil {
				artifact.Remove()
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q should contain %q", err, tt.wantMessage)
			}

			if tt.validation {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if tt.downloader.callCount() != 0 {
					t.Errorf("downloader should not run")
				}
				return
			}

			var acquisitionErr *AcquisitionError
			if !errors.As(err, &acquisitionErr) {
				t.Fatalf("expected AcquisitionError, got %T", err)
			}
			if acquisitionErr.ExitCode != tt.wantExitCode {
				t.Errorf("exit code: got %d want %d", acquisitionErr.ExitCode, tt.wantExitCode)
			}
			assertDirEmpty(t, config.TempDir)
		})
	}
}

func TestYTDLPAcquirerRemovesPartialDownload(t *testing.T) {
	executable, _ := fakeYTDLPScript(t, `out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o|--output) out="$2"; shift ;;
  esac
  shift
done
printf 'partial' > "$out.part"
printf 'fragment' > "$out.part-Frag1"
echo "ERROR: unable to download video data: HTTP Error 403: Forbidden" >&2
exit 1`)

	config := testConfig(t)
	acquirer := NewYTDLPAcquirer(NewYTDLP(executable), config, zaptest.NewLogger(t))

	artifact, err := acquirer.Acquire(context.Background(), AnalysisRequest{YouTubeURL: "https://youtu.be/example"})
	if err == nil {
		artifact.Remove()
		t.Fatal("expected an error")
	}
	var acquisitionErr *AcquisitionError
	if !errors.As(err, &acquisitionErr) || acquisitionErr.ExitCode != 1 {
		t.Fatalf("expected AcquisitionError with exit code 1, got %v", err)
	}
	assertDirEmpty(t, config.TempDir)
}

func TestAudioArtifactRemoveSiblings(t *testing.T) {
	dir := t.TempDir()
	artifact := &AudioArtifact{Path: artifactPath(dir, "webm"), logger: zaptest.NewLogger(t)}
	stem := strings.TrimSuffix(artifact.Path, ".webm")
	foreign := artifactPath(dir, "webm")

	for _, p := range []string{artifact.Path, artifact.Path + ".part", artifact.Path + ".ytdl", stem + ".f251.webm", foreign} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	artifact.Remove()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(foreign) {
		t.Errorf("only the other run's artifact should remain, got %v", entries)
	}
}

func TestUploadAcquirer(t *testing.T) {
	config := testConfig(t)
	config.MaxUploadBytes = 10
	acquirer := NewUploadAcquirer(config, zaptest.NewLogger(t))

	artifact, err := acquirer.Acquire(context.Background(), AnalysisRequest{
		Upload:     bytes.NewReader([]byte("0123456789")),
		UploadName: "memo.mp3",
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Ext(artifact.Path) != ".mp3" {
		t.Errorf("artifact should keep the upload extension, got %s", artifact.Path)
	}
	content, _ := os.ReadFile(artifact.Path)
	if string(content) != "0123456789" {
		t.Errorf("artifact content: %q", content)
	}
	artifact.Remove()
	assertDirEmpty(t, config.TempDir)
}

func TestUploadAcquirerRejects(t *testing.T) {
	tests := []struct {
		name        string
		req         AnalysisRequest
		wantMessage string
	}{
		{name: "missing", req: AnalysisRequest{}, wantMessage: "Audio file is required"},
		{name: "empty", req: AnalysisRequest{Upload: strings.NewReader(""), UploadName: "a.webm"}, wantMessage: "Audio file is empty"},
		{name: "too large", req: AnalysisRequest{Upload: strings.NewReader("01234567890"), UploadName: "a.webm"}, wantMessage: "exceeds the 10 byte limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(t)
			config.MaxUploadBytes = 10
			acquirer := NewUploadAcquirer(config, zaptest.NewLogger(t))

			_, err := acquirer.Acquire(context.Background(), tt.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(validationErr.Message, tt.wantMessage) {
				t.Errorf("message %q should contain %q", validationErr.Message, tt.wantMessage)
			}
			assertDirEmpty(t, config.TempDir)
		})
	}
}

func TestArtifactPath(t *testing.T) {
	dir := t.TempDir()
	a := artifactPath(dir, "")
	b := artifactPath(dir, ".webm")
	if a == b {
		t.Fatalf("paths should be unique, both %s", a)
	}
	for _, p := range []string{a, b} {
		if filepath.Dir(p) != dir || !strings.HasPrefix(filepath.Base(p), "audio-") || filepath.Ext(p) != ".webm" {
			t.Errorf("unexpected artifact path %s", p)
		}
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("a\nERROR: boom\n\n"); got != "ERROR: boom" {
		t.Errorf("got %q", got)
	}
	if got := lastLine(""); got != "no error output" {
		t.Errorf("got %q", got)
	}
}
