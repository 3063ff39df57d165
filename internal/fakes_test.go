package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap/zaptest"
)

const (
	fakeTranscript = "hello world"
	fakeAnalysis   = "🔍 Blindspots Detected:\n- avoidance\n\n💬 Key Quotes:\n- \"hello world\"\n\n🧠 Interpretation:\nThe speaker keeps it short."
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		OpenAIAPIKey:        "test-key",
		Port:                5000,
		InputMode:           InputModeURL,
		TempDir:             t.TempDir(),
		MaxUploadBytes:      WhisperLimit,
		YTDLPPath:           "yt-dlp",
		YTDLPFormat:         "bestaudio[ext=webm]",
		YTDLPMergeFormat:    "webm",
		TranscriptionModel:  "whisper-1",
		AnalysisModel:       "gpt-4o-mini",
		AnalysisTemperature: 0.7,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// fakeDownloader writes content to the requested output path, or fails with result/err
type fakeDownloader struct {
	mu        sync.Mutex
	calls     []DownloadOptions
	content   []byte
	result    *DownloadResult
	err       error
	skipWrite bool
}

func (f *fakeDownloader) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.err != nil {
		return f.result, f.err
	}
	if f.result != nil && f.result.ExitCode != 0 {
		// yt-dlp can leave a partial file behind before failing
		_ = os.WriteFile(opts.Output, []byte("partial"), 0600)
		return f.result, nil
	}
	if !f.skipWrite {
		content := f.content
		if content == nil {
			content = []byte("fake webm audio")
		}
		if err := os.WriteFile(opts.Output, content, 0600); err != nil {
			return nil, err
		}
	}
	return &DownloadResult{Stdout: "[download] 100% of 1.00MiB\n"}, nil
}

func (f *fakeDownloader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeOpenAI serves the two endpoints the pipeline calls
type fakeOpenAI struct {
	srv              *httptest.Server
	translationCalls atomic.Int32
	chatCalls        atomic.Int32

	mu       sync.Mutex
	chatBody map[string]any

	translationStatus int
	chatStatus        int
}

func newFakeOpenAI(t *testing.T) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/translations", func(w http.ResponseWriter, r *http.Request) {
		f.translationCalls.Add(1)
		if f.translationStatus != 0 {
			writeAPIError(w, f.translationStatus)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": fakeTranscript})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		f.chatCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(body, &decoded)
		f.mu.Lock()
		f.chatBody = decoded
		f.mu.Unlock()

		if f.chatStatus != 0 {
			writeAPIError(w, f.chatStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": fakeAnalysis},
			}},
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeAPIError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": "upstream unavailable", "type": "server_error"},
	})
}

func (f *fakeOpenAI) client() *OpenAIClient {
	return NewOpenAIClient("test-key", option.WithBaseURL(f.srv.URL))
}

func (f *fakeOpenAI) lastChatBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatBody
}

// newTestApp wires an App to the fake downloader and the fake OpenAI server
func newTestApp(t *testing.T, config *Config, downloader Downloader, api *fakeOpenAI) *App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	ai := NewAI(config, NewPromptManager(config.Prompt), logger, WithOpenAIClient(api.client()))
	return NewApp(config, logger, WithDownloader(downloader), WithAI(ai))
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected %s to be empty, found %v", dir, names)
	}
}
