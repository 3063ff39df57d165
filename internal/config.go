package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InputMode selects which request form POST /analyze accepts
type InputMode string

const (
	InputModeURL    InputMode = "url"
	InputModeUpload InputMode = "upload"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	OpenAIAPIKey        string
	Port                int
	InputMode           InputMode
	TempDir             string
	MaxUploadBytes      int64
	YTDLPPath           string
	YTDLPInstall        bool
	YTDLPCookies        string
	YTDLPFormat         string
	YTDLPMergeFormat    string
	TranscriptionModel  string
	AnalysisModel       string
	AnalysisTemperature float64
	Prompt              string
	DownloadTimeout     time.Duration
	WhisperTimeout      time.Duration
	AnalysisTimeout     time.Duration
	LogLevel            string
	LogFormat           string
	Verbose             bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	CacheDir  string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// NewViper returns a viper instance with defaults, config search paths and env bindings set
func NewViper(configDir, cacheDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("port", 5000)
	v.SetDefault("input_mode", string(InputModeURL))
	v.SetDefault("temp_dir", filepath.Join(cacheDir, "audio"))
	v.SetDefault("max_upload_bytes", WhisperLimit)
	v.SetDefault("ytdlp_path", "yt-dlp")
	v.SetDefault("ytdlp_install", false)
	v.SetDefault("ytdlp_cookies", "")
	v.SetDefault("ytdlp_format", "bestaudio[ext=webm]")
	v.SetDefault("ytdlp_merge_format", "webm")
	v.SetDefault("transcription_model", "whisper-1")
	v.SetDefault("analysis_model", "gpt-4o-mini")
	v.SetDefault("analysis_temperature", 0.7)
	v.SetDefault("prompt", "") // if empty will use the built-in prompt
	v.SetDefault("download_timeout", time.Duration(0))
	v.SetDefault("whisper_timeout", time.Duration(0))
	v.SetDefault("analysis_timeout", time.Duration(0))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("verbose", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("BLINDSPOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Unprefixed names the service has always been deployed with
	_ = v.BindEnv("openai_api_key", "BLINDSPOT_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("port", "BLINDSPOT_PORT", "PORT")

	return v
}

// ConfigFromViper builds a Config from an already loaded viper instance
func ConfigFromViper(v *viper.Viper, configDir, cacheDir string) (*Config, error) {
	config := &Config{
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		Port:                v.GetInt("port"),
		InputMode:           InputMode(strings.ToLower(v.GetString("input_mode"))),
		TempDir:             v.GetString("temp_dir"),
		MaxUploadBytes:      v.GetInt64("max_upload_bytes"),
		YTDLPPath:           v.GetString("ytdlp_path"),
		YTDLPInstall:        v.GetBool("ytdlp_install"),
		YTDLPCookies:        v.GetString("ytdlp_cookies"),
		YTDLPFormat:         v.GetString("ytdlp_format"),
		YTDLPMergeFormat:    v.GetString("ytdlp_merge_format"),
		TranscriptionModel:  v.GetString("transcription_model"),
		AnalysisModel:       v.GetString("analysis_model"),
		AnalysisTemperature: v.GetFloat64("analysis_temperature"),
		Prompt:              v.GetString("prompt"),
		DownloadTimeout:     v.GetDuration("download_timeout"),
		WhisperTimeout:      v.GetDuration("whisper_timeout"),
		AnalysisTimeout:     v.GetDuration("analysis_timeout"),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		Verbose:             v.GetBool("verbose"),

		ConfigDir: configDir,
		CacheDir:  cacheDir,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings that would otherwise only fail on the first request
func (c *Config) Validate() error {
	switch c.InputMode {
	case InputModeURL, InputModeUpload:
	default:
		return fmt.Errorf("invalid input_mode %q (supported: %s, %s)", c.InputMode, InputModeURL, InputModeUpload)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp_dir must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.AnalysisTemperature < 0 || c.AnalysisTemperature > 2 {
		return fmt.Errorf("analysis_temperature must be between 0 and 2, got %v", c.AnalysisTemperature)
	}
	return nil
}

// flagKeys maps CLI flag names to the config keys they override
var flagKeys = map[string]string{
	"port":    "port",
	"input":   "input_mode",
	"model":   "analysis_model",
	"prompt":  "prompt",
	"cookies": "ytdlp_cookies",
	"verbose": "verbose",
}

// InitConfig loads .env, the config file, environment and any bound flags into a Config.
// configFile overrides the default search path when non-empty.
func InitConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, "blindspot")
	cacheDir := filepath.Join(xdg.CacheHome, "blindspot")

	v := NewViper(configDir, cacheDir)
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	return ConfigFromViper(v, configDir, cacheDir)
}
