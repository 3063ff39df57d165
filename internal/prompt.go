package internal

import (
	"fmt"
	"os"
	"strings"
)

// PromptManager resolves the system prompt used for analysis
type PromptManager struct {
	promptFile   string
	promptString string
}

// NewPromptManager creates a new prompt manager. An empty setting selects the built-in prompt.
func NewPromptManager(promptSetting string) *PromptManager {
	pm := &PromptManager{}

	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// DefaultSystemPrompt returns the built-in blindspot analysis instruction
func DefaultSystemPrompt() string {
	content, err := defaultFS.ReadFile("prompt.txt")
	if err != nil {
		// prompt.txt is embedded at build time
		panic(fmt.Sprintf("reading embedded prompt: %v", err))
	}
	return string(content)
}

// SystemPrompt returns the configured prompt, read fresh from disk when it is a file
func (pm *PromptManager) SystemPrompt() (string, error) {
	if pm.promptString != "" {
		return pm.promptString, nil
	}
	if pm.promptFile != "" {
		content, err := os.ReadFile(pm.promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		return string(content), nil
	}
	return DefaultSystemPrompt(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
