package chatgpt

import (
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and tunes the AI backend.
type Config struct {
	Provider            string  `envconfig:"AI_PROVIDER" default:"gemini"`
	APIKey              string  `envconfig:"AI_API_KEY"`
	BaseURL             string  `envconfig:"AI_BASE_URL"`
	Model               string  `envconfig:"AI_MODEL" default:"gemini-2.5-flash"`
	MaxTokens           int     `envconfig:"AI_MAX_TOKENS" default:"1024"`
	Temperature         float32 `envconfig:"AI_TEMPERATURE" default:"0.7"`
	SystemPromptEnabled bool    `envconfig:"AI_SYSTEM_PROMPT_ENABLED" default:"true"`
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported AI provider %q", c.Provider)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("AI_MODEL is required")
	}
	return nil
}
