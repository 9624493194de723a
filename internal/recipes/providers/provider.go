package providers

import (
	"context"
	"fmt"
	"strings"

	"catering/internal/config"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider interface for LLM providers
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
	SetTemperature(temp float32)
	SetMaxTokens(tokens int32)
}

// GitHubModelsBaseURL is the OpenAI compatible endpoint of GitHub Models
const GitHubModelsBaseURL = "https://models.inference.ai.azure.com"

// New builds the provider named in cfg
func New(cfg config.LLMConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "github", "github_models":
		p, err = NewGitHubModelsProvider(cfg.APIKey, cfg.Model)
	case "azure", "azure_openai":
		p, err = NewAzureOpenAIProvider(cfg.AzureEndpoint, cfg.APIKey, cfg.AzureDeployment)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Temperature > 0 {
		p.SetTemperature(float32(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		p.SetMaxTokens(int32(cfg.MaxTokens))
	}
	return p, nil
}
