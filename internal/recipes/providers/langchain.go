package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangChainProvider adapts a langchaingo model to Provider. It serves both
// OpenAI and GitHub Models, which speaks the OpenAI API.
type LangChainProvider struct {
	name        string
	model       llms.Model
	modelName   string
	temperature float32
	maxTokens   int32
}

// NewLangChainProvider wraps an existing model
func NewLangChainProvider(name string, model llms.Model, modelName string) *LangChainProvider {
	return &LangChainProvider{
		name:        name,
		model:       model,
		modelName:   modelName,
		temperature: 0.7,
		maxTokens:   2000,
	}
}

// NewOpenAIProvider creates an OpenAI provider. An empty baseURL uses the
// public OpenAI API.
func NewOpenAIProvider(apiKey, model, baseURL string) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required: set llm.api_key or OPENAI_API_KEY")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return NewLangChainProvider("openai", llm, model), nil
}

// NewGitHubModelsProvider creates a provider for GitHub Models
func NewGitHubModelsProvider(token, model string) (*LangChainProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("a GitHub token is required for GitHub Models")
	}

	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithBaseURL(GitHubModelsBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLangChainProvider("github_models", llm, model), nil
}

func (p *LangChainProvider) Name() string {
	return p.name
}

// Complete implements the Provider interface
func (p *LangChainProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role schema.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			role = schema.ChatMessageTypeSystem
		case RoleUser:
			role = schema.ChatMessageTypeHuman
		case RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(float64(p.temperature)),
		llms.WithMaxTokens(int(p.maxTokens)),
	}
	if p.modelName != "" {
		opts = append(opts, llms.WithModel(p.modelName))
	}

	response, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", p.name)
	}
	return response.Choices[0].Content, nil
}

// SetTemperature sets the temperature for completions
func (p *LangChainProvider) SetTemperature(temp float32) {
	p.temperature = temp
}

// SetMaxTokens sets the max tokens for completions
func (p *LangChainProvider) SetMaxTokens(tokens int32) {
	p.maxTokens = tokens
}
