package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/trendposter/pkg/config"
)

// OpenAI talks to any OpenAI-compatible chat completion api. Gemini and ollama expose
// such endpoints too, so the same client serves all three providers.
type OpenAI struct {
	client *openai.Client
	config config.LLMConfig
}

// NewOpenAI creates an OpenAI-compatible completer
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = openAIBaseURL(cfg)
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientConfig), config: cfg}
}

// Complete sends a single user message and returns the first choice content
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: float32(o.config.Temperature),
		MaxTokens:   o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", o.config.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", o.config.Provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIBaseURL returns the api base, ollama serves its OpenAI-compatible api under /v1
func openAIBaseURL(cfg config.LLMConfig) string {
	base := strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Provider == ProviderOllama && !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base
}
