package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultDeepSeekURL       = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel     = "deepseek-chat"
	DefaultDeepSeekAPIKeyEnv = "DEEPSEEK_API_KEY"
)

type DeepSeekConfig struct {
	URL       string        `yaml:"url"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"apiKeyEnv"`
	APIKey    string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DeepSeekClient uses the OpenAI compatible chat completions API of DeepSeek.
type DeepSeekClient struct {
	cfg     DeepSeekConfig
	client  *http.Client
	breaker *CircuitBreaker
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// NewDeepSeekClient requires an API key up front so a missing credential
// surfaces before the first request.
func NewDeepSeekClient(cfg DeepSeekConfig) (*DeepSeekClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfiguration, cfg.APIKeyEnv)
	}
	if cfg.URL == "" {
		cfg.URL = DefaultDeepSeekURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultDeepSeekModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &DeepSeekClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: NewCircuitBreaker("deepseek"),
	}, nil
}

func (c *DeepSeekClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, []Message{
		{Role: RoleUser, Content: prompt},
	})
}

func (c *DeepSeekClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.breaker.Execute(ctx, func() (string, error) {
		return c.chat(ctx, messages)
	})
}

func (c *DeepSeekClient) chat(ctx context.Context, messages []Message) (string, error) {
	body := chatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, string(bs))
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", errors.New("deepseek returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

func (c *DeepSeekClient) GetModel() string {
	return "deepseek/" + c.cfg.Model
}

var _ Backend = (*DeepSeekClient)(nil)
