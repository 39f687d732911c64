package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "mistral"
)

type OllamaConfig struct {
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// OllamaClient talks to a locally hosted Ollama server.
type OllamaClient struct {
	cfg     OllamaConfig
	client  *http.Client
	breaker *CircuitBreaker
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.URL == "" {
		cfg.URL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &OllamaClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: NewCircuitBreaker("ollama"),
	}
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.breaker.Execute(ctx, func() (string, error) {
		req := ollamaGenerateRequest{
			Model:  c.cfg.Model,
			Prompt: prompt,
			Stream: false,
		}

		var resp ollamaGenerateResponse
		if err := c.post(ctx, "/api/generate", req, &resp); err != nil {
			return "", err
		}

		return resp.Response, nil
	})
}

func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.breaker.Execute(ctx, func() (string, error) {
		req := ollamaChatRequest{
			Model:    c.cfg.Model,
			Messages: messages,
			Stream:   false,
		}

		var resp ollamaChatResponse
		if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
			return "", err
		}

		return resp.Message.Content, nil
	})
}

func (c *OllamaClient) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bs))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *OllamaClient) GetModel() string {
	return "ollama/" + c.cfg.Model
}

var _ Backend = (*OllamaClient)(nil)
