package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/pkg/config"
)

// OpenAIClient is a minimal client for chat completion and embedding calls
type OpenAIClient struct {
	apiKey          string
	baseURL         string
	completionModel string
	embeddingModel  string
	embeddingDims   int
	temperature     float64
	maxTokens       int
	client          *http.Client
}

// NewOpenAIClient creates a client using values from the provided config
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		apiKey:          cfg.APIKey,
		baseURL:         cfg.BaseURL,
		completionModel: cfg.CompletionModel,
		embeddingModel:  cfg.EmbeddingModel,
		embeddingDims:   cfg.EmbeddingDims,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		client:          &http.Client{Timeout: 120 * time.Second},
	}
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// EmbeddingRequest is the shape for embedding requests
type EmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingResponse is a minimal response shape
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// ChatCompletion sends the messages and returns the assistant content
func (c *OpenAIClient) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	reqBody := ChatRequest{
		Model:       c.completionModel,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var cr ChatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &cr); err != nil {
		return "", apperrors.ErrLLMFailed("chat completion", err)
	}
	if len(cr.Choices) == 0 {
		return "", apperrors.ErrLLMFailed("chat completion", fmt.Errorf("empty response"))
	}
	return cr.Choices[0].Message.Content, nil
}

// CreateEmbedding embeds one input string at the configured dimensionality
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	reqBody := EmbeddingRequest{
		Model:      c.embeddingModel,
		Input:      []string{input},
		Dimensions: c.embeddingDims,
	}

	var er EmbeddingResponse
	if err := c.post(ctx, "/embeddings", reqBody, &er); err != nil {
		return nil, apperrors.ErrEmbeddingFailed(err)
	}
	if len(er.Data) == 0 {
		return nil, apperrors.ErrEmbeddingFailed(fmt.Errorf("empty response"))
	}
	return er.Data[0].Embedding, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, reqBody, out interface{}) error {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
