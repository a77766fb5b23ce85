// Package ollama is a client for the Ollama HTTP API, covering text
// generation, embeddings, and model management.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:11434"
	DefaultModel         = "llama3.2:latest"
	DefaultEmbedModel    = "nomic-embed-text"
	DefaultTimeout       = 300 * time.Second
	DefaultContextWindow = 4096
)

// Config holds configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model (default: llama3.2:latest).
	Model string

	// EmbedModel is the embedding model (default: nomic-embed-text).
	EmbedModel string

	// ContextWindow is the num_ctx sent with generation requests.
	ContextWindow int

	// Timeout is the per-request timeout (default: 300s).
	Timeout time.Duration
}

// Client talks to a single Ollama server. A request that cannot reach the
// server, or that names a model the server does not have, returns an error
// wrapping models.ErrModelUnavailable; callers treat that as fatal for the
// whole batch rather than a per-document failure.
type Client struct {
	client        *http.Client
	baseURL       string
	model         string
	embedModel    string
	contextWindow int
}

// GenerateOptions tunes a single generation request. A zero Model falls back
// to the client's configured model.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

// options holds generation parameters. Temperature is always sent, including
// zero, so summaries stay deterministic instead of picking up the server
// default.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// ModelInfo describes one model installed on the server.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type pullResponse struct {
	Status string `json:"status"`
}

// NewClient creates a client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.ContextWindow == 0 {
		cfg.ContextWindow = DefaultContextWindow
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		embedModel:    cfg.EmbedModel,
		contextWindow: cfg.ContextWindow,
	}
}

// Generate produces a text completion for prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	reqBody := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			NumCtx:      c.contextWindow,
		},
	}

	var genResp generateResponse
	if err := c.post(ctx, "/api/generate", reqBody, &genResp); err != nil {
		return "", err
	}
	return genResp.Response, nil
}

// Embed generates a vector embedding for text using the embedding model.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := embedRequest{
		Model:  c.embedModel,
		Prompt: text,
	}
	var resp embedResponse
	if err := c.post(ctx, "/api/embeddings", reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from model %s", c.embedModel)
	}
	return resp.Embedding, nil
}

// EmbedBatch embeds each text in order. Ollama has no native batch endpoint,
// so texts are embedded one at a time.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		embedding, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// ListModels returns the models installed on the server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return tags.Models, nil
}

// HasModel reports whether the server has a model with the given name.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	installed, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range installed {
		if m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Pull downloads a model onto the server, blocking until it completes.
func (c *Client) Pull(ctx context.Context, name string) error {
	var resp pullResponse
	if err := c.post(ctx, "/api/pull", pullRequest{Name: name, Stream: false}, &resp); err != nil {
		return fmt.Errorf("pull %s: %w", name, err)
	}
	if resp.Status != "success" {
		return fmt.Errorf("pull %s: status %q", name, resp.Status)
	}
	return nil
}

// Ping checks connectivity with the lightweight /api/tags endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// ModelName returns the configured generation model.
func (c *Client) ModelName() string {
	return c.model
}

// EmbedModelName returns the configured embedding model.
func (c *Client) EmbedModelName() string {
	return c.embedModel
}

func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The server being down makes every document fail the same way,
		// so surface it as a batch-fatal condition.
		return fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError converts a non-200 response into an error. A 404 means the
// requested model is not installed.
func (c *Client) statusError(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		body = []byte("failed to read response")
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d: %s", models.ErrModelUnavailable, resp.StatusCode, string(body))
	}
	return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
}
