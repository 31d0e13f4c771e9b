package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"mealrec/config"
)

// Embedder turns texts into vectors, one per input and in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbeddingClient talks to an OpenAI-compatible embeddings endpoint.
type EmbeddingClient struct {
	client     *http.Client
	url        string
	apiKey     string
	model      string
	dimensions int
}

func NewEmbeddingClient(cfg config.EmbeddingConfig, client *http.Client) *EmbeddingClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &EmbeddingClient{
		client:     client,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("embedding api key not set")
	}
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts, Dimensions: c.dimensions})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}

	respBytes, err := postJSON(ctx, c.client, c.url, c.apiKey, body)
	if err != nil {
		return nil, err
	}

	var out embeddingResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w | body: %s", err, preview(respBytes))
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embedding api returned %d vectors for %d inputs", len(out.Data), len(texts))
	}
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })

	vectors := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		if c.dimensions > 0 && len(d.Embedding) != c.dimensions {
			return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(d.Embedding), c.dimensions)
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (c *EmbeddingClient) Close() {
	c.client.CloseIdleConnections()
}
