package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mealrec/config"
)

// TextGenerator drafts free text from a system role and one user turn.
type TextGenerator interface {
	Generate(ctx context.Context, systemRole, userTurn string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	client      *http.Client
	url         string
	apiKey      string
	model       string
	temperature float64
}

func NewChatClient(cfg config.GenerationConfig, client *http.Client) *ChatClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatClient{
		client:      client,
		url:         cfg.URL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Generate returns the first choice's content as-is.
func (c *ChatClient) Generate(ctx context.Context, systemRole, userTurn string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("generation api key not set")
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemRole},
			{Role: "user", Content: userTurn},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	respBytes, err := postJSON(ctx, c.client, c.url, c.apiKey, body)
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w | body: %s", err, preview(respBytes))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion from generation api")
	}
	return out.Choices[0].Message.Content, nil
}

// Close releases idle connections held by the client.
func (c *ChatClient) Close() {
	c.client.CloseIdleConnections()
}

// postJSON sends body with bearer auth and surfaces the API's error message
// on any non-200 status.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// OpenAI style {"error": {"message": "..."}} or a bare {"error": "..."}
		var apiErr struct {
			Error json.RawMessage `json:"error"`
		}
		if json.Unmarshal(respBytes, &apiErr) == nil && len(apiErr.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(apiErr.Error, &nested) == nil && nested.Message != "" {
				return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, nested.Message)
			}
			var flat string
			if json.Unmarshal(apiErr.Error, &flat) == nil && flat != "" {
				return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, flat)
			}
		}
		return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, preview(respBytes))
	}
	return respBytes, nil
}

// preview keeps at most 200 runes of an error body.
func preview(b []byte) string {
	const limit = 200
	s := string(b)
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
