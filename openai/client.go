package openai

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
	BaseURL = "https://api.openai.com/v1"

	chatModel   = "gpt-4o-mini"
	imageModel  = "gpt-image-1"
	speechModel = "gpt-4o-mini-tts"
	speechVoice = "verse"
)

// GenerationError is a hard failure from a generation endpoint. It carries the
// raw upstream response body so the caller can surface it unchanged.
type GenerationError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Body)
}

// Client talks to the OpenAI REST API. An empty APIKey is a supported
// degraded mode: every call returns a deterministic stub or placeholder
// instead of reaching the network.
type Client struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: BaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// post issues one JSON request and hands back the raw response. No retries.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	return c.Client.Do(req)
}

func readBody(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}
