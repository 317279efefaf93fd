package research

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const (
	BaseURL    = "https://api.tavily.com"
	maxResults = 5
)

// Result is one source record returned by the search API.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Client queries the Tavily search API. It is strictly best-effort: a missing
// API key, a transport failure or a non-success response all degrade to an
// empty result list. It never returns an error and never retries.
type Client struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: BaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns up to 5 results for the query. The returned slice is never
// nil so callers can serialize it as an empty array.
func (c *Client) Search(ctx context.Context, query string) []Result {
	results := []Result{}
	if c.APIKey == "" {
		return results
	}

	payload, err := json.Marshal(searchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return results
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/search", bytes.NewBuffer(payload))
	if err != nil {
		return results
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("Research request failed: %v", err)
		return results
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Research API returned status %d, continuing without sources", resp.StatusCode)
		return results
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return results
	}

	if len(parsed.Results) > maxResults {
		parsed.Results = parsed.Results[:maxResults]
	}
	if parsed.Results == nil {
		return results
	}
	return parsed.Results
}
