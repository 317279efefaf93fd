package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PlaceholderImageURL is served whenever no real image can be produced.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1522199710521-72d69614c702?w=1280&q=80"

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage produces one image URL for the prompt. With no API key it
// returns the fixed placeholder. A non-success response is a hard failure;
// a success that carries no URL still falls back to the placeholder so the
// caller never gets an unusable empty value.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return PlaceholderImageURL, nil
	}

	resp, err := c.post(ctx, "/images/generations", imageRequest{
		Model:  imageModel,
		Prompt: prompt,
		Size:   "1024x1024",
	})
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{Service: "image", StatusCode: resp.StatusCode, Body: readBody(resp)}
	}

	var parsed imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("error decoding image response: %v", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return PlaceholderImageURL, nil
	}
	return parsed.Data[0].URL, nil
}
