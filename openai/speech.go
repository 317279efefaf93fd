package openai

import (
	"context"
	"encoding/base64"
	"io"
	"log"
	"net/http"
)

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// GenerateSpeech synthesizes a voiceover for the text and returns it as a
// self-contained data URL. Voiceover is an optional enhancement: a missing
// API key, a transport failure or a non-success response all return "" and
// are never surfaced as errors, unlike script generation.
func (c *Client) GenerateSpeech(ctx context.Context, text string) string {
	if c.APIKey == "" {
		return ""
	}

	resp, err := c.post(ctx, "/audio/speech", speechRequest{
		Model: speechModel,
		Voice: speechVoice,
		Input: text,
	})
	if err != nil {
		log.Printf("Voiceover request failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Voiceover API returned status %d, continuing without audio", resp.StatusCode)
		return ""
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading voiceover response: %v", err)
		return ""
	}
	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio)
}
