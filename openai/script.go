package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are an elite YouTube producer. Return a concise script with scenes."

// GenerateScript runs one chat completion for the composed prompt. With no
// API key configured it returns a fixed-structure stub script so the rest of
// the pipeline has stable input. A non-success response is a hard failure
// carrying the upstream body; it is not swallowed.
func (c *Client) GenerateScript(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return stubScript(), nil
	}

	resp, err := c.post(ctx, "/chat/completions", chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("script generation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{Service: "script", StatusCode: resp.StatusCode, Body: readBody(resp)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("error decoding script response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

func stubScript() string {
	return fmt.Sprintf(`TITLE: Viral Video About %s
HOOK: You won't believe these insights.

SCENES:
1) Caption: The problem.
2) Caption: The twist.
3) Caption: The solution.
4) Caption: The proof.
5) Caption: The call to action.`, time.Now().Format("1/2/2006"))
}
