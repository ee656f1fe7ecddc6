package bedrock

import (
	"context"
	"strings"
)

const anthropicVersion = "bedrock-2023-05-31"

// ClaudeRequest is the Anthropic Messages body accepted by InvokeModel.
type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      *float64        `json:"temperature,omitempty"`
	System           string          `json:"system,omitempty"`
	Messages         []ClaudeMessage `json:"messages"`
}

type ClaudeMessage struct {
	Role    string          `json:"role"`
	Content []ClaudeContent `json:"content"`
}

type ClaudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *ClaudeImageSource `json:"source,omitempty"`
}

type ClaudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []ClaudeContent `json:"content"`
}

// ClaudeText is a text content block.
func ClaudeText(text string) ClaudeContent {
	return ClaudeContent{Type: "text", Text: text}
}

// ClaudeImage is a base64 image content block.
func ClaudeImage(mediaType, data string) ClaudeContent {
	return ClaudeContent{Type: "image", Source: &ClaudeImageSource{Type: "base64", MediaType: mediaType, Data: data}}
}

// InvokeClaude sends a Messages request and returns the first text block.
func (c *Client) InvokeClaude(ctx context.Context, modelID string, req ClaudeRequest) (string, error) {
	if req.AnthropicVersion == "" {
		req.AnthropicVersion = anthropicVersion
	}
	var resp claudeResponse
	if err := c.InvokeJSON(ctx, modelID, req, &resp); err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrNoText
}
