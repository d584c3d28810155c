package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"podocs/internal/config"
)

// ExtractionReply is the structured JSON shape both extraction prompts ask
// the model to return.
type ExtractionReply struct {
	POPrimary     *string  `json:"po_primary"`
	POSecondary   *string  `json:"po_secondary"`
	PONumbers     []string `json:"po_numbers"`
	Supplier      *string  `json:"supplier"`
	Confidence    float64  `json:"confidence"`
	FoundKeywords []string `json:"found_keywords"`
	Evidence      []struct {
		Page    int    `json:"page"`
		Snippet string `json:"snippet"`
	} `json:"evidence"`
}

type Client struct {
	api     *openai.Client
	limiter *pacer
	timeout time.Duration
}

// NewClient returns nil when no API key is configured; callers treat a nil
// client as "LLM pipeline skipped".
func NewClient(cfg config.Config) *Client {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil
	}
	return &Client{
		api:     openai.NewClient(cfg.OpenAIAPIKey),
		limiter: newPacer(cfg.LLMRateLimitRPS),
		timeout: time.Duration(cfg.LLMTimeoutMs) * time.Millisecond,
	}
}

// ExtractStructured sends one document text under the given system prompt and
// decodes the JSON reply.
func (c *Client) ExtractStructured(ctx context.Context, model, systemPrompt, documentText string) (ExtractionReply, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return ExtractionReply{}, fmt.Errorf("llm extraction: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: documentText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return ExtractionReply{}, fmt.Errorf("llm extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ExtractionReply{}, fmt.Errorf("llm extraction: empty response")
	}

	var reply ExtractionReply
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &reply); err != nil {
		return ExtractionReply{}, fmt.Errorf("llm extraction: decode reply: %w", err)
	}
	if reply.Confidence < 0 {
		reply.Confidence = 0
	}
	if reply.Confidence > 1 {
		reply.Confidence = 1
	}
	return reply, nil
}
