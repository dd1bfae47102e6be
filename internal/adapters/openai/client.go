package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
)

type Client struct {
	key   string
	model string
	cli   openai.Client
	log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	model := cfg.OpenAIModel
	if strings.TrimSpace(model) == "" { model = "gpt-4.1" }
	cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey), option.WithRequestTimeout(cfg.OpenAITimeout))
	return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

// Complete sends one prompt and returns the body text of the response.
// Reasoning-capable models may prefix the content with a <think> segment;
// that segment is dropped, only the body is returned.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil { return "", err }
	if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
	return stripReasoning(resp.Choices[0].Message.Content), nil
}

func stripReasoning(s string) string {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, tag := range []string{"<think>", "<thinking>"} {
		if !strings.HasPrefix(lower, tag) { continue }
		end := strings.Replace(tag, "<", "</", 1)
		if idx := strings.Index(lower, end); idx >= 0 {
			return strings.TrimSpace(trimmed[idx+len(end):])
		}
	}
	return trimmed
}
