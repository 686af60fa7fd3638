package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// chatgptModel is the model used for artwork analysis tasks.
const chatgptModel = openai.ChatModelGPT4o

// ChatGPTClient implements Client for OpenAI chat completions.
type ChatGPTClient struct {
	client openai.Client
}

// NewChatGPTClient creates a new ChatGPT client.
func NewChatGPTClient(apiKey string) (*ChatGPTClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &ChatGPTClient{client: client}, nil
}

// Provider returns ProviderChatGPT.
func (c *ChatGPTClient) Provider() Provider {
	return ProviderChatGPT
}

// Model returns the OpenAI model name used for generation.
func (c *ChatGPTClient) Model() string {
	return string(chatgptModel)
}

// GenerateContent generates text for a prompt at the given temperature.
func (c *ChatGPTClient) GenerateContent(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: chatgptModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("chatgpt generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", ErrEmptyOutput)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty message content: %w", ErrEmptyOutput)
	}

	return text, nil
}

// Close releases resources held by the client. The OpenAI client holds no
// connection state of its own.
func (c *ChatGPTClient) Close() error {
	return nil
}
