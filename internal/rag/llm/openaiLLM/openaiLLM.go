// Package openaiLLM serves every OpenAI-compatible chat endpoint, Groq
// included, through the official SDK pointed at a different base URL.
package openaiLLM

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client            openai.Client
	modelName         string
	systemInstruction string
	temperature       float64
	logger            *logger_i.Logger
}

func NewClient(settings config.LLMSettings, apiKey string, httpClient *http.Client) (*llmClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai-compatible llm: empty api key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	logger := logger_i.NewLogger("llm_" + settings.Provider)
	logger.Info("Chat completion client created", "model", settings.Model, "baseURL", settings.BaseURL)
	return &llmClient{
		client:            openai.NewClient(opts...),
		modelName:         settings.Model,
		systemInstruction: settings.SystemInstruction,
		temperature:       settings.Temperature,
		logger:            logger,
	}, nil
}

func (c *llmClient) Model() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.systemInstruction != "" {
		messages = append(messages, openai.SystemMessage(c.systemInstruction))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("Chat completion rejected", "status", apiErr.StatusCode, "error", err)
		} else {
			c.logger.Error("Chat completion failed", "error", err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai-compatible llm: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
