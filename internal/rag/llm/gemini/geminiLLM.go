package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client            *genai.Client
	modelName         string
	systemInstruction string
	temperature       float32
	logger            *logger_i.Logger
}

func NewClient(ctx context.Context, settings config.LLMSettings, apiKey string, httpClient *http.Client) (*llmClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", settings.Model)
	return &llmClient{
		client:            c,
		modelName:         settings.Model,
		systemInstruction: settings.SystemInstruction,
		temperature:       float32(settings.Temperature),
		logger:            logger,
	}, nil
}

func (c *llmClient) Model() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.systemInstruction != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.systemInstruction}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), contentConfig)
	if err != nil {
		c.logger.Error("Gemini generation failed", "error", err)
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
