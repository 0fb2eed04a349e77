package ollamaLLM

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type llmClient struct {
	llm         *ollama.LLM
	modelName   string
	temperature float64
	logger      *logger_i.Logger
}

func NewClient(settings config.LLMSettings) (*llmClient, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(settings.BaseURL),
		ollama.WithModel(settings.Model),
	}
	if settings.SystemInstruction != "" {
		opts = append(opts, ollama.WithSystemPrompt(settings.SystemInstruction))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	logger := logger_i.NewLogger("llm_ollama")
	logger.Info("Ollama client created", "model", settings.Model, "url", settings.BaseURL)
	return &llmClient{llm: llm, modelName: settings.Model, temperature: settings.Temperature, logger: logger}, nil
}

func (c *llmClient) Model() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("Ollama generation failed", "error", err)
		return "", err
	}
	if answer == "" {
		return "", errors.New("ollama: empty response")
	}
	return answer, nil
}
