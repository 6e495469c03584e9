// Package genai wraps the remote text-generation model used for menu copy,
// recommendations and intent parsing.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrUnavailable = errors.New("text generation is not configured")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type unavailable struct{}

func (unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Unavailable returns a Generator that always fails with ErrUnavailable.
func Unavailable() Generator {
	return unavailable{}
}

// Available reports whether g can reach a model at all.
func Available(g Generator) bool {
	if g == nil {
		return false
	}
	_, off := g.(unavailable)
	return !off
}

type llmGenerator struct {
	model llms.Model
	opts  []llms.CallOption
}

func NewLLM(model llms.Model, opts ...llms.CallOption) Generator {
	return &llmGenerator{model: model, opts: opts}
}

func (g *llmGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("generate: empty response")
	}
	return text, nil
}

// NewOpenAI returns an OpenAI-backed Generator, or Unavailable when no key is
// configured.
func NewOpenAI(apiKey, model string) (Generator, error) {
	if apiKey == "" || apiKey == "your_openai_api_key" {
		return Unavailable(), nil
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLLM(llm, llms.WithTemperature(0.2), llms.WithMaxTokens(400)), nil
}
