package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range messages {
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				f.prompt = t.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLLMGenerator(t *testing.T) {
	m := &fakeModel{reply: "  Dal Tadka, Jeera Rice, Sweet Lassi \n"}
	g := NewLLM(m)

	out, err := g.Generate(context.Background(), "suggest something")
	require.NoError(t, err)
	assert.Equal(t, "Dal Tadka, Jeera Rice, Sweet Lassi", out)
	assert.Equal(t, "suggest something", m.prompt)
	assert.True(t, Available(g))
}

func TestLLMGenerator_Errors(t *testing.T) {
	_, err := NewLLM(&fakeModel{err: errors.New("quota exceeded")}).Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = NewLLM(&fakeModel{reply: "   "}).Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestNewOpenAI_WithoutKey(t *testing.T) {
	for _, key := range []string{"", "your_openai_api_key"} {
		g, err := NewOpenAI(key, "gpt-4o-mini")
		require.NoError(t, err)
		assert.False(t, Available(g))

		_, err = g.Generate(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.False(t, Available(nil))
}
