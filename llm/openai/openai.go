// Package openai implements llm.Generator on the OpenAI Chat Completions
// API. Prompts map to a single user message; only the text of the first
// choice is returned.
package openai

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/govmesh/govmesh/core"
)

// Options configure the OpenAI generator. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI Chat Completions API behind llm.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

// New creates a Generator using the default client, which reads the API key
// from the environment.
func New(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a Generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", core.WrapError(core.KindInternal, err, "openai completion failed")
	}
	if len(completion.Choices) == 0 {
		return "", core.NewError(core.KindInternal, "openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
