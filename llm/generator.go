// Package llm abstracts text generation behind a minimal interface so that
// policy parsing and explanation synthesis can be enriched by a language
// model without binding them to a provider.
package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/govmesh/govmesh/core"
)

// Generator produces a completion for a prompt. Implementations must be safe
// for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MockGenerator is a lightweight in-memory Generator for tests and examples.
// It matches responses registered per prompt substring and records every
// prompt it sees.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	fallback  string
	err       error
	prompts   []string
}

// NewMockGenerator constructs a MockGenerator with a default fallback reply.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		responses: make(map[string]string),
		fallback:  "mock response",
	}
}

// AddResponse registers a canned reply returned when the prompt contains key.
func (m *MockGenerator) AddResponse(key, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = response
}

// SetFallback sets the reply for prompts with no registered match.
func (m *MockGenerator) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// SetError makes every subsequent Generate call fail with err.
func (m *MockGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns the prompts seen so far, in call order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", core.WrapError(core.KindInternal, err, "generation cancelled")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	for key, resp := range m.responses {
		if key != "" && containsFold(prompt, key) {
			return resp, nil
		}
	}
	return m.fallback, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
