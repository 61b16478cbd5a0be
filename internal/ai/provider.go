// Package ai runs model-assisted review on top of the deterministic rules:
// whole-document analysis, single-clause analysis and version comparison.
// Model output is treated as untrusted and validated before use.
package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/clausecheck/internal/config"
)

var (
	// ErrNoProvider is returned when AI analysis is requested but disabled.
	ErrNoProvider = errors.New("ai: no provider configured")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("ai: empty response")
)

// Provider is a text-in, text-out language model.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close()
}

// NewProvider builds the provider named by cfg.AIProvider. "none" (or empty)
// returns ErrNoProvider.
func NewProvider(cfg config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case "", "none":
		return nil, ErrNoProvider
	case "claude":
		return NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AITimeout), nil
	case "gemini":
		return NewGemini(GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.AITimeout,
		})
	case "ollama":
		return NewOllama(cfg.OllamaHost, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

var codeBlockRe = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeBlock removes a Markdown code fence wrapped around a response.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return clip(s, n) + "..."
}

// clip returns the longest prefix of s that is at most n bytes and ends on a
// rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
