package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// Ollama runs prompts against a local Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(host, model string) (*Ollama, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("ollama host %q must be an absolute URL", host)
	}
	return &Ollama{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *Ollama) Name() string  { return "ollama" }
func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	req := api.GenerateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.1,
			"num_predict": 2048,
		},
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	if err != nil {
		var status api.StatusError
		if errors.As(err, &status) && (status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500) {
			return "", &RetryableError{StatusCode: status.StatusCode, Message: status.ErrorMessage}
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (o *Ollama) Close() {}
