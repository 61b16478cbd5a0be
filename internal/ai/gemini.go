package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiOptions configures the Google Generative Language API client.
type GeminiOptions struct {
	BaseURL string // default https://generativelanguage.googleapis.com
	Model   string // default gemini-2.5-flash
	APIKey  string
	Timeout time.Duration // default 60s
}

func (o *GeminiOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if o.Model == "" {
		o.Model = "gemini-2.5-flash"
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
}

// Gemini calls generateContent with the API key in the query string.
type Gemini struct {
	hc    *http.Client
	url   string
	key   string
	model string
}

func NewGemini(opts GeminiOptions) (*Gemini, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	path := "/v1beta/models/" + url.PathEscape(opts.Model) + ":generateContent"
	return &Gemini{
		hc:    &http.Client{Timeout: opts.Timeout},
		url:   strings.TrimRight(opts.BaseURL, "/") + path,
		key:   opts.APIKey,
		model: opts.Model,
	}, nil
}

type gmPart struct {
	Text string `json:"text"`
}

type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}

type gmGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
}

type gmReq struct {
	SystemInstruction *gmContent          `json:"system_instruction,omitempty"`
	Contents          []gmContent         `json:"contents"`
	GenerationConfig  *gmGenerationConfig `json:"generationConfig,omitempty"`
}

type gmResp struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(&gmReq{
		SystemInstruction: &gmContent{Parts: []gmPart{{Text: systemPrompt}}},
		Contents:          []gmContent{{Role: "user", Parts: []gmPart{{Text: prompt}}}},
		GenerationConfig:  &gmGenerationConfig{Temperature: 0.2, ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	u, err := url.Parse(g.url)
	if err != nil {
		return "", fmt.Errorf("gemini url: %w", err)
	}
	q := u.Query()
	q.Set("key", g.key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out gmResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", out.Error.Code, out.Error.Message)
	}
	var sb strings.Builder
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (g *Gemini) Close() {
	g.hc.CloseIdleConnections()
}
