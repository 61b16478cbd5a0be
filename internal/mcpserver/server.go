// Package mcpserver exposes clausecheck as Model Context Protocol tools so an
// assistant can review agreement text without going through the HTTP API.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/clausecheck/internal/compare"
	"github.com/dgallion1/clausecheck/internal/highlight"
	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/rules"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// ReviewInput is the argument of review_text.
type ReviewInput struct {
	Text  string `json:"text" jsonschema:"the agreement text to review"`
	Pack  string `json:"pack,omitempty" jsonschema:"rule pack key, defaults to core"`
	Title string `json:"title,omitempty" jsonschema:"optional document title"`
}

// CompareInput is the argument of compare_documents.
type CompareInput struct {
	Baseline string `json:"baseline" jsonschema:"the baseline agreement text"`
	New      string `json:"new" jsonschema:"the new version of the agreement"`
}

// FindInput is the argument of find_in_text.
type FindInput struct {
	Text  string `json:"text" jsonschema:"the text to search"`
	Query string `json:"query" jsonschema:"case-insensitive literal to find"`
}

// Handler owns the MCP server and its tools.
type Handler struct {
	reviewer *pipeline.Reviewer
	log      *slog.Logger
	server   *mcp.Server
}

// NewHandler registers the clausecheck tools. Reviews run rules only; they
// are saved when the reviewer has a store.
func NewHandler(reviewer *pipeline.Reviewer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &Handler{reviewer: reviewer, log: log}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "clausecheck",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_text",
		Description: "Run the deterministic contract-review rules over agreement text and return findings with byte offsets.",
	}, h.reviewText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_packs",
		Description: "List the rule packs and the rule ids each contains.",
	}, h.listPacks)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_documents",
		Description: "Compare a new agreement version against a baseline: governing law, interest, discretion language, removed clauses and defined terms.",
	}, h.compareDocuments)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_in_text",
		Description: "Find case-insensitive, non-overlapping occurrences of a literal in text.",
	}, h.findInText)

	h.server = server
	return h
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcp.Server { return h.server }

// Run serves the tools over stdio until ctx is done or the client leaves.
func (h *Handler) Run(ctx context.Context) error {
	return h.server.Run(ctx, &mcp.StdioTransport{})
}

func (h *Handler) reviewText(ctx context.Context, _ *mcp.CallToolRequest, in ReviewInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Text) == "" {
		return toolError("text is required"), nil, nil
	}
	review, err := h.reviewer.ReviewText(ctx, pipeline.Request{Title: in.Title, Text: in.Text, Pack: in.Pack})
	if err != nil {
		h.log.Warn("review_text failed", "error", err)
		return toolError(err.Error()), nil, nil
	}
	return h.jsonResult("review_text", map[string]any{
		"reviewId": review.ID,
		"pack":     review.Pack,
		"counts":   review.Counts,
		"findings": review.Findings,
	})
}

type packSummary struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	RuleIDs []string `json:"ruleIds"`
}

func (h *Handler) listPacks(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	var out []packSummary
	for _, p := range rules.Packs() {
		out = append(out, packSummary{Key: p.Key, Label: p.Label, RuleIDs: p.RuleIDs()})
	}
	return h.jsonResult("list_packs", out)
}

func (h *Handler) compareDocuments(_ context.Context, _ *mcp.CallToolRequest, in CompareInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Baseline) == "" || strings.TrimSpace(in.New) == "" {
		return toolError("baseline and new are required"), nil, nil
	}
	findings := compare.Compare(in.Baseline, in.New)
	if findings == nil {
		findings = []compare.Finding{}
	}
	return h.jsonResult("compare_documents", map[string]any{"findings": findings})
}

func (h *Handler) findInText(_ context.Context, _ *mcp.CallToolRequest, in FindInput) (*mcp.CallToolResult, any, error) {
	matches := highlight.FindMatches(in.Text, in.Query)
	if matches == nil {
		matches = []highlight.Span{}
	}
	type match struct {
		highlight.Span
		Text string `json:"text"`
	}
	out := make([]match, 0, len(matches))
	for _, m := range matches {
		out = append(out, match{Span: m, Text: in.Text[m.Start:m.End]})
	}
	return h.jsonResult("find_in_text", map[string]any{"count": len(out), "matches": out})
}

func (h *Handler) jsonResult(tool string, v any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: encode result: %w", tool, err)
	}
	h.log.Debug("tool call", "tool", tool, "bytes", len(b))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
