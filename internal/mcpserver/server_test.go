package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/rules"
)

const agreement = "The Borrower shall pay the fee on TBD. The fee is payable monthly."

func newHandler() *Handler {
	reviewer := pipeline.NewReviewer(rules.NewEngine(nil), nil, nil, nil, pipeline.ReviewerConfig{})
	return NewHandler(reviewer, nil)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestReviewText(t *testing.T) {
	h := newHandler()
	res, _, err := h.reviewText(context.Background(), nil, ReviewInput{Text: agreement})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		Pack     string `json:"pack"`
		Findings []struct {
			RuleID string `json:"ruleId"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, rules.PackCore, out.Pack)
	var ids []string
	for _, f := range out.Findings {
		ids = append(ids, f.RuleID)
	}
	assert.Contains(t, ids, "R-302")
}

func TestReviewText_Errors(t *testing.T) {
	h := newHandler()

	res, _, err := h.reviewText(context.Background(), nil, ReviewInput{Text: "  "})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = h.reviewText(context.Background(), nil, ReviewInput{Text: agreement, Pack: "tax"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown rule pack")
}

func TestListPacks(t *testing.T) {
	res, _, err := newHandler().listPacks(context.Background(), nil, struct{}{})
	require.NoError(t, err)

	var packs []packSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &packs))
	require.Len(t, packs, len(rules.Packs()))
	assert.Equal(t, rules.PackCore, packs[0].Key)
}

func TestCompareDocuments(t *testing.T) {
	h := newHandler()
	res, _, err := h.compareDocuments(context.Background(), nil, CompareInput{
		Baseline: "This Agreement is governed by English law.",
		New:      "This Agreement is governed by French law and the Lender acts in its sole discretion.",
	})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Unilateral amendment / discretion introduced")

	res, _, err = h.compareDocuments(context.Background(), nil, CompareInput{Baseline: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFindInText(t *testing.T) {
	res, _, err := newHandler().findInText(context.Background(), nil, FindInput{Text: agreement, Query: "FEE"})
	require.NoError(t, err)

	var out struct {
		Count   int `json:"count"`
		Matches []struct {
			Start int    `json:"start"`
			End   int    `json:"end"`
			Text  string `json:"text"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	require.Equal(t, 2, out.Count)
	assert.Equal(t, "fee", out.Matches[0].Text)
	assert.Equal(t, agreement[out.Matches[1].Start:out.Matches[1].End], out.Matches[1].Text)
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()

	ss, err := newHandler().Server().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"review_text", "list_packs", "compare_documents", "find_in_text"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "find_in_text",
		Arguments: map[string]any{"text": agreement, "query": "monthly"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"count":1`)
}
