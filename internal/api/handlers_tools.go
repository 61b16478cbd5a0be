package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/compare"
	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/highlight"
	"github.com/dgallion1/clausecheck/internal/parser"
	"github.com/dgallion1/clausecheck/internal/rules"
)

type packInfo struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	RuleIDs []string `json:"ruleIds"`
}

func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs := rules.Packs()
	out := make([]packInfo, 0, len(packs))
	for _, p := range packs {
		out = append(out, packInfo{Key: p.Key, Label: p.Label, RuleIDs: p.RuleIDs()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"packs": out})
}

type ruleInfo struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Severity finding.Severity `json:"severity"`
	Category finding.Category `json:"category"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	cat := rules.Catalogue()
	out := make([]ruleInfo, 0, len(cat))
	for _, rule := range cat {
		out = append(out, ruleInfo{
			ID:       rule.ID(),
			Title:    rule.Title(),
			Severity: rule.Severity(),
			Category: rule.Category(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}

type highlightRequest struct {
	Text     string            `json:"text"`
	Findings []finding.Finding `json:"findings"`
	Query    string            `json:"query"`
	Active   *int              `json:"active"`
}

// handleHighlight partitions text for display. active selects the current
// search match; it defaults to none.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	matches := highlight.FindMatches(req.Text, req.Query)
	active := -1
	if req.Active != nil {
		active = *req.Active
	}
	segments := highlight.Segments(req.Text, req.Findings, matches, active)
	if matches == nil {
		matches = []highlight.Span{}
	}
	if segments == nil {
		segments = []highlight.Segment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segments": segments,
		"matches":  matches,
		"html":     highlight.RenderHTML(req.Text, segments),
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	p, err := parser.ForFile(filename, s.parserOptions())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err == nil && doc.Empty() {
		err = parser.ErrNoText
	}
	if err != nil {
		if !errors.Is(err, parser.ErrNoText) {
			s.log.Warn("extraction failed", "filename", filename, "error", err)
			jsonError(w, "could not extract text: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type compareRequest struct {
	BaselineText string `json:"baselineText"`
	NewText      string `json:"newText"`
	AI           bool   `json:"ai"`
}

// handleCompare runs the deterministic comparison and, when asked, the
// model comparison. Model failures are reported in aiError next to the
// rule findings.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.BaselineText) == "" || strings.TrimSpace(req.NewText) == "" {
		jsonError(w, "baselineText and newText are required", http.StatusBadRequest)
		return
	}

	findings := compare.Compare(req.BaselineText, req.NewText)
	resp := map[string]any{}
	if req.AI {
		aiFindings, err := s.reviewer.Analyzer().CompareDocuments(r.Context(), req.BaselineText, req.NewText)
		if err != nil {
			s.log.Warn("ai comparison failed", "error", err)
			resp["aiError"] = err.Error()
		}
		findings = append(findings, aiFindings...)
	}
	if findings == nil {
		findings = []compare.Finding{}
	}
	resp["findings"] = findings
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeClause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	an := s.reviewer.Analyzer()
	if !an.Enabled() {
		s.writeError(w, ai.ErrNoProvider)
		return
	}
	findings, err := an.AnalyzeClause(r.Context(), req.Text)
	if err != nil {
		s.log.Error("clause analysis failed", "error", err)
		jsonError(w, "clause analysis failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if findings == nil {
		findings = []finding.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}
