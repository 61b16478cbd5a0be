// Package finding defines the record produced by every review source: the
// deterministic rules and the LLM analyzer both emit []Finding.
package finding

import (
	"sort"
	"strings"
)

// Severity of a finding. It only drives display ordering and filtering.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rank orders severities for display, high first.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Category groups findings by the kind of problem they describe.
type Category string

const (
	CategoryStructural     Category = "structural-completeness"
	CategoryCommercialRisk Category = "commercial-risk"
	CategoryClarity        Category = "drafting-clarity"
	CategoryCrossReference Category = "cross-reference-integrity"
)

// Valid reports whether c is a known category. The empty category is not valid.
func (c Category) Valid() bool {
	switch c {
	case CategoryStructural, CategoryCommercialRisk, CategoryClarity, CategoryCrossReference:
		return true
	}
	return false
}

// Source records which layer produced a finding.
type Source string

const (
	SourceRule Source = "rule"
	SourceAI   Source = "ai"
)

// Finding is one flagged passage (or a document-level observation).
type Finding struct {
	ID            string   `json:"id"`
	Severity      Severity `json:"severity"`
	RuleID        string   `json:"ruleId"`
	RuleTitle     string   `json:"ruleTitle"`
	Category      Category `json:"category,omitempty"`
	Why           string   `json:"why"`
	Suggestion    string   `json:"suggestion"`
	MatchedText   string   `json:"matchedText"`
	LocationLabel string   `json:"locationLabel,omitempty"`
	Start         *int     `json:"start,omitempty"`
	End           *int     `json:"end,omitempty"`
	Source        Source   `json:"source"`
}

// Offset returns a pointer to n, for filling Start and End.
func Offset(n int) *int { return &n }

// Span returns the finding's offsets when it names a non-empty range.
// Document-level findings (start == end, or missing offsets) report ok=false.
func (f Finding) Span() (start, end int, ok bool) {
	if f.Start == nil || f.End == nil {
		return 0, 0, false
	}
	start, end = *f.Start, *f.End
	if start < 0 || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// ValidIn reports whether the finding's span can be highlighted in text.
func (f Finding) ValidIn(text string) bool {
	_, end, ok := f.Span()
	return ok && end <= len(text)
}

// Counts tallies findings per severity.
type Counts struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Count returns per-severity totals for findings.
func Count(findings []Finding) Counts {
	var c Counts
	for _, f := range findings {
		c.Total++
		switch f.Severity {
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
	}
	return c
}

// Filter narrows a finding list the way a reviewer triages it.
// Zero values mean "no restriction".
type Filter struct {
	Severity Severity
	Query    string
	Resolved map[string]bool
}

// Apply returns the findings that pass the filter, preserving order.
func (fl Filter) Apply(findings []Finding) []Finding {
	q := strings.ToLower(strings.TrimSpace(fl.Query))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if fl.Resolved[f.ID] {
			continue
		}
		if fl.Severity != "" && f.Severity != fl.Severity {
			continue
		}
		if q != "" && !strings.Contains(f.searchText(), q) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (f Finding) searchText() string {
	return strings.ToLower(strings.Join([]string{
		f.RuleID, f.RuleTitle, f.Why, f.MatchedText, f.LocationLabel,
	}, " "))
}

// SortBySeverity stable-sorts findings high → low, keeping emission order
// within a severity.
func SortBySeverity(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
}
