package ai

import (
	"regexp"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
)

// RawFinding is one entry of a document or clause analysis response.
type RawFinding struct {
	Title         string `json:"title"`
	Severity      string `json:"severity"`
	Category      string `json:"category"`
	Why           string `json:"why"`
	Suggestion    string `json:"suggestion"`
	MatchedText   string `json:"matchedText"`
	LocationLabel string `json:"locationLabel"`
}

// RawComparison is one entry of a comparison response.
type RawComparison struct {
	RuleTitle       string  `json:"ruleTitle"`
	Severity        string  `json:"severity"`
	Why             string  `json:"why"`
	Suggestion      string  `json:"suggestion"`
	BaselineSnippet *string `json:"baselineSnippet"`
	NewSnippet      *string `json:"newSnippet"`
}

const (
	maxTitleLen   = 120
	maxTextLen    = 1200
	maxSnippetLen = 400
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`pretend\s+to\s+be|forget\s+(everything|all)|` +
		`new\s+instructions)`,
)

func normalizeSeverity(s string) finding.Severity {
	return finding.Severity(strings.ToLower(strings.TrimSpace(s)))
}

// ValidateAIFinding checks and normalizes a model finding in place. It
// returns false for entries that must be dropped.
func ValidateAIFinding(f *RawFinding) bool {
	if f == nil {
		return false
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Why = strings.TrimSpace(f.Why)
	f.Suggestion = strings.TrimSpace(f.Suggestion)
	f.MatchedText = strings.TrimSpace(f.MatchedText)
	f.LocationLabel = strings.TrimSpace(f.LocationLabel)

	if f.Title == "" || len(f.Title) > maxTitleLen {
		return false
	}
	if f.Why == "" || len(f.Why) > maxTextLen || len(f.Suggestion) > maxTextLen {
		return false
	}
	sev := normalizeSeverity(f.Severity)
	if !sev.Valid() {
		return false
	}
	f.Severity = string(sev)
	if injectionPattern.MatchString(f.Title) || injectionPattern.MatchString(f.Why) || injectionPattern.MatchString(f.Suggestion) {
		return false
	}
	cat := finding.Category(strings.ToLower(strings.TrimSpace(f.Category)))
	if !cat.Valid() {
		cat = ""
	}
	f.Category = string(cat)
	f.MatchedText = clip(f.MatchedText, maxSnippetLen)
	return true
}

// ValidateComparison is ValidateAIFinding for comparison entries.
func ValidateComparison(c *RawComparison) bool {
	if c == nil {
		return false
	}
	c.RuleTitle = strings.TrimSpace(c.RuleTitle)
	c.Why = strings.TrimSpace(c.Why)
	c.Suggestion = strings.TrimSpace(c.Suggestion)
	if c.RuleTitle == "" || len(c.RuleTitle) > maxTitleLen || c.Why == "" || len(c.Why) > maxTextLen {
		return false
	}
	sev := normalizeSeverity(c.Severity)
	if !sev.Valid() {
		return false
	}
	c.Severity = string(sev)
	if injectionPattern.MatchString(c.RuleTitle) || injectionPattern.MatchString(c.Why) || injectionPattern.MatchString(c.Suggestion) {
		return false
	}
	return true
}
