// Package rules implements the deterministic contract-review rule engine: a
// catalogue of pure text-to-findings rules, the packs that select from it, and
// the engine that runs them.
package rules

import (
	"strconv"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
)

// Rule is a named, pure function over text. Running a rule twice on the same
// text yields the same findings; an absence of matches is an empty result.
type Rule interface {
	ID() string
	Title() string
	Severity() finding.Severity
	Category() finding.Category
	Run(text string) []finding.Finding
}

// RunFunc is the body of a rule built with New.
type RunFunc func(text string) []finding.Finding

// New builds a Rule from its metadata and body. The body is never called for
// empty or whitespace-only text, and every finding it returns is stamped with
// the rule's id, severity, category and source; a finding may override the
// rule title.
func New(id, title string, severity finding.Severity, category finding.Category, run RunFunc) Rule {
	return &funcRule{
		meta: meta{id: id, title: title, severity: severity, category: category},
		run:  run,
	}
}

type meta struct {
	id       string
	title    string
	severity finding.Severity
	category finding.Category
}

func (m meta) ID() string                 { return m.id }
func (m meta) Title() string              { return m.title }
func (m meta) Severity() finding.Severity { return m.severity }
func (m meta) Category() finding.Category { return m.category }

type funcRule struct {
	meta
	run RunFunc
}

func (r *funcRule) Run(text string) []finding.Finding {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	out := r.run(text)
	for i := range out {
		f := &out[i]
		f.ID = r.id + "-" + strconv.Itoa(i+1)
		f.RuleID = r.id
		f.Severity = r.severity
		f.Category = r.category
		f.Source = finding.SourceRule
		if f.RuleTitle == "" {
			f.RuleTitle = r.title
		}
	}
	return out
}

// at returns a finding spanning text[start:end] with that excerpt as matched text.
func at(text string, start, end int) finding.Finding {
	return finding.Finding{
		MatchedText: text[start:end],
		Start:       finding.Offset(start),
		End:         finding.Offset(end),
	}
}

// whole returns a document-level finding (start = end = 0).
func whole(matched string) finding.Finding {
	return finding.Finding{
		MatchedText: matched,
		Start:       finding.Offset(0),
		End:         finding.Offset(0),
	}
}
