// Package compare checks a new version of an agreement against a baseline
// for drift in governing law, interest, discretion language, clause
// numbering and defined terms.
package compare

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

// Finding is a difference between two agreements.
type Finding struct {
	ID              string           `json:"id"`
	Severity        finding.Severity `json:"severity"`
	RuleTitle       string           `json:"ruleTitle"`
	Why             string           `json:"why"`
	Suggestion      string           `json:"suggestion"`
	BaselineSnippet string           `json:"baselineSnippet,omitempty"`
	NewSnippet      string           `json:"newSnippet,omitempty"`
	Source          finding.Source   `json:"source"`
}

var (
	governingLaw  = regexp.MustCompile(`(?i)governing law`)
	interest      = regexp.MustCompile(`(?i)interest`)
	unilateral    = regexp.MustCompile(`(?i)sole and absolute discretion|sole discretion|unilaterally|for any reason or no reason`)
	clauseHeading = regexp.MustCompile(`(?i)^\s*(?:Clause\s+)?(\d+(?:\.\d+)*)\b`)
	lineBreak     = regexp.MustCompile(`\r?\n`)
	definitionRe  = regexp.MustCompile(`(?i)["“](.+?)["”]\s+means\b[^\n]*`)
)

// ordered is an insertion-ordered string map.
type ordered struct {
	keys []string
	vals map[string]string
}

func newOrdered() *ordered { return &ordered{vals: make(map[string]string)} }

func (o *ordered) setOnce(k, v string) {
	if _, ok := o.vals[k]; ok {
		return
	}
	o.keys = append(o.keys, k)
	o.vals[k] = v
}

func (o *ordered) has(k string) bool {
	_, ok := o.vals[k]
	return ok
}

// clauseHeadings maps each heading number to the first line carrying it.
func clauseHeadings(text string) *ordered {
	out := newOrdered()
	for _, line := range lineBreak.Split(text, -1) {
		if m := clauseHeading.FindStringSubmatch(line); m != nil {
			out.setOnce(m[1], strings.TrimSpace(line))
		}
	}
	return out
}

// definitionLines maps each lower-cased defined term to the rest of the line
// defining it, first definition wins.
func definitionLines(text string) *ordered {
	out := newOrdered()
	for _, m := range definitionRe.FindAllStringSubmatch(text, -1) {
		term := strings.TrimSpace(m[1])
		if term == "" {
			continue
		}
		out.setOnce(strings.ToLower(term), strings.TrimSpace(m[0]))
	}
	return out
}

type collector struct {
	out []Finding
}

func (c *collector) add(f Finding) {
	f.ID = "CF-" + strconv.Itoa(len(c.out)+1)
	f.Source = finding.SourceRule
	c.out = append(c.out, f)
}

// Compare runs every check in a fixed order. Either text being blank yields
// no findings.
func Compare(baseline, updated string) []Finding {
	if strings.TrimSpace(baseline) == "" || strings.TrimSpace(updated) == "" {
		return nil
	}
	c := &collector{}

	if b, n, ok := paragraphPair(baseline, updated, governingLaw); ok {
		c.add(Finding{
			Severity:        finding.SeverityHigh,
			RuleTitle:       "Governing law mismatch",
			Why:             "Both documents contain a governing law provision, but the wording appears to differ between the baseline and the new agreement.",
			Suggestion:      "Confirm which governing law and formulation should apply, then ensure the final agreement set uses a single, consistent governing law clause.",
			BaselineSnippet: b,
			NewSnippet:      n,
		})
	}

	if b, n, ok := paragraphPair(baseline, updated, interest); ok {
		c.add(Finding{
			Severity:        finding.SeverityMedium,
			RuleTitle:       "Interest clause mismatch",
			Why:             "Both documents contain an interest clause, but the wording appears to differ between the baseline and the new agreement.",
			Suggestion:      "Review the interest provisions side by side (rate, day count, payment dates, margin, default interest) and confirm that any differences are intentional and appropriate.",
			BaselineSnippet: b,
			NewSnippet:      n,
		})
	}

	if !unilateral.MatchString(baseline) && unilateral.MatchString(updated) {
		snippet, ok := textscan.FirstParagraphMatching(updated, unilateral)
		if !ok {
			snippet = "Unilateral / sole discretion language in new agreement."
		}
		c.add(Finding{
			Severity:   finding.SeverityHigh,
			RuleTitle:  "Unilateral amendment / discretion introduced",
			Why:        "The new agreement appears to introduce language giving one party unilateral discretion or amendment power (for example, 'sole discretion' or 'unilaterally'), which was not present in the baseline document.",
			Suggestion: "Confirm whether this new unilateral power is deliberate. If not, consider reverting to the baseline wording or tightening the clause so that changes require mutual agreement.",
			NewSnippet: snippet,
		})
	}

	baseHeadings, newHeadings := clauseHeadings(baseline), clauseHeadings(updated)
	for _, number := range baseHeadings.keys {
		if newHeadings.has(number) {
			continue
		}
		c.add(Finding{
			Severity:        finding.SeverityMedium,
			RuleTitle:       "Clause removed in new agreement",
			Why:             "A clause heading from the baseline agreement (Clause " + number + ") does not appear in the new agreement. This may indicate that a provision has been removed between versions.",
			Suggestion:      "Confirm whether the removal of this clause is intended. If the risk allocation or protections are still needed, consider reintroducing or relocating the relevant wording in the new agreement.",
			BaselineSnippet: baseHeadings.vals[number],
		})
	}

	baseDefs, newDefs := definitionLines(baseline), definitionLines(updated)
	for _, key := range baseDefs.keys {
		if newDefs.has(key) {
			continue
		}
		c.add(Finding{
			Severity:        finding.SeverityMedium,
			RuleTitle:       "Defined term missing in new agreement",
			Why:             "A defined term in the baseline agreement does not appear to be defined in the new agreement, which may create gaps or inconsistencies if the concept is still used.",
			Suggestion:      "Check whether this term is still needed in the new agreement. If it is, add a corresponding definition; if not, consider removing any remaining references to it.",
			BaselineSnippet: baseDefs.vals[key],
		})
	}
	for _, key := range newDefs.keys {
		if baseDefs.has(key) {
			continue
		}
		c.add(Finding{
			Severity:   finding.SeverityLow,
			RuleTitle:  "New defined term not present in baseline",
			Why:        "The new agreement contains a defined term that does not appear in the baseline agreement. This may reflect an intentional change in structure or risk allocation.",
			Suggestion: "Confirm that the introduction of this new defined term (and any related provisions) is intentional and consistent with the overall deal structure.",
			NewSnippet: newDefs.vals[key],
		})
	}

	return c.out
}

// paragraphPair finds the first paragraph matching re in each text and
// reports them when both exist and differ beyond whitespace.
func paragraphPair(baseline, updated string, re *regexp.Regexp) (string, string, bool) {
	b, ok := textscan.FirstParagraphMatching(baseline, re)
	if !ok {
		return "", "", false
	}
	n, ok := textscan.FirstParagraphMatching(updated, re)
	if !ok {
		return "", "", false
	}
	if textscan.NormalizeWhitespace(b) == textscan.NormalizeWhitespace(n) {
		return "", "", false
	}
	return b, n, true
}
