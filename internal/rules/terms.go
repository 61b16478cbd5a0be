package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

var capitalisedWord = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\b`)

// commonCapitalised are words that are routinely capitalised in agreements
// without being defined terms.
var commonCapitalised = map[string]bool{
	"agreement": true, "party": true, "parties": true, "clause": true,
	"section": true, "schedule": true, "annex": true, "appendix": true,
	"business": true, "day": true, "date": true, "month": true, "year": true,
	"company": true, "subsidiary": true, "group": true, "person": true,
	"this": true, "that": true, "these": true, "those": true, "any": true,
	"each": true, "other": true,
}

const undefinedTermThreshold = 3

// duplicateDefinitions treats the first definition as the real one and flags
// the second.
var duplicateDefinitions = New("R-501", "Duplicate defined terms",
	finding.SeverityMedium, finding.CategoryClarity,
	func(text string) []finding.Finding {
		defs := textscan.ExtractDefinitions(text)
		var out []finding.Finding
		for _, key := range defs.Keys() {
			def, _ := defs.Get(key)
			if len(def.Occurrences) < 2 {
				continue
			}
			second := def.Occurrences[1]
			f := at(text, second.Index, second.Index+len(second.MatchedText))
			f.RuleTitle = "Duplicate defined term"
			f.MatchedText = `"` + def.Term + `" means`
			f.Why = `The term "` + def.Term + `" appears to be defined more than once in the document. Multiple definitions of the same term can create ambiguity.`
			f.Suggestion = "Consolidate the definitions of this term into a single, clear definition and remove any redundant or inconsistent duplicates."
			f.LocationLabel = "Definitions section"
			out = append(out, f)
		}
		return out
	})

type wordUsage struct {
	count   int
	example string
	index   int
}

var undefinedCapitalisedTerms = New("R-502", "Capitalised terms used but not defined",
	finding.SeverityLow, finding.CategoryClarity,
	func(text string) []finding.Finding {
		defs := textscan.ExtractDefinitions(text)

		var order []string
		usage := make(map[string]*wordUsage)
		for _, loc := range capitalisedWord.FindAllStringIndex(text, -1) {
			word := text[loc[0]:loc[1]]
			key := strings.ToLower(word)
			if commonCapitalised[key] || defs.Has(key) {
				continue
			}
			if u, ok := usage[key]; ok {
				u.count++
				continue
			}
			usage[key] = &wordUsage{count: 1, example: word, index: loc[0]}
			order = append(order, key)
		}

		var out []finding.Finding
		for _, key := range order {
			u := usage[key]
			if u.count < undefinedTermThreshold {
				continue
			}
			f := at(text, u.index, u.index+len(u.example))
			f.RuleTitle = "Capitalised term used but not defined"
			f.Why = `The capitalised term "` + u.example + `" appears repeatedly in the document (approximately ` +
				strconv.Itoa(u.count) + " times) but does not have a clear definition. This may cause uncertainty over its precise meaning."
			f.Suggestion = "Either add a formal definition for this term in the definitions section or use lower-case language if no special defined meaning is intended."
			f.LocationLabel = "Repeated undefined capitalised term"
			out = append(out, f)
		}
		return out
	})
