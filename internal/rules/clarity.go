package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

const longSentenceWords = 45

var conditionalPhrases = []string{"provided that", "subject to", "notwithstanding"}

const conditionalThreshold = 3

var soleDiscretion = regexp.MustCompile(`(?i)sole and absolute discretion`)

// sentenceFinding spans the untrimmed sentence but reports the trimmed text.
func sentenceFinding(s textscan.Sentence) finding.Finding {
	return finding.Finding{
		MatchedText: s.Text,
		Start:       finding.Offset(s.Start),
		End:         finding.Offset(s.End),
	}
}

var longSentences = New("R-601", "Very long sentences",
	finding.SeverityLow, finding.CategoryClarity,
	func(text string) []finding.Finding {
		var out []finding.Finding
		for _, s := range textscan.Sentences(text) {
			words := len(strings.Fields(s.Text))
			if words <= longSentenceWords {
				continue
			}
			f := sentenceFinding(s)
			f.RuleTitle = "Very long sentence"
			f.Why = "This sentence is very long (approximately " + strconv.Itoa(words) +
				" words), which can make it hard to read and interpret."
			f.Suggestion = "Consider breaking this sentence into shorter sentences or using sub-paragraphs to improve clarity."
			f.LocationLabel = "Long sentence"
			out = append(out, f)
		}
		return out
	})

// countOccurrences counts substring hits, advancing one byte after each hit.
func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; ; {
		j := strings.Index(s[i:], sub)
		if j < 0 {
			return n
		}
		n++
		i += j + 1
	}
}

var conditionalDensity = New("R-602", "Heavy use of conditional phrases",
	finding.SeverityMedium, finding.CategoryClarity,
	func(text string) []finding.Finding {
		var out []finding.Finding
		for _, s := range textscan.Sentences(text) {
			lowered := strings.ToLower(s.Text)
			total := 0
			for _, phrase := range conditionalPhrases {
				total += countOccurrences(lowered, phrase)
			}
			if total < conditionalThreshold {
				continue
			}
			f := sentenceFinding(s)
			f.RuleTitle = "Sentence with many conditional phrases"
			f.Why = "This sentence contains several conditional phrases (for example, 'provided that', 'subject to', 'notwithstanding'), which can make the operative effect difficult to follow."
			f.Suggestion = "Consider simplifying the structure, moving some conditions into separate sub-paragraphs, or using clearer signposting for each condition."
			f.LocationLabel = "Complex conditional sentence"
			out = append(out, f)
		}
		return out
	})

var soleAndAbsoluteDiscretion = New("R-603", "'Sole and absolute discretion' phrasing",
	finding.SeverityLow, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		var out []finding.Finding
		for _, loc := range soleDiscretion.FindAllStringIndex(text, -1) {
			f := at(text, loc[0], loc[1])
			f.Why = "The phrase 'sole and absolute discretion' is very one-sided and may be viewed as aggressive or unreasonable depending on the context."
			f.Suggestion = "Consider whether a softer formulation (for example, 'reasonable discretion' or adding objective criteria) would be more appropriate, or confirm that this level of discretion is a deliberate risk allocation."
			f.LocationLabel = "Discretion clause"
			out = append(out, f)
		}
		return out
	})
