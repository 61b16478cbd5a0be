// Package textscan holds the small text utilities shared by the rule engine
// and the document comparison: sentence spans, defined-term extraction and
// paragraph helpers. All offsets are byte offsets into the input string.
package textscan

import (
	"regexp"
	"strings"
)

var (
	sentenceRe   = regexp.MustCompile(`[^.?!]+[.?!]`)
	definitionRe = regexp.MustCompile(`(?i)["“](.+?)["”]\s+means\b`)
	paragraphRe  = regexp.MustCompile(`\n\s*\n`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Sentence is a trimmed sentence with the offsets of its untrimmed match.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Sentences splits text into runs terminated by '.', '?' or '!'.
// There is no abbreviation handling: "e.g. this" yields two sentences.
// Text after the last terminator is not a sentence.
func Sentences(text string) []Sentence {
	if text == "" {
		return nil
	}
	var out []Sentence
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		trimmed := strings.TrimSpace(text[loc[0]:loc[1]])
		if trimmed == "" {
			continue
		}
		out = append(out, Sentence{Text: trimmed, Start: loc[0], End: loc[1]})
	}
	return out
}

// Escape quotes s for literal use inside a dynamically built pattern.
func Escape(s string) string {
	return regexp.QuoteMeta(s)
}

// NormalizeWhitespace collapses whitespace runs to one space and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Paragraphs splits text on blank lines.
func Paragraphs(text string) []string {
	return paragraphRe.Split(text, -1)
}

// FirstParagraphMatching returns the first paragraph matching re, trimmed.
func FirstParagraphMatching(text string, re *regexp.Regexp) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, p := range Paragraphs(text) {
		if re.MatchString(p) {
			return strings.TrimSpace(p), true
		}
	}
	return "", false
}

// Occurrence is one `"Term" means` match.
type Occurrence struct {
	Index       int
	MatchedText string
}

// Definition groups every occurrence of a term under its first spelling.
type Definition struct {
	Term        string
	Occurrences []Occurrence
}

// Definitions maps lower-cased terms to their occurrences, remembering the
// order in which terms were first seen.
type Definitions struct {
	keys  []string
	byKey map[string]*Definition
}

// Keys returns lower-cased terms in first-seen order.
func (d *Definitions) Keys() []string { return d.keys }

// Get returns the definition for a lower-cased key.
func (d *Definitions) Get(key string) (*Definition, bool) {
	def, ok := d.byKey[key]
	return def, ok
}

// Has reports whether key (lower-cased) was defined.
func (d *Definitions) Has(key string) bool {
	_, ok := d.byKey[key]
	return ok
}

// Len returns the number of distinct terms.
func (d *Definitions) Len() int { return len(d.keys) }

// ExtractDefinitions scans text for `"Term" means` constructs, accepting
// straight or curly quotes, case-insensitively. The result is built fresh on
// every call.
func ExtractDefinitions(text string) *Definitions {
	defs := &Definitions{byKey: make(map[string]*Definition)}
	if text == "" {
		return defs
	}
	for _, m := range definitionRe.FindAllStringSubmatchIndex(text, -1) {
		term := strings.TrimSpace(text[m[2]:m[3]])
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		def, ok := defs.byKey[key]
		if !ok {
			def = &Definition{Term: term}
			defs.byKey[key] = def
			defs.keys = append(defs.keys, key)
		}
		def.Occurrences = append(def.Occurrences, Occurrence{
			Index:       m[0],
			MatchedText: text[m[0]:m[1]],
		})
	}
	return defs
}
