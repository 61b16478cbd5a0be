package rules

import (
	"regexp"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

var (
	clauseOrSectionRef = regexp.MustCompile(`(?i)\b(clause|section)\s+(\d+(?:\.\d+)*)\b`)
	scheduleRef        = regexp.MustCompile(`(?i)\bSchedule\s+(\d+)\b`)
)

// headingIndex answers "does a heading for this target exist?" for one text,
// compiling each distinct heading pattern once.
type headingIndex struct {
	text  string
	cache map[string]bool
}

func (h *headingIndex) exists(pattern string) bool {
	if found, ok := h.cache[pattern]; ok {
		return found
	}
	found := regexp.MustCompile(pattern).MatchString(h.text)
	h.cache[pattern] = found
	return found
}

// clauseHeading matches "<label> <n>" or a bare "<n>" at the start of a line.
func clauseHeading(label, number string) string {
	return `(?i)(^|\n)\s*(?:` + textscan.Escape(label) + `\s+)?` + textscan.Escape(number) + `\b`
}

func scheduleHeading(number string) string {
	return `(?i)(^|\n)\s*SCHEDULE\s+` + textscan.Escape(number) + `\b`
}

// crossReferences flags every clause, section or schedule reference whose
// target has no heading. Repeated references to the same missing target are
// reported individually.
var crossReferences = New("R-401", "Broken cross-references",
	finding.SeverityMedium, finding.CategoryCrossReference,
	func(text string) []finding.Finding {
		idx := &headingIndex{text: text, cache: make(map[string]bool)}
		var out []finding.Finding

		for _, m := range clauseOrSectionRef.FindAllStringSubmatchIndex(text, -1) {
			label := text[m[2]:m[3]]
			number := text[m[4]:m[5]]
			if idx.exists(clauseHeading(strings.ToLower(label), number)) {
				continue
			}
			f := at(text, m[0], m[1])
			f.RuleTitle = "Reference to non-existent clause or section"
			f.Why = "The document refers to " + label + " " + number +
				", but no corresponding heading or clause number could be found. This may indicate a broken or outdated cross-reference."
			f.Suggestion = "Either insert a clause or section numbered " + number +
				", or update this reference to point to the correct provision."
			f.LocationLabel = label + " " + number + " reference"
			out = append(out, f)
		}

		for _, m := range scheduleRef.FindAllStringSubmatchIndex(text, -1) {
			number := text[m[2]:m[3]]
			if idx.exists(scheduleHeading(number)) {
				continue
			}
			f := at(text, m[0], m[1])
			f.RuleTitle = "Reference to non-existent schedule"
			f.Why = "The document refers to Schedule " + number +
				", but no corresponding schedule heading could be found. This may indicate a broken or outdated cross-reference."
			f.Suggestion = "Either insert a schedule numbered " + number +
				", or update this reference to point to the correct schedule."
			f.LocationLabel = "Schedule " + number + " reference"
			out = append(out, f)
		}
		return out
	})
