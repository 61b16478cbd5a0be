package rules

import (
	"regexp"

	"github.com/dgallion1/clausecheck/internal/finding"
)

type placeholderPattern struct {
	ID       string
	Title    string
	Severity finding.Severity
	Category finding.Category
	Pattern  *regexp.Regexp
	Label    string
}

var placeholderPatterns = []placeholderPattern{
	{"R-301", "Unresolved [●] placeholder", finding.SeverityHigh, finding.CategoryCommercialRisk, regexp.MustCompile(`\[\s*●\s*\]`), "[●]"},
	{"R-302", "TBD placeholder", finding.SeverityHigh, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bTBD\b`), "TBD"},
	{"R-303", "TO BE INSERTED placeholder", finding.SeverityHigh, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bTO BE INSERTED\b`), "TO BE INSERTED"},
	{"R-304", "TO BE AGREED placeholder", finding.SeverityHigh, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bTO BE AGREED\b`), "TO BE AGREED"},
	{"R-305", "INSERT ... placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bINSERT\b[^.]{0,80}`), "INSERT ..."},
	{"R-306", "Angle bracket placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`<<[^>]+>>`), "<<...>>"},
	{"R-307", "Underscore line placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`_{5,}`), "________"},
	{"R-308", "XXX placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bX{3,}\b`), "XXX"},
	{"R-309", "TO COME placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\bTO COME\b`), "TO COME"},
	{"R-310", "DRAFTING NOTE marker", finding.SeverityLow, finding.CategoryClarity, regexp.MustCompile(`(?i)\bDRAFT(?:ING)? NOTE\b`), "DRAFTING NOTE"},
	{"R-311", "Instructional bracket placeholder", finding.SeverityMedium, finding.CategoryCommercialRisk, regexp.MustCompile(`(?i)\[[^\]]*to be (?:completed|inserted|agreed)[^\]]*\]`), "[to be completed]"},
}

// placeholderRules yields one point finding per match; no match, no finding.
func placeholderRules(rows []placeholderPattern) []Rule {
	out := make([]Rule, 0, len(rows))
	for _, row := range rows {
		why := "The document contains a placeholder ('" + row.Label +
			"') that should be replaced with final, agreed wording before execution."
		out = append(out, New(row.ID, row.Title, row.Severity, row.Category,
			func(text string) []finding.Finding {
				var out []finding.Finding
				for _, loc := range row.Pattern.FindAllStringIndex(text, -1) {
					f := at(text, loc[0], loc[1])
					f.Why = why
					f.Suggestion = "Replace this placeholder with the final agreed detail (for example, amounts, dates, party names, or bespoke drafting), or remove it if no longer required."
					out = append(out, f)
				}
				return out
			}))
	}
	return out
}
