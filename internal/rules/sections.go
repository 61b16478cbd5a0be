package rules

import (
	"regexp"

	"github.com/dgallion1/clausecheck/internal/finding"
)

// requiredSection is one row of the required-section table. Adding a section
// check is a data change only.
type requiredSection struct {
	ID       string
	Title    string
	Severity finding.Severity
	Label    string
	Pattern  *regexp.Regexp
}

var requiredSections = []requiredSection{
	{"R-201", "Missing 'Interpretation' section", finding.SeverityMedium, "Interpretation", regexp.MustCompile(`(?i)\bInterpretation\b`)},
	{"R-202", "Missing 'Definitions' section", finding.SeverityMedium, "Definitions", regexp.MustCompile(`(?i)\bDefinitions?\b`)},
	{"R-203", "Missing 'Conditions Precedent' section", finding.SeverityHigh, "Conditions Precedent", regexp.MustCompile(`(?i)\bConditions? Precedent\b`)},
	{"R-204", "Missing 'Payment Terms' section", finding.SeverityHigh, "Payment Terms", regexp.MustCompile(`(?i)\bPayment Terms?\b`)},
	{"R-207", "Missing 'Fees' section", finding.SeverityMedium, "Fees", regexp.MustCompile(`(?i)\bFees?\b`)},
	{"R-208", "Missing 'Representations and Warranties' section", finding.SeverityHigh, "Representations and Warranties", regexp.MustCompile(`(?i)\bRepresentations? and Warranties\b`)},
	{"R-209", "Missing 'Covenants' section", finding.SeverityMedium, "Covenants", regexp.MustCompile(`(?i)\bCovenants\b`)},
	{"R-210", "Missing 'Events of Default' section", finding.SeverityHigh, "Events of Default", regexp.MustCompile(`(?i)\bEvents? of Default\b`)},
	{"R-211", "Missing 'Governing Law' section", finding.SeverityHigh, "Governing Law", regexp.MustCompile(`(?i)\bGoverning Law\b`)},
	{"R-212", "Missing 'Notices' section", finding.SeverityMedium, "Notices", regexp.MustCompile(`(?i)\bNotices\b`)},
	{"R-213", "Missing 'Assignment and Transfer' section", finding.SeverityMedium, "Assignment and Transfer", regexp.MustCompile(`(?i)\bAssignment and Transfer\b`)},
	{"R-215", "Missing 'Indemnity' section", finding.SeverityMedium, "Indemnity", regexp.MustCompile(`(?i)\bIndemnity\b`)},
	{"R-216", "Missing 'Costs and Expenses' section", finding.SeverityMedium, "Costs and Expenses", regexp.MustCompile(`(?i)\bCosts? and Expenses\b`)},
	{"R-217", "Missing 'Confidentiality' section", finding.SeverityMedium, "Confidentiality", regexp.MustCompile(`(?i)\bConfidentiality\b`)},
	{"R-218", "Missing 'Liability' section", finding.SeverityMedium, "Liability", regexp.MustCompile(`(?i)\bLiabilit(?:y|ies)\b`)},
	{"R-219", "Missing 'Jurisdiction' section", finding.SeverityMedium, "Jurisdiction", regexp.MustCompile(`(?i)\bJurisdiction\b`)},
	{"R-220", "Missing 'Termination' section", finding.SeverityHigh, "Termination", regexp.MustCompile(`(?i)\bTermination\b`)},
}

// requiredSectionRules maps the table through one constructor: a pattern
// found anywhere means the section is present, otherwise one document-level
// finding names it.
func requiredSectionRules(rows []requiredSection) []Rule {
	out := make([]Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, New(row.ID, row.Title, row.Severity, finding.CategoryStructural,
			func(text string) []finding.Finding {
				if row.Pattern.MatchString(text) {
					return nil
				}
				f := whole(row.Label)
				f.Why = "The document does not appear to contain a clearly labeled '" + row.Label +
					"' section, which is typically expected in a well-structured agreement."
				f.Suggestion = "Add a '" + row.Label +
					"' section with appropriate wording or confirm that its content is clearly covered elsewhere in the document."
				f.LocationLabel = "Whole document"
				return []finding.Finding{f}
			}))
	}
	return out
}
