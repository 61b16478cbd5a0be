package rules

import (
	"strconv"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
)

const commercialPlaceholder = "[●]"

// unresolvedPlaceholder reports every literal "[●]" as one aggregate finding,
// anchored on the first occurrence. The R-301 family reports them one by one.
var unresolvedPlaceholder = New("R-101", "Unresolved commercial placeholder",
	finding.SeverityHigh, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		first := strings.Index(text, commercialPlaceholder)
		if first < 0 {
			return nil
		}
		count := strings.Count(text, commercialPlaceholder)

		f := at(text, first, first+len(commercialPlaceholder))
		if count == 1 {
			f.Why = "The document contains an unresolved commercial placeholder '[●]', which should be replaced with an agreed figure or term before signing."
		} else {
			f.Why = "The document contains an unresolved commercial placeholder '[●]' which appears " +
				strconv.Itoa(count) + " times; each occurrence should be replaced with an agreed figure or term before signing."
			f.LocationLabel = "Appears " + strconv.Itoa(count) + " times in the document"
		}
		f.Suggestion = "Replace each '[●]' with the final agreed amount, date, or term and ensure all parties review and approve the completed provisions before execution."
		return []finding.Finding{f}
	})

var missingGoverningLaw = New("R-102", "Missing governing law clause",
	finding.SeverityMedium, finding.CategoryStructural,
	func(text string) []finding.Finding {
		if strings.Contains(strings.ToLower(text), "governing law") {
			return nil
		}
		f := whole("Governing law")
		f.Why = "The document does not contain a governing law clause, leaving uncertainty about which jurisdiction's laws apply to the agreement."
		f.Suggestion = "Add a clear governing law clause specifying the jurisdiction (for example, 'This Agreement is governed by and construed in accordance with the laws of [Jurisdiction]')."
		return []finding.Finding{f}
	})

// UnresolvedPlaceholder returns the aggregate "[●]" rule. It is not part of
// the catalogue; the core pack adds it explicitly.
func UnresolvedPlaceholder() Rule { return unresolvedPlaceholder }
