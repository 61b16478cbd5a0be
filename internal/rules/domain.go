package rules

import (
	"regexp"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

// Loan-agreement risk heuristics. Apart from R-1201 each is a document-level
// presence/absence test that yields at most one finding.

var (
	amendmentTerm     = regexp.MustCompile(`(?i)(amend|amendment|vary|variation|replace|modif(?:y|ication))`)
	unilateralRisk    = regexp.MustCompile(`(?i)unilaterally|without\s+the?\s+consent|for any reason or no reason|sole( and absolute)? discretion`)
	covenantTesting   = regexp.MustCompile(`(?i)tested|testing|test dates?`)
	covenantFrequency = regexp.MustCompile(`(?i)quarterly|semi-annual|semiannual|annually|annual`)
	sanctionsConcept  = regexp.MustCompile(`(?i)sanction|ofac|eu sanctions`)
	sanctionWord      = regexp.MustCompile(`(?i)sanction`)
	sanctionedPerson  = regexp.MustCompile(`(?i)"Sanctioned Person"`)
	sanctionedCountry = regexp.MustCompile(`(?i)"Sanctioned Country"`)
	purposeHeading    = regexp.MustCompile(`(?i)\bPurpose\b`)
	screenRate        = regexp.MustCompile(`(?i)Screen Rate`)
	referenceRate     = regexp.MustCompile(`(?i)SONIA|SOFR|LIBOR|base rate`)
	benchmarkFallback = regexp.MustCompile(`(?i)Replacement of Screen Rate|Benchmark Replacement`)
	benchmarkAnchor   = regexp.MustCompile(`(?i)Screen Rate|SONIA|SOFR|LIBOR`)
	businessDay       = regexp.MustCompile(`(?i)Business Day`)
	dayConvention     = regexp.MustCompile(`(?i)Business Day Convention|following Business Day|preceding Business Day`)
	negativePledge    = regexp.MustCompile(`(?i)Negative Pledge`)
	securityRestrict  = regexp.MustCompile(`(?i)shall not\s+(create|grant)\s+any\s+Security`)
	groupScope        = regexp.MustCompile(`(?i)Subsidiar|Group\b`)
)

var financialCovenantTerms = []string{
	"Leverage Ratio",
	"Interest Cover",
	"Interest Coverage Ratio",
	"DSCR",
	"Debt Service Coverage Ratio",
}

// anchored returns a finding on the first match of re, or a document-level
// finding labelled fallback when re does not match.
func anchored(text string, re *regexp.Regexp, fallback string) finding.Finding {
	if loc := re.FindStringIndex(text); loc != nil {
		return at(text, loc[0], loc[1])
	}
	return whole(fallback)
}

var unilateralAmendment = New("R-1201", "Unilateral amendment without counterparty consent",
	finding.SeverityHigh, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		var out []finding.Finding
		for _, s := range textscan.Sentences(text) {
			lowered := strings.ToLower(s.Text)
			if !amendmentTerm.MatchString(lowered) || !unilateralRisk.MatchString(lowered) {
				continue
			}
			f := sentenceFinding(s)
			f.Why = "This clause appears to allow one party to amend, vary or replace provisions of the Agreement unilaterally or without the other party's consent, which is a highly one-sided allocation of risk."
			f.Suggestion = "Consider requiring mutual written agreement for amendments, or at least limiting any unilateral amendment right to narrow, objectively defined circumstances (for example, to correct manifest errors or to comply with mandatory law)."
			f.LocationLabel = "Amendment / variation clause"
			out = append(out, f)
		}
		return out
	})

var covenantTestingFrequency = New("R-702", "Financial covenant testing frequency unclear",
	finding.SeverityMedium, finding.CategoryClarity,
	func(text string) []finding.Finding {
		lowered := strings.ToLower(text)
		mentioned := false
		for _, term := range financialCovenantTerms {
			if strings.Contains(lowered, strings.ToLower(term)) {
				mentioned = true
				break
			}
		}
		if !mentioned {
			return nil
		}
		if covenantTesting.MatchString(text) && covenantFrequency.MatchString(text) {
			return nil
		}

		// Anchor on the first listed term present with its exact casing.
		var f finding.Finding
		anchoredOn := false
		for _, term := range financialCovenantTerms {
			if i := strings.Index(text, term); i >= 0 {
				f = at(text, i, i+len(term))
				anchoredOn = true
				break
			}
		}
		if !anchoredOn {
			f = finding.Finding{
				MatchedText: "Financial covenant",
				Start:       finding.Offset(0),
				End:         finding.Offset(min(20, len(text))),
			}
		}
		f.Why = "The agreement refers to one or more financial covenants but does not clearly specify how often they are tested (for example, quarterly on a rolling 12‑month basis)."
		f.Suggestion = "Add clear testing mechanics for each financial covenant, including the test dates (e.g. quarterly), the testing period (e.g. rolling 12 months) and who performs the calculation."
		f.LocationLabel = "Financial covenants"
		return []finding.Finding{f}
	})

var sanctionsDefinitions = New("R-801", "Sanctions definitions missing",
	finding.SeverityHigh, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		if !sanctionsConcept.MatchString(text) {
			return nil
		}
		if sanctionedPerson.MatchString(text) && sanctionedCountry.MatchString(text) {
			return nil
		}
		f := anchored(text, sanctionWord, "sanctions")
		f.Why = "The agreement refers to sanctions concepts but does not clearly define 'Sanctioned Person' and/or 'Sanctioned Country', which can create uncertainty for compliance and enforcement."
		f.Suggestion = "Add precise definitions of 'Sanctioned Person' and 'Sanctioned Country' (or equivalent terms) and ensure they are used consistently in the sanctions undertakings and events of default."
		f.LocationLabel = "Sanctions wording"
		return []finding.Finding{f}
	})

var proceedsSanctionsCarveOut = New("R-802", "Use of proceeds sanctions carve-out missing",
	finding.SeverityMedium, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		if !purposeHeading.MatchString(text) || sanctionsConcept.MatchString(text) {
			return nil
		}
		f := anchored(text, purposeHeading, "Purpose")
		f.Why = "The Purpose clause does not clearly state that proceeds may not be used in breach of applicable sanctions regimes (for example, OFAC or EU sanctions)."
		f.Suggestion = "Consider adding language to the Purpose or use of proceeds clauses confirming that no proceeds will be used in violation of applicable sanctions laws."
		f.LocationLabel = "Purpose clause"
		return []finding.Finding{f}
	})

var benchmarkReplacement = New("R-901", "Benchmark replacement mechanics missing",
	finding.SeverityMedium, finding.CategoryStructural,
	func(text string) []finding.Finding {
		if !screenRate.MatchString(text) && !referenceRate.MatchString(text) {
			return nil
		}
		if benchmarkFallback.MatchString(text) {
			return nil
		}
		f := anchored(text, benchmarkAnchor, "benchmark rate")
		f.Why = "The agreement references a screen or benchmark rate but does not include clear 'Replacement of Screen Rate' or similar mechanics in case that rate becomes unavailable."
		f.Suggestion = "Add benchmark fallback provisions (for example, a 'Replacement of Screen Rate' or 'Benchmark Replacement' clause) consistent with current market practice."
		f.LocationLabel = "Benchmark rate"
		return []finding.Finding{f}
	})

var businessDayConvention = New("R-1001", "Business Day convention missing",
	finding.SeverityMedium, finding.CategoryStructural,
	func(text string) []finding.Finding {
		if !businessDay.MatchString(text) || dayConvention.MatchString(text) {
			return nil
		}
		f := anchored(text, businessDay, "Business Day")
		f.Why = "The agreement defines 'Business Day' but does not clearly state how payment dates are adjusted when they fall on a non‑Business Day (for example, Following or Preceding Business Day conventions)."
		f.Suggestion = "Add a Business Day convention explaining how payment and interest calculation dates move when they fall on a non‑Business Day."
		f.LocationLabel = "Business Day definition / payments"
		return []finding.Finding{f}
	})

var negativePledgeScope = New("R-1101", "Negative pledge may not cover group",
	finding.SeverityMedium, finding.CategoryCommercialRisk,
	func(text string) []finding.Finding {
		hasHeading := negativePledge.MatchString(text)
		if !hasHeading && !securityRestrict.MatchString(text) {
			return nil
		}
		if groupScope.MatchString(text) {
			return nil
		}
		anchor := securityRestrict
		if hasHeading {
			anchor = negativePledge
		}
		f := anchored(text, anchor, "Negative pledge / Security restriction")
		f.Why = "The negative pledge wording appears to restrict only one party and does not clearly extend to its subsidiaries or group entities, which may allow asset leakage to other creditors."
		f.Suggestion = "Consider extending the negative pledge (or adding separate undertakings) so that it clearly covers the restricted party and its subsidiaries/group, subject to agreed exceptions."
		f.LocationLabel = "Negative pledge / Security undertakings"
		return []finding.Finding{f}
	})
