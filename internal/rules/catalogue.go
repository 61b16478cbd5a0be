package rules

import "sync"

var catalogue = sync.OnceValue(func() []Rule {
	var all []Rule
	all = append(all, missingGoverningLaw, unilateralAmendment)
	all = append(all, requiredSectionRules(requiredSections)...)
	all = append(all, placeholderRules(placeholderPatterns)...)
	all = append(all,
		crossReferences,
		duplicateDefinitions,
		undefinedCapitalisedTerms,
		longSentences,
		conditionalDensity,
		soleAndAbsoluteDiscretion,
		covenantTestingFrequency,
		sanctionsDefinitions,
		proceedsSanctionsCarveOut,
		benchmarkReplacement,
		businessDayConvention,
		negativePledgeScope,
	)
	return all
})

var catalogueIndex = sync.OnceValue(func() map[string]Rule {
	return indexByID(catalogue())
})

// Catalogue returns every catalogued rule in evaluation order. The aggregate
// placeholder rule (see UnresolvedPlaceholder) is not catalogued.
func Catalogue() []Rule {
	all := catalogue()
	out := make([]Rule, len(all))
	copy(out, all)
	return out
}

// ByID looks up a catalogued rule, falling back to the aggregate placeholder
// rule so every rule a pack can contain is addressable.
func ByID(id string) (Rule, bool) {
	if r, ok := catalogueIndex()[id]; ok {
		return r, true
	}
	if id == unresolvedPlaceholder.ID() {
		return unresolvedPlaceholder, true
	}
	return nil, false
}

func indexByID(rules []Rule) map[string]Rule {
	m := make(map[string]Rule, len(rules))
	for _, r := range rules {
		m[r.ID()] = r
	}
	return m
}
