package rules

import (
	"reflect"
	"testing"
)

func TestCatalogueOrder(t *testing.T) {
	all := Catalogue()
	if all[0].ID() != "R-102" || all[1].ID() != "R-1201" || all[2].ID() != "R-201" {
		t.Errorf("catalogue should start R-102, R-1201, R-201; got %s, %s, %s", all[0].ID(), all[1].ID(), all[2].ID())
	}
	if last := all[len(all)-1].ID(); last != "R-1101" {
		t.Errorf("last rule = %s", last)
	}
	for _, r := range all {
		if r.ID() == "R-101" {
			t.Error("aggregate placeholder rule should not be catalogued")
		}
	}
	if len(all) != 2+len(requiredSections)+len(placeholderPatterns)+12 {
		t.Errorf("catalogue size = %d", len(all))
	}
}

func TestCatalogueIsCopied(t *testing.T) {
	a := Catalogue()
	a[0] = nil
	if Catalogue()[0] == nil {
		t.Error("mutating the returned slice should not affect the catalogue")
	}
}

func TestPacks(t *testing.T) {
	packs := Packs()
	var keys, labels []string
	for _, p := range packs {
		keys = append(keys, p.Key)
		labels = append(labels, p.Label)
	}
	if !reflect.DeepEqual(keys, []string{"core", "definitions", "crossrefs", "clarity"}) {
		t.Errorf("keys = %v", keys)
	}
	if !reflect.DeepEqual(labels, []string{"Core", "Definitions", "Cross-refs", "Clarity"}) {
		t.Errorf("labels = %v", labels)
	}

	core, _ := LookupPack(PackCore)
	ids := core.RuleIDs()
	if ids[0] != "R-101" || ids[1] != "R-102" {
		t.Errorf("core pack should lead with R-101, R-102; got %v", ids[:2])
	}
	for _, missing := range []string{"R-205", "R-206", "R-214", "R-701"} {
		for _, id := range ids {
			if id == missing {
				t.Errorf("unknown id %s should be skipped", missing)
			}
		}
	}

	clarity, _ := LookupPack(PackClarity)
	if !reflect.DeepEqual(clarity.RuleIDs(), []string{"R-601", "R-602", "R-603"}) {
		t.Errorf("clarity = %v", clarity.RuleIDs())
	}
}

func TestResolveUnknownPack(t *testing.T) {
	got := Resolve("nope")
	if got == nil || len(got) != 0 {
		t.Errorf("unknown key should resolve to an empty list, got %v", got)
	}
}

func TestBuildPacks_RemovingRuleOnlyAffectsItsPacks(t *testing.T) {
	full := BuildPacks(Catalogue())

	var reduced []Rule
	for _, r := range Catalogue() {
		if r.ID() != "R-401" {
			reduced = append(reduced, r)
		}
	}
	trimmed := BuildPacks(reduced)

	for i := range full {
		if full[i].Key == PackCrossRefs {
			if len(trimmed[i].Rules) != 0 {
				t.Errorf("crossrefs should be empty, got %v", trimmed[i].RuleIDs())
			}
			continue
		}
		if !reflect.DeepEqual(full[i].RuleIDs(), trimmed[i].RuleIDs()) {
			t.Errorf("pack %s changed: %v -> %v", full[i].Key, full[i].RuleIDs(), trimmed[i].RuleIDs())
		}
	}
}

func TestByID(t *testing.T) {
	if _, ok := ByID("R-101"); !ok {
		t.Error("R-101 should be addressable")
	}
	if _, ok := ByID("R-205"); ok {
		t.Error("R-205 does not exist")
	}
}
