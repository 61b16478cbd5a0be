package rules

import "sync"

// Pack keys.
const (
	PackCore        = "core"
	PackDefinitions = "definitions"
	PackCrossRefs   = "crossrefs"
	PackClarity     = "clarity"
)

// Pack is a named, ordered selection from the catalogue.
type Pack struct {
	Key   string
	Label string
	Rules []Rule
}

// RuleIDs lists the pack's rule ids in order.
func (p Pack) RuleIDs() []string {
	ids := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		ids[i] = r.ID()
	}
	return ids
}

type packDef struct {
	key   string
	label string
	ids   []string
}

// Ids absent from the catalogue (R-205, R-206, R-214, R-701 today) are
// skipped when a pack is built.
var packDefs = []packDef{
	{PackCore, "Core", []string{
		"R-102",
		"R-201", "R-202", "R-203", "R-204", "R-205", "R-206", "R-207", "R-208", "R-209", "R-210",
		"R-211", "R-212", "R-213", "R-215", "R-216", "R-217", "R-218", "R-219", "R-220",
		"R-701", "R-702", "R-801", "R-802", "R-901", "R-1001", "R-1101", "R-1201",
		"R-301", "R-302", "R-303", "R-304", "R-305", "R-306", "R-307", "R-308", "R-309", "R-310", "R-311",
	}},
	{PackDefinitions, "Definitions", []string{"R-501", "R-502"}},
	{PackCrossRefs, "Cross-refs", []string{"R-401"}},
	{PackClarity, "Clarity", []string{"R-601", "R-602", "R-603"}},
}

// BuildPacks resolves the pack id lists against catalogue. The core pack
// always leads with the aggregate placeholder rule.
func BuildPacks(catalogue []Rule) []Pack {
	byID := indexByID(catalogue)
	packs := make([]Pack, 0, len(packDefs))
	for _, def := range packDefs {
		p := Pack{Key: def.key, Label: def.label}
		if def.key == PackCore {
			p.Rules = append(p.Rules, unresolvedPlaceholder)
		}
		for _, id := range def.ids {
			if r, ok := byID[id]; ok {
				p.Rules = append(p.Rules, r)
			}
		}
		packs = append(packs, p)
	}
	return packs
}

var builtinPacks = sync.OnceValue(func() []Pack {
	return BuildPacks(catalogue())
})

// Packs returns the built-in packs in display order.
func Packs() []Pack {
	all := builtinPacks()
	out := make([]Pack, len(all))
	copy(out, all)
	return out
}

// LookupPack finds a built-in pack by key.
func LookupPack(key string) (Pack, bool) {
	for _, p := range builtinPacks() {
		if p.Key == key {
			return p, true
		}
	}
	return Pack{}, false
}

// Resolve returns the rules of the pack named key, or an empty list when the
// key is unknown.
func Resolve(key string) []Rule {
	p, ok := LookupPack(key)
	if !ok {
		return []Rule{}
	}
	out := make([]Rule, len(p.Rules))
	copy(out, p.Rules)
	return out
}
