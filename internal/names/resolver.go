package names

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Rule maps a key fragment to the canonical club name. Matching is a
// case-insensitive substring check, so rule order matters: more specific
// keys ("Stuttg. Kickers") must come before general ones ("Stuttgart")
// that would otherwise shadow them.
type Rule struct {
	Key       string `json:"key"`
	Canonical string `json:"canonical"`
}

// SeasonOverride renames a canonical club from a given season onward.
// Clubs occasionally rebrand (Meidericher SV became MSV Duisburg in
// 1966/67); standings must aggregate the whole history under one name.
type SeasonOverride struct {
	Canonical  string `json:"canonical"`
	FromSeason string `json:"from_season"`
	Renamed    string `json:"renamed"`
}

// Resolver turns noisy scraped name fragments into canonical club names.
// It is pure data plus a lookup; the rule table is injected, never
// hard-coded into branches.
type Resolver struct {
	rules     []Rule
	overrides []SeasonOverride
}

// NewResolver builds a resolver from an ordered rule table.
func NewResolver(rules []Rule, overrides []SeasonOverride) *Resolver {
	return &Resolver{rules: rules, overrides: overrides}
}

// ruleFile is the on-disk shape consumed by LoadRules.
type ruleFile struct {
	Rules     []Rule           `json:"rules"`
	Overrides []SeasonOverride `json:"overrides"`
}

// LoadRules reads a JSON rule table. The file order is the match order.
func LoadRules(r io.Reader) (*Resolver, error) {
	var f ruleFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding name rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("name rule table is empty")
	}
	return NewResolver(f.Rules, f.Overrides), nil
}

// Resolve returns the canonical name for a raw fragment. The first rule
// whose key is a case-insensitive substring of the fragment wins. A false
// result means the fragment is unresolvable and the caller must discard
// the candidate rather than guess.
func (rs *Resolver) Resolve(fragment string) (string, bool) {
	lower := strings.ToLower(fragment)
	for _, r := range rs.rules {
		if strings.Contains(lower, strings.ToLower(r.Key)) {
			return r.Canonical, true
		}
	}
	return "", false
}

// ResolveForSeason resolves a fragment and then folds season-scoped
// renames: if the resolved club was renamed at or before the given
// season, the later name is returned.
func (rs *Resolver) ResolveForSeason(fragment, season string) (string, bool) {
	name, ok := rs.Resolve(fragment)
	if !ok {
		return "", false
	}
	return rs.Fold(name, season), true
}

// Fold applies season overrides to an already-canonical name. Season
// tokens ("1966/67") compare lexically, which holds for the league's
// season range.
func (rs *Resolver) Fold(canonical, season string) string {
	for _, o := range rs.overrides {
		if o.Canonical == canonical && season >= o.FromSeason {
			return o.Renamed
		}
	}
	return canonical
}

// FoldAll maps every historical alias of a club to its current canonical
// name, regardless of season. Used by the all-time table, where a club's
// entire history must land in one row.
func (rs *Resolver) FoldAll(canonical string) string {
	for _, o := range rs.overrides {
		if o.Canonical == canonical {
			return o.Renamed
		}
	}
	return canonical
}
