package names

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		fragment string
		want     string
		ok       bool
	}{
		{"Bayern", "FC Bayern München", true},
		{"FC Bayern München", "FC Bayern München", true},
		{"  bayern (1.) ", "FC Bayern München", true},
		{"M'gladbach", "Borussia Mönchengladbach", true},
		{"Gladbach", "Borussia Mönchengladbach", true},
		{"Schalke 04", "FC Schalke 04", true},
		{"Schalke", "FC Schalke 04", true},
		{"Stuttg. Kickers", "Stuttgarter Kickers", true},
		{"Stuttgart", "VfB Stuttgart", true},
		{"K'lautern", "1.FC Kaiserslautern", true},
		{"1. FC Kaiserslautern", "1.FC Kaiserslautern", true},
		{"Union Berlin", "1. FC Union Berlin", true},
		{"St. Pauli", "FC St. Pauli", true},
		{"Real Madrid", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := r.Resolve(tt.fragment)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.fragment, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveIgnoresSurroundingNoise(t *testing.T) {
	r := Default()
	// A known key must resolve to the same canonical name no matter what
	// noise surrounds it in the scraped fragment.
	noisy := []string{
		"Freiburg",
		"SC Freiburg (7.)",
		"| Freiburg |",
		"xx FREIBURG xx",
	}
	for _, frag := range noisy {
		got, ok := r.Resolve(frag)
		if !ok || got != "SC Freiburg" {
			t.Errorf("Resolve(%q) = (%q, %v), want (SC Freiburg, true)", frag, got, ok)
		}
	}
}

func TestResolveForSeason(t *testing.T) {
	r := Default()

	tests := []struct {
		fragment string
		season   string
		want     string
	}{
		// Pre-rename seasons keep the era-correct name.
		{"Meidericher SV", "1963/64", "Meidericher SV"},
		{"Meiderich", "1965/66", "Meidericher SV"},
		// From 1966/67 on the club is MSV Duisburg.
		{"Meidericher SV", "1966/67", "MSV Duisburg"},
		{"Meiderich", "2024/25", "MSV Duisburg"},
		{"Duisburg", "1999/00", "MSV Duisburg"},
	}

	for _, tt := range tests {
		got, ok := r.ResolveForSeason(tt.fragment, tt.season)
		if !ok || got != tt.want {
			t.Errorf("ResolveForSeason(%q, %q) = (%q, %v), want %q", tt.fragment, tt.season, got, ok, tt.want)
		}
	}
}

func TestFoldAll(t *testing.T) {
	r := Default()
	if got := r.FoldAll("Meidericher SV"); got != "MSV Duisburg" {
		t.Errorf("FoldAll(Meidericher SV) = %q, want MSV Duisburg", got)
	}
	if got := r.FoldAll("Hamburger SV"); got != "Hamburger SV" {
		t.Errorf("FoldAll(Hamburger SV) = %q, want unchanged", got)
	}
}

func TestLoadRules(t *testing.T) {
	src := `{
		"rules": [
			{"key": "Schalke 04", "canonical": "FC Schalke 04"},
			{"key": "Schalke", "canonical": "FC Schalke 04"}
		],
		"overrides": [
			{"canonical": "Meidericher SV", "from_season": "1966/67", "renamed": "MSV Duisburg"}
		]
	}`

	r, err := LoadRules(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if got, ok := r.Resolve("FC Schalke 04"); !ok || got != "FC Schalke 04" {
		t.Errorf("Resolve after load = (%q, %v)", got, ok)
	}
	if got := r.Fold("Meidericher SV", "1970/71"); got != "MSV Duisburg" {
		t.Errorf("Fold after load = %q", got)
	}
}

func TestLoadRulesEmpty(t *testing.T) {
	if _, err := LoadRules(strings.NewReader(`{"rules": []}`)); err == nil {
		t.Fatal("expected error for empty rule table")
	}
}
