package names

// DefaultRules returns the built-in Bundesliga rule table. Order is
// significant: longer, more specific keys precede the short keys that
// would otherwise swallow them (e.g. "Stuttg. Kickers" before
// "Stuttgart", "Schalke 04" before "Schalke").
func DefaultRules() []Rule {
	return []Rule{
		{Key: "Stuttg. Kickers", Canonical: "Stuttgarter Kickers"},
		{Key: "St. Kickers", Canonical: "Stuttgarter Kickers"},
		{Key: "1. FC Kaiserslautern", Canonical: "1.FC Kaiserslautern"},
		{Key: "K'lautern", Canonical: "1.FC Kaiserslautern"},
		{Key: "Kaiserslautern", Canonical: "1.FC Kaiserslautern"},
		{Key: "TSV 1860", Canonical: "TSV 1860 München"},
		{Key: "Union Berlin", Canonical: "1. FC Union Berlin"},
		{Key: "TB Berlin", Canonical: "Tennis Borussia Berlin"},
		{Key: "Tasmania", Canonical: "Tasmania Berlin"},
		{Key: "Meidericher SV", Canonical: "Meidericher SV"},
		{Key: "Meiderich", Canonical: "Meidericher SV"},
		{Key: "Duisburg", Canonical: "MSV Duisburg"},
		{Key: "Schalke 04", Canonical: "FC Schalke 04"},
		{Key: "Schalke", Canonical: "FC Schalke 04"},
		{Key: "St. Pauli", Canonical: "FC St. Pauli"},
		{Key: "St Pauli", Canonical: "FC St. Pauli"},
		{Key: "M'gladbach", Canonical: "Borussia Mönchengladbach"},
		{Key: "Gladbach", Canonical: "Borussia Mönchengladbach"},
		{Key: "Bayern", Canonical: "FC Bayern München"},
		{Key: "Leipzig", Canonical: "RB Leipzig"},
		{Key: "Dortmund", Canonical: "Borussia Dortmund"},
		{Key: "Leverkusen", Canonical: "Bayer 04 Leverkusen"},
		{Key: "Frankfurt", Canonical: "Eintracht Frankfurt"},
		{Key: "Stuttgart", Canonical: "VfB Stuttgart"},
		{Key: "Heidenheim", Canonical: "1. FC Heidenheim"},
		{Key: "Wolfsburg", Canonical: "VfL Wolfsburg"},
		{Key: "Augsburg", Canonical: "1.FC Augsburg"},
		{Key: "Freiburg", Canonical: "SC Freiburg"},
		{Key: "Mainz", Canonical: "FSV Mainz 05"},
		{Key: "Hoffenheim", Canonical: "TSG Hoffenheim"},
		{Key: "Kiel", Canonical: "Holstein Kiel"},
		{Key: "Bochum", Canonical: "VfL Bochum"},
		{Key: "Hamburg", Canonical: "Hamburger SV"},
		{Key: "Köln", Canonical: "1. FC Köln"},
		{Key: "Bremen", Canonical: "SV Werder Bremen"},
		{Key: "Nürnberg", Canonical: "1. FC Nürnberg"},
		{Key: "Braunschweig", Canonical: "Eintracht Braunschweig"},
		{Key: "Karlsruhe", Canonical: "Karlsruher SC"},
		{Key: "Münster", Canonical: "Preußen Münster"},
		{Key: "Saarbrücken", Canonical: "1. FC Saarbrücken"},
		{Key: "Hertha", Canonical: "Hertha BSC"},
		{Key: "Hannover", Canonical: "Hannover 96"},
		{Key: "Neunkirchen", Canonical: "Borussia Neunkirchen"},
		{Key: "Essen", Canonical: "Rot-Weiss Essen"},
		{Key: "Offenbach", Canonical: "Kickers Offenbach"},
		{Key: "Oberhausen", Canonical: "Rot-Weiß Oberhausen"},
		{Key: "Bielefeld", Canonical: "Arminia Bielefeld"},
		{Key: "Uerdingen", Canonical: "KFC Uerdingen"},
		{Key: "Wattenscheid", Canonical: "SG Wattenscheid 09"},
		{Key: "Homburg", Canonical: "FC 08 Homburg"},
		{Key: "Dresden", Canonical: "Dynamo Dresden"},
		{Key: "Rostock", Canonical: "Hansa Rostock"},
		{Key: "Düsseldorf", Canonical: "Fortuna Düsseldorf"},
		{Key: "Unterhaching", Canonical: "SpVgg Unterhaching"},
		{Key: "Cottbus", Canonical: "Energie Cottbus"},
		{Key: "Fürth", Canonical: "SpVgg Greuther Fürth"},
		{Key: "Paderborn", Canonical: "SC Paderborn 07"},
		{Key: "Ingolstadt", Canonical: "FC Ingolstadt 04"},
		{Key: "Darmstadt", Canonical: "SV Darmstadt 98"},
		{Key: "Wuppertal", Canonical: "Wuppertaler SV"},
		{Key: "Mannheim", Canonical: "Waldhof Mannheim"},
	}
}

// DefaultOverrides returns the built-in season renames.
func DefaultOverrides() []SeasonOverride {
	return []SeasonOverride{
		{Canonical: "Meidericher SV", FromSeason: "1966/67", Renamed: "MSV Duisburg"},
	}
}

// Default returns a resolver with the built-in tables.
func Default() *Resolver {
	return NewResolver(DefaultRules(), DefaultOverrides())
}
