package fussballdaten

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/ligatipp/internal/names"
)

// ParserConfig controls the played/scheduled disambiguation.
type ParserConfig struct {
	// CurrentMatchday is the first round considered "current or future".
	// Score tokens found at or above it are only trusted as results when
	// the surrounding text carries a full date stamp; kickoff times on
	// fixture listings would otherwise be misread as scores.
	CurrentMatchday int

	// MaxGoals is the highest per-side goal count accepted as plausible.
	MaxGoals int

	// MatchesPerDay caps one round's fixture count (9 for an 18-team league).
	MatchesPerDay int
}

// DefaultParserConfig returns the Bundesliga defaults.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		CurrentMatchday: 16,
		MaxGoals:        14,
		MatchesPerDay:   9,
	}
}

var (
	scoreToken = regexp.MustCompile(`^\d{1,2}:\d{1,2}$`)
	// liveMarker flags fixtures that are running, moved, or listed with a
	// kickoff clock; nothing matching this carries a final result.
	liveMarker = regexp.MustCompile(`(?i)\blive\b|verlegt|abgesagt|abbruch|postponed|\d{1,2}[.:]\d{2}\s*uhr`)
	dateStamp  = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`)
)

// kickoffTimes are the league's usual slot times. A "score" equal to one
// of these on a current-round page is a kickoff listing, not a result.
var kickoffTimes = map[string]bool{
	"15:30": true, "17:30": true, "18:30": true, "20:30": true, "20:45": true,
}

// Parser turns a fetched matchday page into match candidates.
type Parser struct {
	resolver *names.Resolver
	cfg      ParserConfig
}

// NewParser creates a parser over the given name resolver.
func NewParser(resolver *names.Resolver, cfg ParserConfig) *Parser {
	if cfg.MaxGoals == 0 {
		cfg = DefaultParserConfig()
	}
	return &Parser{resolver: resolver, cfg: cfg}
}

// ParsePage extracts candidates from a matchday HTML document. The site
// renders one container per fixture; each is flattened to text and
// handled by the segment scanner.
func (p *Parser) ParsePage(doc *goquery.Document, season string, matchday int) []Candidate {
	var cands []Candidate

	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		class, _ := link.Attr("class")
		if !strings.Contains(class, "ergebnis-link") && !strings.Contains(class, "spiele-row") {
			return
		}
		parent := link.ParentsFiltered("div, tr").First()
		if parent.Length() == 0 {
			return
		}

		text := strings.Join(strings.Fields(parent.Text()), " ")
		if c, ok := p.parseSegments(segment(text), season, matchday); ok {
			cands = append(cands, c)
		}
	})

	// Fallback for stripped or plain-text pages with no per-fixture anchors.
	if len(cands) == 0 {
		cands = p.ParseText(doc.Text(), season, matchday)
	}

	return p.dedupe(cands)
}

// ParseText extracts candidates from raw page text: every score-shaped
// token is a potential anchor with the home side to its left and the away
// side to its right.
func (p *Parser) ParseText(text string, season string, matchday int) []Candidate {
	parts := segment(text)

	var cands []Candidate
	for i, part := range parts {
		if !scoreToken.MatchString(part) {
			continue
		}
		lo, hi := windowAround(parts, i)
		if c, ok := p.parseAt(parts[lo:hi], i-lo, season, matchday); ok {
			cands = append(cands, c)
		}
	}
	return p.dedupe(cands)
}

// parseSegments locates the first score token in the segment list and
// resolves its neighbours.
func (p *Parser) parseSegments(parts []string, season string, matchday int) (Candidate, bool) {
	for i, part := range parts {
		if scoreToken.MatchString(part) {
			return p.parseAt(parts, i, season, matchday)
		}
	}
	return Candidate{}, false
}

// parseAt resolves the sides around the score token at scoreIdx. Both
// sides must resolve to known, distinct clubs or the candidate is dropped.
func (p *Parser) parseAt(parts []string, scoreIdx int, season string, matchday int) (Candidate, bool) {
	var home, homeFrag string
	for j := scoreIdx - 1; j >= 0; j-- {
		if name, ok := p.resolver.ResolveForSeason(parts[j], season); ok {
			home, homeFrag = name, parts[j]
			break
		}
	}
	var away, awayFrag string
	for j := scoreIdx + 1; j < len(parts); j++ {
		if scoreToken.MatchString(parts[j]) {
			// The site lists the half-time score right after the full-time
			// one; skip over it.
			continue
		}
		if name, ok := p.resolver.ResolveForSeason(parts[j], season); ok {
			away, awayFrag = name, parts[j]
			break
		}
	}

	if home == "" || away == "" {
		// Data-quality signal: a score with an unresolvable side usually
		// means the rule table is missing an entry.
		log.Printf("  ⚠️  matchday %d: unresolvable fixture around %q", matchday, parts[scoreIdx])
		return Candidate{}, false
	}
	if home == away {
		// Self-match artifact from nested markup.
		return Candidate{}, false
	}

	c := Candidate{Home: home, Away: away}
	if gh, ga, ok := p.acceptScore(parts[scoreIdx], homeFrag, awayFrag, strings.Join(parts, " "), matchday); ok {
		c.GoalsHome, c.GoalsAway, c.Played = gh, ga, true
	}
	return c, true
}

// acceptScore decides whether a score token is a real result. All three
// guards must pass; anything ambiguous is kept as scheduled, because a
// silently wrong score is strictly worse than an unknown one.
func (p *Parser) acceptScore(token, homeFrag, awayFrag, surrounding string, matchday int) (int, int, bool) {
	if liveMarker.MatchString(homeFrag) || liveMarker.MatchString(awayFrag) {
		return 0, 0, false
	}

	gh, ga, ok := splitScore(token)
	if !ok || gh > p.cfg.MaxGoals || ga > p.cfg.MaxGoals {
		return 0, 0, false
	}

	if matchday >= p.cfg.CurrentMatchday {
		if kickoffTimes[token] {
			return 0, 0, false
		}
		if !dateStamp.MatchString(surrounding) {
			return 0, 0, false
		}
	}

	return gh, ga, true
}

// dedupe keeps the first candidate per (home, away) pair and caps the
// round at the league's fixture count.
func (p *Parser) dedupe(cands []Candidate) []Candidate {
	seen := make(map[[2]string]bool, len(cands))
	out := cands[:0]
	for _, c := range cands {
		key := [2]string{c.Home, c.Away}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if p.cfg.MatchesPerDay > 0 && len(out) == p.cfg.MatchesPerDay {
			break
		}
	}
	return out
}

func splitScore(token string) (int, int, bool) {
	h, a, ok := strings.Cut(token, ":")
	if !ok {
		return 0, 0, false
	}
	gh, err1 := strconv.Atoi(h)
	ga, err2 := strconv.Atoi(a)
	if err1 != nil || err2 != nil || gh < 0 || ga < 0 {
		return 0, 0, false
	}
	return gh, ga, true
}

// segment splits flattened fixture text into name-sized chunks. The site
// separates teams, scores, and times with multiple spaces or pipes once
// the markup is stripped; single spaces stay inside club names.
func segment(text string) []string {
	var parts []string
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool { return r == '|' || r == '\n' || r == '\t' }) {
		chunk := strings.TrimSpace(raw)
		if chunk == "" {
			continue
		}
		// Pull score-shaped tokens out of mixed chunks so they anchor
		// the scan even without explicit separators. Words never glue
		// across chunk boundaries, or adjacent club names would fuse.
		var cur []string
		flush := func() {
			if len(cur) > 0 {
				parts = append(parts, strings.Join(cur, " "))
				cur = cur[:0]
			}
		}
		for _, field := range strings.Fields(chunk) {
			if scoreToken.MatchString(field) || dateStamp.MatchString(field) {
				flush()
				parts = append(parts, field)
			} else {
				cur = append(cur, field)
			}
		}
		flush()
	}
	return parts
}

// windowAround returns the bounds of the segments surrounding index i,
// wide enough to hold both club names and a date stamp.
func windowAround(parts []string, i int) (int, int) {
	lo, hi := i-3, i+4
	if lo < 0 {
		lo = 0
	}
	if hi > len(parts) {
		hi = len(parts)
	}
	return lo, hi
}
