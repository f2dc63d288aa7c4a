package backfill

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/ligatipp/internal/store"
)

// scheduledResult marks a fixture without a final score in the
// interchange format.
const scheduledResult = "-:-"

// Row is one line of the season interchange format:
// matchday,home,away,result with "-:-" for unplayed fixtures.
type Row struct {
	Matchday int
	Home     string
	Away     string
	Result   string
}

// ReadCSV parses the interchange format. A header line is recognized and
// skipped. Malformed lines abort the read; a half-read season must never
// reach the stores.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var rows []Row
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "matchday") {
			continue
		}

		matchday, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: matchday %q: %w", line, rec[0], err)
		}

		row := Row{
			Matchday: matchday,
			Home:     strings.TrimSpace(rec[1]),
			Away:     strings.TrimSpace(rec[2]),
			Result:   strings.TrimSpace(rec[3]),
		}
		if row.Home == "" || row.Away == "" {
			return nil, fmt.Errorf("line %d: empty team name", line)
		}
		if _, _, _, err := ParseResult(row.Result); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseResult splits a result cell into goals. The "-:-" sentinel means
// the fixture is scheduled.
func ParseResult(s string) (goalsHome, goalsAway int, played bool, err error) {
	if s == scheduledResult {
		return 0, 0, false, nil
	}
	h, a, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, false, fmt.Errorf("result %q: want \"h:a\" or %q", s, scheduledResult)
	}
	gh, err1 := strconv.Atoi(h)
	ga, err2 := strconv.Atoi(a)
	if err1 != nil || err2 != nil || gh < 0 || ga < 0 {
		return 0, 0, false, fmt.Errorf("result %q: non-numeric goals", s)
	}
	return gh, ga, true, nil
}

// ValidateSeason checks a full-season fixture list for structural
// integrity before anything is written: every matchday carries the full
// round, no club plays twice in one round, and every pairing occurs
// exactly once per direction. All violations are collected so a bad file
// is reported in one pass.
func ValidateSeason(rows []Row, matchesPerDay int) []error {
	var errs []error

	byDay := make(map[int][]Row)
	for _, row := range rows {
		byDay[row.Matchday] = append(byDay[row.Matchday], row)
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	for _, day := range days {
		fixtures := byDay[day]
		if len(fixtures) != matchesPerDay {
			errs = append(errs, fmt.Errorf("matchday %d: %d fixtures, want %d", day, len(fixtures), matchesPerDay))
		}

		seen := make(map[string]bool, 2*len(fixtures))
		for _, row := range fixtures {
			for _, team := range []string{row.Home, row.Away} {
				if seen[team] {
					errs = append(errs, fmt.Errorf("matchday %d: %s listed twice", day, team))
				}
				seen[team] = true
			}
			if row.Home == row.Away {
				errs = append(errs, fmt.Errorf("matchday %d: %s plays itself", day, row.Home))
			}
		}
	}

	pairings := make(map[[2]string][]int)
	for _, row := range rows {
		key := [2]string{row.Home, row.Away}
		pairings[key] = append(pairings[key], row.Matchday)
	}
	keys := make([][2]string, 0, len(pairings))
	for key := range pairings {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, key := range keys {
		if n := len(pairings[key]); n > 1 {
			errs = append(errs, fmt.Errorf("pairing %s vs %s occurs %d times (matchdays %v)", key[0], key[1], n, pairings[key]))
		}
		if key[0] < key[1] {
			// Check the reverse fixture once per unordered pair.
			if _, ok := pairings[[2]string{key[1], key[0]}]; !ok {
				errs = append(errs, fmt.Errorf("pairing %s vs %s has no return fixture", key[0], key[1]))
			}
		}
	}

	return errs
}

// ExportCSV writes a season back to the interchange format, ordered by
// matchday and home club so repeated exports diff cleanly.
func ExportCSV(w io.Writer, matches []*store.Match) error {
	sorted := make([]*store.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Matchday != sorted[j].Matchday {
			return sorted[i].Matchday < sorted[j].Matchday
		}
		return sorted[i].Home < sorted[j].Home
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"matchday", "home", "away", "result"}); err != nil {
		return err
	}
	for _, m := range sorted {
		rec := []string{strconv.Itoa(m.Matchday), m.Home, m.Away, m.Result()}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
