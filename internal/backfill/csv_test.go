package backfill

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/reconcile"
	"github.com/fortuna/ligatipp/internal/store/local"
)

const miniSeason = `matchday,home,away,result
1,FC Bayern München,Borussia Dortmund,2:1
1,RB Leipzig,SC Freiburg,0:0
2,Borussia Dortmund,FC Bayern München,-:-
2,SC Freiburg,RB Leipzig,-:-
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(miniSeason))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{Matchday: 1, Home: "FC Bayern München", Away: "Borussia Dortmund", Result: "2:1"}, rows[0])
	assert.Equal(t, "-:-", rows[2].Result)

	gh, ga, played, err := ParseResult(rows[0].Result)
	require.NoError(t, err)
	assert.True(t, played)
	assert.Equal(t, 2, gh)
	assert.Equal(t, 1, ga)

	_, _, played, err = ParseResult(rows[2].Result)
	require.NoError(t, err)
	assert.False(t, played)
}

func TestReadCSVRejectsMalformed(t *testing.T) {
	cases := []string{
		"1,FC Bayern München,Borussia Dortmund,2-1\n",
		"1,FC Bayern München,Borussia Dortmund,x:1\n",
		"one,FC Bayern München,Borussia Dortmund,2:1\n",
		"1,,Borussia Dortmund,2:1\n",
		"1,FC Bayern München,2:1\n",
	}
	for _, in := range cases {
		_, err := ReadCSV(strings.NewReader(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidateSeasonAcceptsSymmetricFile(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(miniSeason))
	require.NoError(t, err)

	assert.Empty(t, ValidateSeason(rows, 2))
}

func TestValidateSeasonViolations(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want string
	}{
		{
			name: "short matchday",
			rows: []Row{
				{1, "A", "B", "-:-"},
				{2, "B", "A", "-:-"},
			},
			want: "1 fixtures, want 2",
		},
		{
			name: "team listed twice in one round",
			rows: []Row{
				{1, "A", "B", "-:-"},
				{1, "A", "C", "-:-"},
			},
			want: "A listed twice",
		},
		{
			name: "missing return fixture",
			rows: []Row{
				{1, "A", "B", "-:-"},
				{1, "C", "D", "-:-"},
				{2, "B", "A", "-:-"},
				{2, "C", "D", "-:-"},
			},
			want: "no return fixture",
		},
		{
			name: "self match",
			rows: []Row{
				{1, "A", "A", "-:-"},
				{1, "C", "D", "-:-"},
			},
			want: "plays itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSeason(tt.rows, 2)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			assert.True(t, found, "no error containing %q in %v", tt.want, errs)
		})
	}
}

func TestImportThenExportRoundTrips(t *testing.T) {
	ctx := context.Background()
	fs, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)

	engine := reconcile.NewEngine([]reconcile.Sink{reconcile.NewFileSink(fs)}, nil)
	imp := NewImporter(engine, names.Default())

	rows, err := ReadCSV(strings.NewReader(miniSeason))
	require.NoError(t, err)

	sum, err := imp.Import(ctx, "2025/26", rows, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Matchdays)
	assert.Equal(t, 4, sum.Inserted)

	matches, err := fs.GetBySeason("2025/26")
	require.NoError(t, err)
	require.Len(t, matches, 4)

	var out strings.Builder
	require.NoError(t, ExportCSV(&out, matches))
	got, err := ReadCSV(strings.NewReader(out.String()))
	require.NoError(t, err)
	assert.ElementsMatch(t, rows, got)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)

	engine := reconcile.NewEngine([]reconcile.Sink{reconcile.NewFileSink(fs)}, nil)
	imp := NewImporter(engine, names.Default())

	rows, err := ReadCSV(strings.NewReader(miniSeason))
	require.NoError(t, err)

	_, err = imp.Import(ctx, "2025/26", rows, 2)
	require.NoError(t, err)
	sum, err := imp.Import(ctx, "2025/26", rows, 2)
	require.NoError(t, err)

	assert.Zero(t, sum.Inserted)
	matches, err := fs.GetBySeason("2025/26")
	require.NoError(t, err)
	assert.Len(t, matches, 4)
}

func TestImportRefusesInvalidFile(t *testing.T) {
	ctx := context.Background()
	fs, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)

	engine := reconcile.NewEngine([]reconcile.Sink{reconcile.NewFileSink(fs)}, nil)
	imp := NewImporter(engine, nil)

	rows := []Row{{1, "A", "B", "1:0"}}
	_, err = imp.Import(ctx, "2025/26", rows, 2)
	require.Error(t, err)

	matches, err := fs.GetBySeason("2025/26")
	require.NoError(t, err)
	assert.Empty(t, matches, "invalid file must not write anything")
}

func TestImportNormalizesNames(t *testing.T) {
	ctx := context.Background()
	fs, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)

	engine := reconcile.NewEngine([]reconcile.Sink{reconcile.NewFileSink(fs)}, nil)
	imp := NewImporter(engine, names.Default())

	rows := []Row{{1, "Bayern", "Dortmund", "3:0"}}
	_, err = imp.Import(ctx, "2025/26", rows, 0)
	require.NoError(t, err)

	matches, err := fs.GetBySeason("2025/26")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "FC Bayern München", matches[0].Home)
	assert.Equal(t, "Borussia Dortmund", matches[0].Away)
}
