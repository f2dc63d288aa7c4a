package predictions

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name                   string
		ph, pa, ah, aa, points int
	}{
		{"exact home win", 2, 1, 2, 1, 3},
		{"exact draw", 1, 1, 1, 1, 3},
		{"exact goalless draw", 0, 0, 0, 0, 3},
		{"exact away win", 0, 3, 0, 3, 3},

		{"correct margin home win", 3, 2, 2, 1, 2},
		{"correct margin away win", 0, 2, 1, 3, 2},
		{"correct big margin", 4, 1, 5, 2, 2},

		{"draw with wrong score is tendency only", 1, 1, 2, 2, 1},
		{"home win wrong margin", 1, 0, 3, 0, 1},
		{"away win wrong margin", 0, 1, 1, 4, 1},

		{"predicted home win, actual away win", 2, 0, 0, 1, 0},
		{"predicted draw, actual home win", 1, 1, 2, 0, 0},
		{"predicted away win, actual draw", 0, 2, 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.ph, tt.pa, tt.ah, tt.aa); got != tt.points {
				t.Errorf("Score(%d:%d vs %d:%d) = %d, want %d", tt.ph, tt.pa, tt.ah, tt.aa, got, tt.points)
			}
		})
	}
}

func TestScoreDrawGrid(t *testing.T) {
	// For all draw pairs: same score gives 3, any other draw gives 1.
	for a := 0; a <= 5; a++ {
		for b := 0; b <= 5; b++ {
			want := 1
			if a == b {
				want = 3
			}
			if got := Score(a, a, b, b); got != want {
				t.Errorf("Score(%d:%d vs %d:%d) = %d, want %d", a, a, b, b, got, want)
			}
		}
	}
}

func TestScoreTendencyNeverUpgrades(t *testing.T) {
	// Same tendency but different margin and score must give exactly 1.
	cases := [][4]int{
		{1, 0, 4, 2},
		{2, 0, 1, 0},
		{0, 1, 2, 4},
		{3, 1, 1, 0},
	}
	for _, c := range cases {
		if got := Score(c[0], c[1], c[2], c[3]); got != 1 {
			t.Errorf("Score(%d:%d vs %d:%d) = %d, want 1", c[0], c[1], c[2], c[3], got)
		}
	}
}

func TestScoreIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Score(2, 1, 3, 0); got != 1 {
			t.Fatalf("Score changed across calls: %d", got)
		}
	}
}
