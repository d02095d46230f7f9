package engine_test

import (
	"testing"

	"connect4solver/engine"
	"connect4solver/position"
)

func solve(t *testing.T, seq string, weak bool) int {
	t.Helper()
	p, err := position.ParseSequence(seq)
	if err != nil {
		t.Fatalf("ParseSequence(%q): %v", seq, err)
	}
	s := engine.NewDefaultSolver()
	return s.Solve(p, weak)
}

func TestSolveEmptyBoardIsFirstPlayerWin(t *testing.T) {
	if got := solve(t, "", false); got != 1 {
		t.Fatalf("solve(\"\") = %d, want 1", got)
	}
}

func TestSolveSingleCentreReplyIsSecondPlayerLoss(t *testing.T) {
	if got := solve(t, "4", false); got != -1 {
		t.Fatalf("solve(\"4\") = %d, want -1", got)
	}
}

func TestSolveStackedCentreColumn(t *testing.T) {
	if got := solve(t, "44444", false); got != 2 {
		t.Fatalf("solve(\"44444\") = %d, want 2", got)
	}
}

func TestSolveLongSequence(t *testing.T) {
	if got := solve(t, "7422341235276115667", false); got != -1 {
		t.Fatalf("solve(%q) = %d, want -1", "7422341235276115667", got)
	}
}

func TestSolveWeakModeSignMatchesStrong(t *testing.T) {
	for _, seq := range []string{"", "4", "44444", "7422341235276115667"} {
		strong := solve(t, seq, false)
		weak := solve(t, seq, true)
		if sign(strong) != weak {
			t.Fatalf("sequence %q: strong=%d (sign %d) but weak=%d", seq, strong, sign(strong), weak)
		}
	}
}

func TestSolveScoreWithinBounds(t *testing.T) {
	for _, seq := range []string{"", "4", "1234567", "445566"} {
		got := solve(t, seq, false)
		if got < position.MinScore || got > position.MaxScore {
			t.Fatalf("sequence %q: score %d out of bounds [%d,%d]", seq, got, position.MinScore, position.MaxScore)
		}
	}
}

func TestAnalyzeEmptyBoard(t *testing.T) {
	s := engine.NewDefaultSolver()
	scores := s.Analyze(position.New(), false)
	want := [7]int{-2, -1, 0, 1, 0, -1, -2}
	for c := 0; c < 7; c++ {
		if scores[c] != want[c] {
			t.Fatalf("analyze(empty)[%d] = %d, want %d", c, scores[c], want[c])
		}
	}
}

func TestAnalyzeInvalidColumnReported(t *testing.T) {
	p, err := position.ParseSequence("333333")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	s := engine.NewDefaultSolver()
	scores := s.Analyze(p, false)
	if scores[2] != -1000 {
		t.Fatalf("analyze on a full column 3 = %d, want -1000 (invalid move sentinel)", scores[2])
	}
}

func TestAnalyzeConsistentWithSolve(t *testing.T) {
	for _, seq := range []string{"", "44", "453"} {
		p, err := position.ParseSequence(seq)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", seq, err)
		}
		s := engine.NewDefaultSolver()
		scores := s.Analyze(p, false)
		best := -1000
		for c := 0; c < position.Width; c++ {
			if p.CanPlay(c) && scores[c] > best {
				best = scores[c]
			}
		}
		want := s.Solve(p, false)
		if best != want {
			t.Fatalf("sequence %q: max(analyze) = %d, solve = %d", seq, best, want)
		}
	}
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
