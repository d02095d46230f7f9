package position_test

import (
	"testing"

	"connect4solver/position"
)

func TestCanPlayTotality(t *testing.T) {
	p := position.New()
	for i := 0; i < position.Height; i++ {
		if !p.CanPlay(3) {
			t.Fatalf("column 3 should be playable after %d stones", i)
		}
		p.Play(3)
	}
	if p.CanPlay(3) {
		t.Fatalf("column 3 should be full after %d stones", position.Height)
	}
}

func TestKeyUniqueness(t *testing.T) {
	seen := map[uint64]string{}
	sequences := []string{"", "4", "44", "445", "4455", "1234567", "2134567"}
	for _, seq := range sequences {
		p, err := position.ParseSequence(seq)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", seq, err)
		}
		key := p.Key()
		if other, ok := seen[key]; ok {
			t.Fatalf("sequence %q collides on key %d with %q", seq, key, other)
		}
		seen[key] = seq
	}
}

func TestKey3Symmetric(t *testing.T) {
	for _, seq := range []string{"", "4", "13", "234", "1253", "44556"} {
		p, err := position.ParseSequence(seq)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", seq, err)
		}
		if p.Key3() != p.Mirrored().Key3() {
			t.Errorf("sequence %q: key3 %d != mirrored key3 %d", seq, p.Key3(), p.Mirrored().Key3())
		}
	}
}

func TestIsWinningMoveDetectsFourInARow(t *testing.T) {
	// Build: player to move has stones on columns 0,1,2 bottom row, can win on column 3.
	p := position.New()
	for _, col := range []int{0, 4, 1, 4, 2, 5} {
		if !p.CanPlay(col) {
			t.Fatalf("column %d unexpectedly full", col)
		}
		if p.IsWinningMove(col) {
			t.Fatalf("unexpected premature win on column %d", col)
		}
		p.Play(col)
	}
	if !p.IsWinningMove(3) {
		t.Fatalf("expected column 3 to complete a horizontal four-in-a-row")
	}
}

func TestPossibleNonLosingMovesForcesBlock(t *testing.T) {
	// Opponent has three in a row on the bottom of columns 0,1,2; only
	// blocking column 3 should remain for the player to move.
	p := position.New()
	for _, col := range []int{0, 6, 1, 6, 2} {
		p.Play(col)
	}
	if p.CanWinNext() {
		t.Fatalf("player to move should not already have an immediate win")
	}
	mask := p.PossibleNonLosingMoves()
	block := p.ColumnMoveBit(3)
	if mask != block {
		t.Fatalf("expected only the forced block at column 3, got mask %b want %b", mask, block)
	}
}

func TestPossibleNonLosingMovesIsSubsetOfPossible(t *testing.T) {
	for _, seq := range []string{"", "4", "453", "1234567", "44551166"} {
		p, err := position.ParseSequence(seq)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", seq, err)
		}
		if p.CanWinNext() {
			continue // PossibleNonLosingMoves' precondition does not hold here
		}
		mask := p.PossibleNonLosingMoves()
		var union uint64
		for c := 0; c < position.Width; c++ {
			if p.CanPlay(c) {
				union |= p.ColumnMoveBit(c)
			}
		}
		if mask&^union != 0 {
			t.Fatalf("sequence %q: PossibleNonLosingMoves returned bits outside any playable column", seq)
		}
	}
}

func TestPlaySequenceStopsAtFullColumn(t *testing.T) {
	p := position.New()
	consumed := p.PlaySequence("333333")
	if consumed != 6 {
		t.Fatalf("expected all six plays in column 3 to succeed, consumed=%d", consumed)
	}
	consumed2 := p.PlaySequence("3")
	if consumed2 != 0 {
		t.Fatalf("expected a 7th play in the full column 3 to be rejected immediately")
	}
}

func TestParseSequenceRejectsOverflow(t *testing.T) {
	_, err := position.ParseSequence("3333333")
	if err == nil {
		t.Fatalf("expected an error for a sequence that overflows column 3")
	}
	var seqErr *position.SequenceError
	if !asSequenceError(err, &seqErr) {
		t.Fatalf("expected a *SequenceError, got %T", err)
	}
	if seqErr.Index != 6 {
		t.Fatalf("expected the overflow to be detected at index 6, got %d", seqErr.Index)
	}
}

func asSequenceError(err error, target **position.SequenceError) bool {
	se, ok := err.(*position.SequenceError)
	if ok {
		*target = se
	}
	return ok
}

func TestMoveScoreCountsCompletions(t *testing.T) {
	// The player to move holds the bottom cells of columns 0 and 1; adding
	// column 2 makes a three whose only completion is column 3's bottom cell.
	p := position.New()
	for _, col := range []int{0, 5, 1, 5} {
		p.Play(col)
	}
	move := p.ColumnMoveBit(2)
	if got := p.MoveScore(move); got != 1 {
		t.Fatalf("MoveScore = %d, want 1", got)
	}
}
