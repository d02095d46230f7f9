// Package engine implements the exact Connect Four solver: a negamax
// search with alpha-beta pruning narrowed by a transposition table and an
// optional opening book, driven to an exact score by the null-window
// bisection in Solve. The shape of the search — a single recursive
// function that probes/stores a transposition table inline and drains a
// move-ordering buffer built from a static column preference — follows
// the teacher engine's own alphabeta (engine/search.go in the source
// repo), stripped of every chess-only heuristic (no aspiration windows,
// no null-move pruning, no quiescence) since an exact solver has nothing
// to approximate: every node it visits is the full-width search.
package engine

import (
	"connect4solver/position"
)

const (
	width      = position.Width
	height     = position.Height
	boardCells = width * height
	keyBits    = width * (height + 1)

	// invalidMove is the score Analyze reports for a column that cannot be
	// played, matching spec's INVALID_MOVE sentinel.
	invalidMove = -1000

	// defaultLogSize sizes the default search transposition table to
	// roughly 8M slots. original_source/Solver.hpp uses 24 (~16M slots);
	// halved here to keep the CLI binary's default memory footprint
	// modest, with NewSolver exposing logSize for callers that want the
	// full 24.
	defaultLogSize = 23
)

// Solver holds the search's mutable state: the transposition table, which
// persists across Solve and Analyze calls until Reset clears it (cmd/solver
// calls Reset before every query — see DESIGN.md), and an optional opening
// book consulted at every node.
type Solver struct {
	table     *TranspositionTable
	book      *OpeningBook
	nodeCount uint64
}

// NewSolver builds a solver with a transposition table sized to
// NextPrime(2^logSize) slots. book may be nil, in which case every book
// probe misses.
func NewSolver(logSize uint, book *OpeningBook) *Solver {
	return &Solver{
		table: NewTranspositionTable(keyBits, logSize),
		book:  book,
	}
}

// NewDefaultSolver builds a solver at the default table size with no
// opening book.
func NewDefaultSolver() *Solver {
	return NewSolver(defaultLogSize, nil)
}

// NodeCount returns the number of negamax calls made since the solver
// was created or last reset.
func (s *Solver) NodeCount() uint64 { return s.nodeCount }

// Reset clears the transposition table and node counter so the next
// Solve/Analyze call starts from a cold cache, matching the reference
// implementation's per-query table reset.
func (s *Solver) Reset() {
	s.table.Reset()
	s.nodeCount = 0
}

// Solve returns the exact score of p from the point of view of the
// player to move: positive if that player can force a win, negative if
// the opponent can, zero for a forced draw, under perfect play by both
// sides. A positive/negative score's magnitude is 22 minus the number of
// stones the winner has played when the four is completed, i.e. faster
// forced wins score higher in absolute value.
//
// If weak is true, Solve only determines the sign of the result (win,
// loss or draw) and searches a much narrower window to get there faster;
// the magnitude it returns in that case is not meaningful.
func (s *Solver) Solve(p position.Position, weak bool) int {
	if p.CanWinNext() {
		return (boardCells + 1 - p.NbMoves()) / 2
	}

	min := -(boardCells - p.NbMoves()) / 2
	max := (boardCells + 1 - p.NbMoves()) / 2
	if weak {
		min, max = -1, 1
	}

	for min < max {
		med := min + (max-min)/2
		switch {
		case med <= 0 && min/2 < med:
			med = min / 2
		case med >= 0 && max/2 > med:
			med = max / 2
		}
		r := s.negamax(p, med, med+1)
		if r <= med {
			max = r
		} else {
			min = r
		}
	}
	return min
}

// Analyze scores every column of p independently, from the point of view
// of the player to move: the negation of what Solve(p.Played(col), weak)
// returns, or invalidMove for a column
// that is already full. A winning move is reported directly without a
// recursive solve, since its score is known from p.NbMoves() alone.
func (s *Solver) Analyze(p position.Position, weak bool) [width]int {
	var scores [width]int
	for col := 0; col < width; col++ {
		if !p.CanPlay(col) {
			scores[col] = invalidMove
			continue
		}
		if p.IsWinningMove(col) {
			scores[col] = (boardCells + 1 - p.NbMoves()) / 2
			continue
		}
		scores[col] = -s.Solve(p.Played(col), weak)
	}
	return scores
}

// negamax returns the exact score of p bounded to [alpha, beta], under
// the precondition that the player to move cannot already win on this
// turn (callers that need the unbounded score check CanWinNext first, as
// Solve and Analyze do above) and that alpha < beta.
func (s *Solver) negamax(p position.Position, alpha, beta int) int {
	s.nodeCount++

	possible := p.PossibleNonLosingMoves()
	if possible == 0 {
		// Every move hands the opponent an immediate win next turn.
		return -(boardCells - p.NbMoves()) / 2
	}
	if p.NbMoves() >= boardCells-2 {
		// Only one or two cells remain and neither side can win: a draw.
		return 0
	}

	min := -(boardCells - 2 - p.NbMoves()) / 2
	if alpha < min {
		alpha = min
		if alpha >= beta {
			return alpha
		}
	}
	max := (boardCells - 1 - p.NbMoves()) / 2
	if beta > max {
		beta = max
		if alpha >= beta {
			return beta
		}
	}

	key := p.Key()
	if val := s.table.Get(key); val != 0 {
		if val > uint8(position.MaxScore-position.MinScore+1) {
			lower := int(val) + 2*position.MinScore - position.MaxScore - 2
			if alpha < lower {
				alpha = lower
				if alpha >= beta {
					return alpha
				}
			}
		} else {
			upper := int(val) + position.MinScore - 1
			if beta > upper {
				beta = upper
				if alpha >= beta {
					return beta
				}
			}
		}
	}

	if s.book != nil {
		if v := s.book.Get(p); v != 0 {
			return int(v) + position.MinScore - 1
		}
	}

	var sorter MoveSorter
	for i := width - 1; i >= 0; i-- {
		col := position.ColumnOrder[i]
		move := p.ColumnMoveBit(col) & possible
		if move != 0 {
			sorter.Add(move, p.MoveScore(move))
		}
	}

	for move := sorter.GetNext(); move != 0; move = sorter.GetNext() {
		child := p.PlayedMoveBit(move)
		score := -s.negamax(child, -beta, -alpha)
		if score >= beta {
			s.table.Put(key, uint8(score+position.MaxScore-2*position.MinScore+2))
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	s.table.Put(key, uint8(alpha-position.MinScore+1))
	return alpha
}
