// Package position implements the bitboard representation of a Connect
// Four position and the primitives the search engine needs in O(1):
// playability, winning moves, non-losing moves and move ordering scores.
//
// The board is encoded on Width*(Height+1) = 49 bits of a uint64. Column c
// occupies bits [c*(Height+1), c*(Height+1)+Height]: bit 0 of the column is
// the bottom cell, bit Height-1 the top playable cell, and bit Height a
// sentinel that is never occupied by a stone but lets Key uniquely identify
// the position.
//
//	 6 13 20 27 34 41 48   <- sentinel row, never occupied
//	---------------------
//	| 5 12 19 26 33 40 47 |
//	| 4 11 18 25 32 39 46 |
//	| 3 10 17 24 31 38 45 |
//	| 2  9 16 23 30 37 44 |
//	| 1  8 15 22 29 36 43 |
//	| 0  7 14 21 28 35 42 |
//	---------------------
package position

import "math/bits"

// Board geometry. All derived constants below are computed from these two
// and the package will not build on a board that does not fit a uint64.
const (
	Width  = 7
	Height = 6

	boardSize = Width * Height
	centre    = Width / 2

	// MinScore and MaxScore bound every score a solved position can take.
	MinScore = -boardSize/2 + 3
	MaxScore = (boardSize+1)/2 - 3
)

var _ [64 - Width*(Height+1)]struct{} // compile-time check: board fits in 64 bits

// ColumnOrder is the static centre-out column preference used to break
// ties in move ordering: for Width=7 this is {3,4,2,5,1,6,0}.
var ColumnOrder = func() [Width]int {
	var order [Width]int
	for i := 0; i < Width; i++ {
		order[i] = centre - (1-2*(i%2))*(i+1)/2
	}
	return order
}()

// Position is a value type: the current player's stones, the union of all
// stones, and a move counter. Children are produced by copying a Position
// by value and playing into the copy; a Position is never mutated after
// being handed to a grandchild call.
type Position struct {
	current uint64 // bits set where the player to move has a stone
	mask    uint64 // bits set where either player has a stone
	moves   int    // number of stones placed so far
}

// New returns an empty board with the first player to move.
func New() Position {
	return Position{}
}

// bottomMask has a 1 at the bottom cell of every column.
var bottomMask = bottomMaskCol(0) | bottomMaskCol(1) | bottomMaskCol(2) | bottomMaskCol(3) |
	bottomMaskCol(4) | bottomMaskCol(5) | bottomMaskCol(6)

// boardMask covers all Width*Height playable cells (excludes the sentinel row).
var boardMask = bottomMask * ((1 << Height) - 1)

func bottomMaskCol(col int) uint64 { return uint64(1) << uint(col*(Height+1)) }

func topMaskCol(col int) uint64 { return uint64(1) << uint(Height-1+col*(Height+1)) }

func columnMask(col int) uint64 { return ((uint64(1) << Height) - 1) << uint(col*(Height+1)) }

// CanPlay reports whether col still has room for a stone.
func (p Position) CanPlay(col int) bool {
	return p.mask&topMaskCol(col) == 0
}

// Play places the current player's stone at the lowest empty cell of col
// and switches turn. The caller must ensure CanPlay(col) and that the move
// does not complete an alignment (see IsWinningMove).
func (p *Position) Play(col int) {
	p.playBit((p.mask + bottomMaskCol(col)) & columnMask(col))
}

// playBit plays a move given directly as a single-bit mask, as produced by
// possible/PossibleNonLosingMoves and consumed by the move sorter.
func (p *Position) playBit(move uint64) {
	p.current ^= p.mask
	p.mask |= move
	p.moves++
}

// Played returns a copy of p with col played. It never mutates p.
func (p Position) Played(col int) Position {
	p.Play(col)
	return p
}

// PlayedMoveBit returns a copy of p with the given move bit played.
func (p Position) PlayedMoveBit(move uint64) Position {
	p.playBit(move)
	return p
}

// PlaySequence interprets each character of seq as a 1-based column index
// and plays moves in order, stopping at the first character that is
// non-digit, out of range, unplayable, or immediately winning. It returns
// the number of characters consumed; callers detect a short sequence by
// comparing the result against len(seq).
func (p *Position) PlaySequence(seq string) int {
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c < '1' || c > '9' {
			return i
		}
		col := int(c-'1') % 10
		if col >= Width || !p.CanPlay(col) || p.IsWinningMove(col) {
			return i
		}
		p.Play(col)
	}
	return len(seq)
}

// IsWinningMove reports whether playing col would complete a four-in-a-row
// for the player to move. col must be playable.
func (p Position) IsWinningMove(col int) bool {
	return p.winningSpots()&p.possible()&columnMask(col) != 0
}

// CanWinNext reports whether at least one column is immediately winning
// for the player to move.
func (p Position) CanWinNext() bool {
	return p.winningSpots()&p.possible() != 0
}

// possible is a bitmask of the next playable cell of every column,
// including cells that would hand the opponent a win.
func (p Position) possible() uint64 {
	return (p.mask + bottomMask) & boardMask
}

// PossibleNonLosingMoves returns a bitmask of the moves (the next playable
// cell of each allowed column) the player to move may play without handing
// the opponent an immediate win. The caller must
// ensure !CanWinNext(); the result is 0 when the opponent already has two
// or more threats (no defence exists).
func (p Position) PossibleNonLosingMoves() uint64 {
	possible := p.possible()
	opponentWin := p.opponentWinningSpots()
	forced := possible & opponentWin
	if forced != 0 {
		if forced&(forced-1) != 0 {
			// Two or more forced blocks: the opponent cannot be stopped.
			return 0
		}
		possible = forced
	}
	// Never play directly below a cell that would let the opponent win on
	// top of it next turn.
	return possible &^ (opponentWin >> 1)
}

// MoveScore returns the number of three-in-a-row completions that become
// immediately winnable for the player to move after playing move. Used as
// a heuristic move-ordering key.
func (p Position) MoveScore(move uint64) int {
	return bits.OnesCount64(winningSpots(p.current|move, p.mask))
}

// Key returns current + mask, a value that uniquely identifies the
// position because adding mask sets a sentinel bit immediately above each
// column's stack.
func (p Position) Key() uint64 {
	return p.current + p.mask
}

// NbMoves returns the number of stones placed since the empty board.
func (p Position) NbMoves() int {
	return p.moves
}

// winningSpots returns the empty cells whose occupation by the player to
// move would complete an alignment.
func (p Position) winningSpots() uint64 {
	return winningSpots(p.current, p.mask)
}

// opponentWinningSpots returns the empty cells whose occupation by the
// opponent would complete an alignment.
func (p Position) opponentWinningSpots() uint64 {
	return winningSpots(p.current^p.mask, p.mask)
}

// winningSpots computes, for a player occupying the bits set in occupied
// (out of the stones recorded in mask), every empty cell that completes a
// four-in-a-row. It checks all four directions — vertical (stride 1),
// horizontal (stride Height+1), and the two diagonals (stride Height and
// Height+2) — by ANDing shifted copies of occupied to find runs of three,
// both at the ends of a run and in the single gap of a two-plus-one
// pattern, then restricts the result to empty board cells.
func winningSpots(occupied, mask uint64) uint64 {
	// Vertical: three in a column stacked below an empty cell.
	r := (occupied << 1) & (occupied << 2) & (occupied << 3)

	// Horizontal.
	p := (occupied << (Height + 1)) & (occupied << (2 * (Height + 1)))
	r |= p & (occupied << (3 * (Height + 1)))
	r |= p & (occupied >> (Height + 1))
	p = (occupied >> (Height + 1)) & (occupied >> (2 * (Height + 1)))
	r |= p & (occupied << (Height + 1))
	r |= p & (occupied >> (3 * (Height + 1)))

	// Diagonal "/" (stride Height).
	p = (occupied << Height) & (occupied << (2 * Height))
	r |= p & (occupied << (3 * Height))
	r |= p & (occupied >> Height)
	p = (occupied >> Height) & (occupied >> (2 * Height))
	r |= p & (occupied << Height)
	r |= p & (occupied >> (3 * Height))

	// Diagonal "\" (stride Height+2).
	p = (occupied << (Height + 2)) & (occupied << (2 * (Height + 2)))
	r |= p & (occupied << (3 * (Height + 2)))
	r |= p & (occupied >> (Height + 2))
	p = (occupied >> (Height + 2)) & (occupied >> (2 * (Height + 2)))
	r |= p & (occupied << (Height + 2))
	r |= p & (occupied >> (3 * (Height + 2)))

	return r & (boardMask &^ mask)
}

// ColumnMoveBit returns the single-bit move mask for playing col against
// the current mask, i.e. the mask fragment PlayedMoveBit expects.
func (p Position) ColumnMoveBit(col int) uint64 {
	return (p.mask + bottomMaskCol(col)) & columnMask(col)
}
