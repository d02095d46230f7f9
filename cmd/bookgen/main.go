// Command bookgen is the offline counterpart to cmd/solver: it produces
// the opening-book file the solver optionally loads. It has two modes,
// selected by its first argument, mirroring the two standalone functions
// of the reference generator (explore and generate_opening_book):
//
//	bookgen explore <depth>   enumerate unique positions up to depth,
//	                          one move sequence per line on stdout
//	bookgen pack              read "<sequence> <score>" lines from
//	                          stdin and pack them into a book file
//
// Both are intended to be run once, offline, ahead of time; neither is
// part of the search's hot path.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"connect4solver/engine"
	"connect4solver/position"
)

const (
	// bookDepth matches original_source/generator.cpp's DEPTH constant:
	// the max depth of every position the packed book stores.
	bookDepth = 14
	// bookLogSize matches generator.cpp's BOOK_SIZE constant.
	bookLogSize = 23
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: bookgen explore <depth> | bookgen pack")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "explore":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: bookgen explore <depth>")
			os.Exit(2)
		}
		depth, err := strconv.Atoi(os.Args[2])
		if err != nil || depth < 0 {
			fmt.Fprintf(os.Stderr, "invalid depth %q\n", os.Args[2])
			os.Exit(2)
		}
		runExplore(depth)
	case "pack":
		runPack()
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", os.Args[1])
		os.Exit(2)
	}
}

// runExplore performs a depth-limited DFS over reachable positions from
// the empty board, deduplicating mirrored positions on Key3 and printing
// every unique position at or below depth — the generator's "explore"
// emission rule resolved in SPEC_FULL.md §7 as nb_moves <= depth, which
// yields every prefix position rather than only the leaves at depth.
func runExplore(depth int) {
	visited := make(map[uint64]struct{})
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	var seq [position.Width * position.Height]byte
	explore(position.New(), seq[:0], depth, visited, w)
}

func explore(p position.Position, seq []byte, depth int, visited map[uint64]struct{}, w *bufio.Writer) {
	key := p.Key3()
	if _, seen := visited[key]; seen {
		return
	}
	visited[key] = struct{}{}

	if p.NbMoves() <= depth {
		fmt.Fprintln(w, string(seq))
	}
	if p.NbMoves() >= depth {
		return
	}

	columns := lo.Range(position.Width)
	candidates := lo.Filter(columns, func(col, _ int) bool {
		return p.CanPlay(col) && !p.IsWinningMove(col)
	})
	for _, col := range candidates {
		child := p.Played(col)
		explore(child, append(seq, byte('1'+col)), depth, visited, w)
	}
}

// runPack reads "<sequence> <score>" lines from stdin until EOF or a
// blank line, validates each, and packs the scored positions into a
// book file named "<width>x<height>.book" in the current directory.
func runPack() {
	table := engine.NewTranspositionTable(49, bookLogSize)

	scanner := bufio.NewScanner(os.Stdin)
	count := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		count++

		fields := strings.Fields(line)
		if len(fields) != 2 {
			log.Warn().Int("line", count).Str("text", line).Msg("invalid line, ignored")
			continue
		}
		seq, scoreStr := fields[0], fields[1]
		score, err := strconv.Atoi(scoreStr)
		if err != nil || score < position.MinScore || score > position.MaxScore {
			log.Warn().Int("line", count).Str("text", line).Msg("invalid score, ignored")
			continue
		}
		p, err := position.ParseSequence(seq)
		if err != nil {
			log.Warn().Int("line", count).Str("text", line).Msg("invalid sequence, ignored")
			continue
		}
		table.Put(p.Key3(), uint8(score-position.MinScore+1))
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("reading standard input")
		os.Exit(1)
	}

	path := fmt.Sprintf("%dx%d.book", position.Width, position.Height)
	if err := engine.SaveOpeningBook(path, table, bookDepth); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("saving opening book")
	}
	log.Info().Str("path", path).Int("lines", count).Msg("opening book saved")
}
