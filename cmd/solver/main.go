// Command solver is the interactive driver around the Connect Four
// search engine: it reads move sequences from standard input, one per
// line, and prints the solved score(s) for each. This mirrors the
// teacher engine's own cmd/uci driver — a thin bufio.Scanner loop with
// no logic of its own beyond dispatch — generalised from UCI's
// token-based protocol to spec's simpler "one sequence per line" one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"connect4solver/engine"
	"connect4solver/position"
)

func main() {
	weak := flag.Bool("w", false, "weak mode: report only the sign of the score")
	bookPath := flag.String("b", "7x6.book", "path to an opening book file")
	analyze := flag.Bool("a", false, "analyse mode: report a score per column")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	book := engine.LoadOpeningBook(*bookPath)
	solver := engine.NewSolver(23, book)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		solver.Reset()

		p, err := position.ParseSequence(line)
		if err != nil {
			log.Error().Err(err).Str("sequence", line).Msg("invalid move sequence")
			fmt.Println()
			continue
		}

		start := time.Now()
		if *analyze {
			scores := solver.Analyze(p, *weak)
			fields := lo.Map(scores[:], func(s int, _ int) string { return strconv.Itoa(s) })
			fmt.Printf("%s %s\n", line, strings.Join(fields, " "))
		} else {
			score := solver.Solve(p, *weak)
			fmt.Printf("%s %d %d %d\n", line, score, solver.NodeCount(), time.Since(start).Microseconds())
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("reading standard input")
		os.Exit(1)
	}
}
