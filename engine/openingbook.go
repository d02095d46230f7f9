package engine

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"connect4solver/position"
)

// bookHeader is the 6-byte file header described by the opening-book
// format: width, height, max depth, partial key width in bytes, value
// width in bytes, and log2 of the table size.
type bookHeader struct {
	Width           uint8
	Height          uint8
	Depth           uint8
	PartialKeyBytes uint8
	ValueBytes      uint8
	LogSize         uint8
}

// OpeningBook is a read-only lookup from a shallow position's Key3 to a
// precomputed exact score, loaded from a binary file. It reuses
// TranspositionTable's storage and collision behaviour — the same
// zero-means-absent, partial-key-plus-slot-index scheme — so a probe is
// exactly as cheap as a transposition-table probe. An OpeningBook with no
// backing table (e.g. because loading failed) answers every probe with 0,
// which the solver treats as "book does not cover this position";
// correctness is unaffected, only performance degrades, matching the
// teacher engine's own fallback behaviour when engine/opening_book.go's
// file cannot be read.
type OpeningBook struct {
	table *TranspositionTable
	depth int
}

// Get returns the stored score byte for P, or 0 if P is deeper than the
// book's depth bound or the book has no entry for it.
func (b *OpeningBook) Get(p position.Position) uint8 {
	if b == nil || b.table == nil || p.NbMoves() > b.depth {
		return 0
	}
	return b.table.Get(p.Key3())
}

// LoadOpeningBook reads a book file written by SaveOpeningBook (or by the
// bookgen generator tool). On any validation failure it logs a warning
// via zerolog and returns an empty *OpeningBook that always misses,
// mirroring spec.md §7's fallback rule: a missing or malformed book must
// never make the solver incorrect, only slower.
func LoadOpeningBook(path string) *OpeningBook {
	empty := &OpeningBook{}

	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book unavailable, continuing without one")
		return empty
	}
	defer f.Close()

	book, err := readOpeningBook(bufio.NewReader(f))
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("opening book rejected, continuing without one")
		return empty
	}
	log.Info().Str("path", path).Int("depth", book.depth).Uint64("entries", book.table.Size()).Msg("opening book loaded")
	return book
}

func readOpeningBook(r io.Reader) (*OpeningBook, error) {
	var hdr bookHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading book header: %w", err)
	}
	if int(hdr.Width) != position.Width || int(hdr.Height) != position.Height {
		return nil, fmt.Errorf("book geometry %dx%d does not match solver geometry %dx%d",
			hdr.Width, hdr.Height, position.Width, position.Height)
	}
	if int(hdr.Depth) > position.Width*position.Height {
		return nil, fmt.Errorf("book depth %d exceeds board size", hdr.Depth)
	}
	switch hdr.PartialKeyBytes {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("invalid partial key width %d bytes", hdr.PartialKeyBytes)
	}
	if hdr.ValueBytes != 1 {
		return nil, fmt.Errorf("invalid value width %d bytes, expected 1", hdr.ValueBytes)
	}
	if hdr.LogSize > 40 {
		return nil, fmt.Errorf("invalid log2(size) %d", hdr.LogSize)
	}

	size := NextPrime(uint64(1) << hdr.LogSize)
	partialBits := uint(hdr.PartialKeyBytes) * 8

	table := &TranspositionTable{
		size:        size,
		logSize:     uint(hdr.LogSize),
		partialBits: partialBits,
		partialMask: (uint64(1) << partialBits) - 1,
		keys:        make([]uint64, size),
		values:      make([]uint8, size),
	}

	for i := uint64(0); i < size; i++ {
		key, err := readPartialKey(r, hdr.PartialKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("reading key %d/%d: %w", i, size, err)
		}
		table.keys[i] = key
	}
	if _, err := io.ReadFull(r, table.values); err != nil {
		return nil, fmt.Errorf("reading values: %w", err)
	}

	return &OpeningBook{table: table, depth: int(hdr.Depth)}, nil
}

func readPartialKey(r io.Reader, width uint8) (uint64, error) {
	buf := make([]byte, width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	default:
		return 0, fmt.Errorf("unsupported key width %d", width)
	}
}

// SaveOpeningBook writes a book file for table, covering positions up to
// depth moves deep, in the format LoadOpeningBook understands.
func SaveOpeningBook(path string, table *TranspositionTable, depth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating book file: %w", err)
	}
	defer f.Close()

	partialBits := table.PartialKeyBits()
	if partialBits > 32 {
		return fmt.Errorf("table partial key width %d bits does not fit the book format's 4-byte maximum; use a larger logSize", partialBits)
	}

	w := bufio.NewWriter(f)
	partialKeyBytes := partialKeyByteWidth(partialBits)
	hdr := bookHeader{
		Width:           uint8(position.Width),
		Height:          uint8(position.Height),
		Depth:           uint8(depth),
		PartialKeyBytes: partialKeyBytes,
		ValueBytes:      1,
		LogSize:         uint8(table.logSize),
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing book header: %w", err)
	}
	for _, key := range table.keys {
		if err := writePartialKey(w, key, partialKeyBytes); err != nil {
			return fmt.Errorf("writing key: %w", err)
		}
	}
	if _, err := w.Write(table.values); err != nil {
		return fmt.Errorf("writing values: %w", err)
	}
	return w.Flush()
}

func partialKeyByteWidth(bits uint) uint8 {
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	default:
		return 4
	}
}

func writePartialKey(w io.Writer, key uint64, width uint8) error {
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = uint8(key)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(key))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(key))
	default:
		return fmt.Errorf("unsupported key width %d", width)
	}
	_, err := w.Write(buf)
	return err
}
