// Command lzmaenc is a tiny diagnostic encoder: it reads uncompressed
// bytes from stdin (or a file) and writes a bare LZMA bitstream to
// stdout.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golzma/lzma"
)

func main() {
	level := flag.Int("level", 3, "compression level (0-3)")
	lc := flag.Int("lc", 3, "literal context bits (0-8)")
	lp := flag.Int("lp", 0, "literal position bits (0-4)")
	pb := flag.Int("pb", 2, "position-state bits (0-4)")
	dictSize := flag.Uint("dict", 0, "dictionary size in bytes (0 = level preset)")
	endMarker := flag.Bool("eos", true, "emit an end-of-stream marker")
	headerSize := flag.Bool("header-size", false, "include the 8-byte uncompressed-size header field")
	in := flag.String("in", "", "input file (default: stdin)")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	data, err := readInput(*in)
	if err != nil {
		log.Fatalf("lzmaenc: %v", err)
	}

	w, closeOut, err := openOutput(*out)
	if err != nil {
		log.Fatalf("lzmaenc: %v", err)
	}
	defer closeOut()

	p := lzma.Params{
		Level:         *level,
		LC:            *lc,
		LP:            *lp,
		PB:            *pb,
		DictSize:      uint32(*dictSize),
		EndMarker:     *endMarker,
		HeaderHasSize: *headerSize,
	}
	if *headerSize {
		p.UncompressedSize = uint64(len(data))
	}

	n, err := lzma.Compress(p, bytes.NewReader(data), w)
	if err != nil {
		log.Fatalf("lzmaenc: %v", err)
	}
	fmt.Fprintf(os.Stderr, "lzmaenc: %d bytes in, %d bytes out\n", len(data), n)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
