package lzma_test

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/golzma/lzma"
	"github.com/golzma/lzma/internal/lz77"
	"github.com/golzma/lzma/internal/lzmaverify"
)

// compress drives a fresh Encoder over data with the internal greedy
// LZ77 front end and returns the full framed bitstream.
func compress(t *testing.T, p lzma.Params, data []byte) []byte {
	t.Helper()
	if p.HeaderHasSize {
		p.UncompressedSize = uint64(len(data))
	}
	enc, err := lzma.New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := lz77.Compress(enc, data, enc.DictSize()); err != nil {
		t.Fatalf("lz77.Compress: %v", err)
	}
	var buf bytes.Buffer
	if _, err := enc.Close(&buf); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func decompress(t *testing.T, compressed []byte, hasSize bool) []byte {
	t.Helper()
	out, err := lzmaverify.Decode(compressed, hasSize)
	if err != nil {
		t.Fatalf("lzmaverify.Decode: %v", err)
	}
	return out
}

// corpora covers the input classes most likely to stress distinct
// encoder paths: empty, constant runs, high-entropy, natural text, and
// a repeating pattern whose period exercises rep matches.
func corpora() map[string][]byte {
	rnd := rand.New(rand.NewSource(1))
	randomBytes := make([]byte, 65537)
	rnd.Read(randomBytes)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 2000)

	repeating := bytes.Repeat([]byte("0123456789abcdef9"), 241) // 17-byte pattern

	return map[string][]byte{
		"empty":       {},
		"single byte": {0x42},
		"all zeros":   make([]byte, 4096),
		"all 0xFF":    bytes.Repeat([]byte{0xFF}, 4096),
		"incompressible random": randomBytes,
		"english text":          []byte(text)[:65537],
		"repeating 17-byte":     repeating,
	}
}

func TestRoundTripAllLevels(t *testing.T) {
	for name, data := range corpora() {
		data := data
		for level := 0; level <= 3; level++ {
			t.Run(name+"/level"+string(rune('0'+level)), func(t *testing.T) {
				p := lzma.DefaultParams(level)
				compressed := compress(t, p, data)
				got := decompress(t, compressed, false)
				if !bytes.Equal(got, data) {
					t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(data))
				}
			})
		}
	}
}

func TestRoundTripSizeLengths(t *testing.T) {
	sizes := []int{0, 1, 15, 16, 17, 4096, 65537}
	rnd := rand.New(rand.NewSource(2))
	for _, n := range sizes {
		data := make([]byte, n)
		rnd.Read(data)
		t.Run("", func(t *testing.T) {
			p := lzma.DefaultParams(2)
			compressed := compress(t, p, data)
			got := decompress(t, compressed, false)
			if !bytes.Equal(got, data) {
				t.Fatalf("size %d: round trip mismatch", n)
			}
		})
	}
}

// TestDeterminism checks that two independent runs with identical
// parameters and input produce byte-identical output.
func TestDeterminism(t *testing.T) {
	data := []byte(strings.Repeat("determinism check payload ", 500))
	p := lzma.DefaultParams(3)
	a := compress(t, p, data)
	b := compress(t, p, data)
	if !bytes.Equal(a, b) {
		t.Fatal("two runs with identical input produced different output")
	}
}

// TestParameterSweep round-trips a short string across the lc/lp/pb
// parameter space.
func TestParameterSweep(t *testing.T) {
	data := []byte("hello world\n")
	for lc := 0; lc <= 4; lc++ {
		for lp := 0; lp <= 4; lp++ {
			if lc+lp > 8 {
				continue
			}
			for pb := 0; pb <= 4; pb++ {
				p := lzma.Params{Level: 1, LC: lc, LP: lp, PB: pb, EndMarker: true}
				compressed := compress(t, p, data)
				got := decompress(t, compressed, false)
				if !bytes.Equal(got, data) {
					t.Fatalf("lc=%d lp=%d pb=%d: round trip mismatch", lc, lp, pb)
				}
			}
		}
	}
}

// TestHeaderHasSizeRoundTrip covers the optional 8-byte size field.
func TestHeaderHasSizeRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("sized stream ", 300))
	p := lzma.DefaultParams(2)
	p.HeaderHasSize = true
	compressed := compress(t, p, data)
	got := decompress(t, compressed, true)
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch with header size field")
	}
}

// TestRepeatingPatternCompressesWell checks a long repeating pattern
// compresses to a small fraction of its original size at level 3.
func TestRepeatingPatternCompressesWell(t *testing.T) {
	data := bytes.Repeat([]byte("abc"), 4096/3+1)[:4096]
	compressed := compress(t, lzma.DefaultParams(3), data)
	if len(compressed) >= len(data)/4 {
		t.Fatalf("compressed size %d not small relative to input %d", len(compressed), len(data))
	}
	got := decompress(t, compressed, false)
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch")
	}
}

// TestAllZerosCompressesSmall checks 1 MiB of zeros compresses below
// 1 KiB.
func TestAllZerosCompressesSmall(t *testing.T) {
	data := make([]byte, 1<<20)
	compressed := compress(t, lzma.DefaultParams(3), data)
	if len(compressed) >= 1024 {
		t.Fatalf("compressed size %d, want < 1024", len(compressed))
	}
	got := decompress(t, compressed, false)
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch")
	}
}

// TestIncompressibleOverheadBound checks the worst-case expansion of
// high-entropy input stays bounded: range-coder overhead plus the
// occasional chance match the greedy finder takes on random data.
func TestIncompressibleOverheadBound(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	data := make([]byte, 64*1024)
	rnd.Read(data)
	compressed := compress(t, lzma.DefaultParams(3), data)
	bound := len(data) + len(data)/32 + 64 + 13 // +13 for the property/size header
	if len(compressed) > bound {
		t.Fatalf("compressed size %d exceeds bound %d", len(compressed), bound)
	}
	got := decompress(t, compressed, false)
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch")
	}
}

// TestEmptyInputGoldenOutput pins the exact byte stream for an empty
// input at level 1 with an end marker and no size field: the 5-byte
// property header followed by the encoded end-of-stream marker.
func TestEmptyInputGoldenOutput(t *testing.T) {
	golden := []byte{
		0x5D, 0x00, 0x00, 0x80, 0x00,
		0x00, 0x83, 0xFF, 0xFB, 0xFF, 0xFF, 0xC0, 0x00, 0x00, 0x00,
	}
	got := compress(t, lzma.DefaultParams(1), nil)
	if !bytes.Equal(got, golden) {
		t.Fatalf("golden mismatch:\ngot  %x\nwant %x", got, golden)
	}
}
