package rangecoder

import "testing"

// TestEncoderInit verifies the coder resets to its documented initial
// state.
func TestEncoderInit(t *testing.T) {
	tests := []struct {
		name    string
		bufSize int
	}{
		{"small buffer", 16},
		{"medium buffer", 256},
		{"large buffer", 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 0, tt.bufSize)
			e := &Encoder{}
			e.Init(buf)

			if e.width != 0xFFFFFFFF {
				t.Errorf("width = %#x, want 0xFFFFFFFF", e.width)
			}
			if e.low != 0 {
				t.Errorf("low = %d, want 0", e.low)
			}
			if e.cacheSize != 1 {
				t.Errorf("cacheSize = %d, want 1", e.cacheSize)
			}
			if e.cache != 0 {
				t.Errorf("cache = %d, want 0", e.cache)
			}
		})
	}
}

// TestEncodeBitProbabilityBounds verifies every probability stays
// within [2^MoveBits-1, ProbScale-(2^MoveBits-1)] after any number of
// updates.
func TestEncodeBitProbabilityBounds(t *testing.T) {
	lo := Prob((1 << MoveBits) - 1)
	hi := Prob(ProbScale - (1 << MoveBits) + 1)

	prob := Prob(ProbInit)
	buf := make([]byte, 0, 4096)
	e := &Encoder{}
	e.Init(buf)

	bits := []uint32{0, 1, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1, 0, 1}
	for i := 0; i < 2000; i++ {
		e.EncodeBit(&prob, bits[i%len(bits)])
		if prob < lo || prob > hi {
			t.Fatalf("iteration %d: prob = %d, want in [%d, %d]", i, prob, lo, hi)
		}
	}
}

// TestNormalizeInvariant verifies width >= widthMin holds after every
// encoded bit.
func TestNormalizeInvariant(t *testing.T) {
	prob := Prob(ProbInit)
	buf := make([]byte, 0, 4096)
	e := &Encoder{}
	e.Init(buf)

	for i := 0; i < 5000; i++ {
		e.EncodeBit(&prob, uint32(i%3)&1)
		if e.width < widthMin {
			t.Fatalf("iteration %d: width = %#x below widthMin %#x", i, e.width, widthMin)
		}
	}
}

// TestEncoderDeterminism verifies identical input produces
// byte-identical output across independent runs.
func TestEncoderDeterminism(t *testing.T) {
	bits := []uint32{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1}

	run := func() []byte {
		prob := Prob(ProbInit)
		buf := make([]byte, 0, 64)
		e := &Encoder{}
		e.Init(buf)
		for _, b := range bits {
			e.EncodeBit(&prob, b)
		}
		e.Flush()
		out := make([]byte, len(e.Bytes()))
		copy(out, e.Bytes())
		return out
	}

	first := run()
	for i := 0; i < 5; i++ {
		got := run()
		if len(got) != len(first) {
			t.Fatalf("run %d: length %d, want %d", i, len(got), len(first))
		}
		for j := range got {
			if got[j] != first[j] {
				t.Fatalf("run %d: byte %d = %#x, want %#x", i, j, got[j], first[j])
			}
		}
	}
}

// TestEncodeDirectBits exercises the equiprobable direct-bit path used
// for high distance bits.
func TestEncodeDirectBits(t *testing.T) {
	buf := make([]byte, 0, 64)
	e := &Encoder{}
	e.Init(buf)

	e.EncodeDirectBits(0x2A, 6)
	e.EncodeDirectBits(0, 4)
	e.EncodeDirectBits(0xFFFFFFFF, 32)
	e.Flush()

	if len(e.Bytes()) == 0 {
		t.Fatal("expected non-empty output")
	}
}

// TestFlushLength verifies Flush on a freshly initialized coder emits
// exactly five bytes: one per shiftLow call, with no pending 0xFF run.
func TestFlushLength(t *testing.T) {
	buf := make([]byte, 0, 64)
	e := &Encoder{}
	e.Init(buf)
	before := len(e.Bytes())
	e.Flush()
	if got := len(e.Bytes()) - before; got != 5 {
		t.Fatalf("Flush on freshly-initialized coder produced %d bytes, want 5", got)
	}
}
