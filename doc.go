// Package lzma implements the core of an LZMA encoder: the adaptive-
// probability range coder, the literal/match/rep-match state machine, the
// length and distance coders, and a variant-selection optimizer that
// compares candidate encodings of each LZ77 token and commits the most
// probable one.
//
// This package produces a bare LZMA bitstream compatible with Igor
// Pavlov's reference decoder. It requires no cgo and has no decoder of
// its own: decoding is out of scope (see "Scope" below).
//
// # Scope
//
// The encoder consumes a stream of literal bytes and (distance, length)
// match events supplied by an external LZ77 front end through
// Encoder.EmitLiteral and Encoder.EmitDLCode, and writes compressed
// bytes through a caller-supplied sink. Compress bundles a built-in
// greedy front end for callers without their own. Container
// framing beyond the 5/13-byte LZMA property header — .7z/.zip archive
// glue, CRCs, buffered I/O — is the caller's responsibility.
//
// # Levels
//
// Level selects the dictionary size and whether the variant optimizer
// runs:
//   - 0, 1: straight-through encoding, no variant comparison.
//   - 2, 3: the optimizer compares literal-vs-short-rep-match and
//     several DL-code expansions per token before committing.
//
// # Wire format
//
// The emitted stream is a 5-byte property header (lc, lp, pb, dictionary
// size), an optional 8-byte uncompressed-size field, the range-coded
// token stream, and (if requested) an end-of-stream marker.
package lzma
