// Package codec defines the sole extension point of a pooled-writer Pool:
// the block compression capability. It is kept as its own package so that
// a concrete codec implementation (e.g. bgzf) can depend on these
// interfaces without creating an import cycle back to the root package,
// which depends on a concrete codec for its own default.
package codec

import "bytes"

// Compressor is a stateful, per-worker block compressor. A Pool
// constructs exactly one per worker goroutine by calling Codec.New with
// the pool's configured level; instances are never shared between
// workers.
type Compressor interface {
	// Compress appends one compressed block of input to output. When
	// isLast is true, and the codec's block format defines one, a
	// terminator is also appended.
	Compress(input []byte, output *bytes.Buffer, isLast bool) error
}

// Codec is a replaceable block compression capability. Any codec that
// emits independent blocks no larger than BlockSize, accepts a
// compression level in its own defined range, and can append an optional
// terminal marker satisfies this contract.
type Codec interface {
	// BlockSize is the maximum uncompressed input accepted per block.
	// It sizes every PooledWriter's internal buffer.
	BlockSize() int
	// DefaultLevel returns the codec's default compression level.
	DefaultLevel() int
	// ValidateLevel checks that level is within the codec's accepted
	// range, returning it unchanged on success.
	ValidateLevel(level int) (int, error)
	// New constructs a fresh Compressor instance at the given level.
	New(level int) Compressor
}
