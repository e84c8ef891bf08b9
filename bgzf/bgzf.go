// Package bgzf implements the reference [codec.Codec] for pooled-writer:
// block gzip (BGZF). Each block is an independent, self-contained gzip
// member carrying a BC extra subfield that records the member's total
// on-disk size minus one, exactly as produced by bgzip/htslib/samtools. Compression
// itself is delegated to github.com/klauspost/compress/flate.
package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/flate"

	"github.com/fulcrumgenomics/pooled-writer/codec"
)

const (
	// BlockSize is the maximum uncompressed payload of a single BGZF
	// block, per the format's own limit.
	BlockSize = 65280

	// DefaultCompressionLevel matches bgzip's own default.
	DefaultCompressionLevel = 6

	minLevel = 0
	maxLevel = 9

	blockHeaderLen  = 18 // gzip header (10) + BC extra subfield (6) + XLEN(2)
	blockTrailerLen = 8  // CRC32 + ISIZE
)

// eofBlock is the fixed 28-byte empty BGZF block that terminates a valid
// stream, byte-identical to the one bgzip/htslib append on close.
var eofBlock = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Codec is the reference block-gzip [codec.Codec].
type Codec struct{}

var _ codec.Codec = Codec{}

func (Codec) BlockSize() int    { return BlockSize }
func (Codec) DefaultLevel() int { return DefaultCompressionLevel }

// ValidateLevel accepts any level DEFLATE itself accepts (0..9).
func (Codec) ValidateLevel(level int) (int, error) {
	if level < minLevel || level > maxLevel {
		return 0, fmt.Errorf("bgzf: compression level %d outside [%d, %d]", level, minLevel, maxLevel)
	}
	return level, nil
}

func (Codec) New(level int) codec.Compressor {
	return &Compressor{level: level}
}

// Compressor compresses successive blocks into independent BGZF members.
// A Compressor is not safe for concurrent use; the pool constructs one
// per worker goroutine.
type Compressor struct {
	level int
}

var _ codec.Compressor = (*Compressor)(nil)

// Compress appends one BGZF block for input to output; an empty input
// appends no data block. When isLast is true the 28-byte empty EOF block
// is appended after it, terminating the stream.
func (c *Compressor) Compress(input []byte, output *bytes.Buffer, isLast bool) error {
	if len(input) > 0 {
		if err := c.writeBlock(input, output); err != nil {
			return fmt.Errorf("bgzf: %w", err)
		}
	}
	if isLast {
		output.Write(eofBlock)
	}
	return nil
}

// writeBlock deflates input into a single self-contained BGZF member:
// header (with BC subfield payload filled in after the member's total
// size is known), raw DEFLATE data, then CRC32/ISIZE trailer.
func (c *Compressor) writeBlock(input []byte, output *bytes.Buffer) error {
	var deflated bytes.Buffer
	fw, err := flate.NewWriter(&deflated, c.level)
	if err != nil {
		return fmt.Errorf("constructing deflate writer: %w", err)
	}
	if _, err := fw.Write(input); err != nil {
		return fmt.Errorf("deflating block: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing deflate stream: %w", err)
	}

	totalSize := blockHeaderLen + deflated.Len() + blockTrailerLen
	if totalSize > 1<<16 {
		return fmt.Errorf("compressed block of %d bytes exceeds BGZF's 64KiB member limit", totalSize)
	}

	header := [blockHeaderLen]byte{
		0x1f, 0x8b, 0x08, 0x04, // gzip magic, deflate, FEXTRA
		0x00, 0x00, 0x00, 0x00, // mtime (unset)
		0x00, 0xff, // XFL, OS (unknown)
		0x06, 0x00, // XLEN = 6
		0x42, 0x43, // subfield ID "BC"
		0x02, 0x00, // subfield LEN = 2
		0x00, 0x00, // BSIZE placeholder, filled in below
	}
	binary.LittleEndian.PutUint16(header[16:18], uint16(totalSize-1))
	output.Write(header[:])
	output.Write(deflated.Bytes())

	var trailer [blockTrailerLen]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(input))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(input)))
	output.Write(trailer[:])

	return nil
}
