package pooledwriter

import "github.com/fulcrumgenomics/pooled-writer/codec"

// Compressor is a stateful, per-worker block compressor. See
// [github.com/fulcrumgenomics/pooled-writer/codec.Compressor].
type Compressor = codec.Compressor

// Codec is the sole extension point of a Pool: a replaceable block
// compression capability. See
// [github.com/fulcrumgenomics/pooled-writer/codec.Codec].
type Codec = codec.Codec
