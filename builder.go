package pooledwriter

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fulcrumgenomics/pooled-writer/bgzf"
)

// Builder configures and constructs a Pool. Create one with [NewBuilder],
// exchange every Sink you need a PooledWriter for with [Builder.Exchange],
// then call [Builder.Build]. No more sinks may be exchanged afterward.
type Builder struct {
	queueSize int
	threads   int
	codec     Codec
	level     int
	logger    *zap.Logger

	nextIndex    int
	compressorTx chan compressionJob
	sinks        []*sinkHandle
	sinkQueues   []chan chan []byte

	built bool
}

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*Builder)

// WithCodec overrides the default bgzf codec.
func WithCodec(codec Codec) BuilderOption {
	return func(b *Builder) { b.codec = codec }
}

// WithLogger attaches a logger to the pool and every worker it spawns.
// Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a Builder. queueSize must be greater than threads,
// and threads must be at least 1; either violation is a precondition
// fault and panics, since it indicates a programmer error rather than a
// runtime condition a caller could reasonably recover from.
func NewBuilder(queueSize, threads int, opts ...BuilderOption) *Builder {
	if threads < 1 {
		panic("pooledwriter: cannot construct a pool with 0 threads")
	}
	if queueSize <= threads {
		panic(fmt.Sprintf("pooledwriter: queue size (%d) must be > threads (%d)", queueSize, threads))
	}

	b := &Builder{
		queueSize: queueSize,
		threads:   threads,
		codec:     bgzf.Codec{},
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	b.level = b.codec.DefaultLevel()
	b.compressorTx = make(chan compressionJob, queueSize)
	return b
}

// CompressionLevel validates and sets the compression level that will be
// used by the Pool. It must be called before Build; it may be called
// before or after Exchange.
func (b *Builder) CompressionLevel(level int) (*Builder, error) {
	validated, err := b.codec.ValidateLevel(level)
	if err != nil {
		return b, newPoolError(ErrInvalidLevel, err)
	}
	b.level = validated
	return b, nil
}

// Exchange appends sink to the pool-to-be and returns a PooledWriter that
// can be used in its place. Sink indices are assigned densely from 0 in
// exchange order.
func (b *Builder) Exchange(sink Sink) *PooledWriter {
	if b.built {
		panic("pooledwriter: cannot Exchange after Build")
	}

	index := b.nextIndex
	b.nextIndex++

	queue := make(chan chan []byte, b.queueSize)
	b.sinks = append(b.sinks, &sinkHandle{mu: newChanMutex(), sink: sink})
	b.sinkQueues = append(b.sinkQueues, queue)

	return newPooledWriter(index, b.codec.BlockSize(), b.compressorTx, queue, b.logger)
}

// Build consumes the Builder, launches the worker goroutine group, and
// returns the running Pool. No more sinks may be exchanged afterward.
func (b *Builder) Build() (*Pool, error) {
	if b.built {
		panic("pooledwriter: Build called more than once")
	}
	b.built = true

	shutdown := make(chan struct{})
	ready := &readyQueue{}

	g := &errgroup.Group{}
	for i := 0; i < b.threads; i++ {
		w := &worker{
			id:           i,
			compressor:   b.codec.New(b.level),
			compressorRx: b.compressorTx,
			sinkQueues:   b.sinkQueues,
			sinks:        b.sinks,
			ready:        ready,
			shutdown:     shutdown,
			logger:       b.logger.With(zap.Int("worker", i)),
		}
		g.Go(func() error {
			return runRecovered(w.run)
		})
	}

	p := &Pool{
		compressorTx: b.compressorTx,
		shutdown:     shutdown,
		sinks:        b.sinks,
		g:            g,
		logger:       b.logger,
	}
	return p, nil
}
