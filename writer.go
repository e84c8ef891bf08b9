package pooledwriter

import (
	"bytes"
	"io"
	"runtime"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// PooledWriter is the producer-facing handle returned by
// [Builder.Exchange] in place of the raw Sink. It is not safe for
// concurrent use by multiple goroutines; each PooledWriter has a single
// owner.
type PooledWriter struct {
	sinkIndex    int
	compressorTx chan<- compressionJob
	writerTx     chan<- chan []byte
	buffer       *bytes.Buffer
	blockSize    int
	logger       *zap.Logger
	closed       atomic.Bool
}

var (
	_ io.Writer = (*PooledWriter)(nil)
)

func newPooledWriter(index int, blockSize int, compressorTx chan<- compressionJob, writerTx chan<- chan []byte, logger *zap.Logger) *PooledWriter {
	pw := &PooledWriter{
		sinkIndex:    index,
		compressorTx: compressorTx,
		writerTx:     writerTx,
		buffer:       bytes.NewBuffer(make([]byte, 0, blockSize)),
		blockSize:    blockSize,
		logger:       logger,
	}
	// A best-effort safety net for callers that drop a PooledWriter
	// instead of closing it. Go has no destructor; this is the idiomatic
	// substitute, the same one the standard library uses for *os.File.
	runtime.SetFinalizer(pw, finalizePooledWriter)
	return pw
}

func finalizePooledWriter(pw *PooledWriter) {
	if pw.closed.Swap(true) {
		return
	}
	if err := pw.flushBytes(true); err != nil {
		pw.logger.Warn("pooled writer dropped without Close and terminal flush failed",
			zap.Int("sink", pw.sinkIndex), zap.Error(err))
	}
}

// bufferFull reports whether the internal buffer has reached BlockSize.
func (w *PooledWriter) bufferFull() bool {
	return w.buffer.Len() >= w.blockSize
}

// Write appends buf to the internal buffer, dispatching full blocks as it
// goes. It always consumes the entire slice absent a channel failure.
func (w *PooledWriter) Write(buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		room := w.blockSize - w.buffer.Len()
		n := len(buf) - written
		if n > room {
			n = room
		}
		w.buffer.Write(buf[written : written+n])
		written += n
		if w.bufferFull() {
			if err := w.sendBlock(false); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush dispatches whatever is currently buffered as a non-terminal block
// (possibly short, possibly empty). It does not close the stream, and
// does not guarantee the bytes have reached the sink when it returns —
// only that they have been dispatched as a compression job.
func (w *PooledWriter) Flush() error {
	return w.flushBytes(false)
}

// Close consumes the writer, dispatching one terminal block carrying the
// residual buffer contents. It is safe to call Close more than once.
func (w *PooledWriter) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	runtime.SetFinalizer(w, nil)
	return w.flushBytes(true)
}

// flushBytes unconditionally dispatches the current buffer as a block,
// terminal or not, whatever it currently holds — including nothing at
// all. A caller that wants to avoid emitting empty blocks should check
// the buffer itself before calling Flush.
func (w *PooledWriter) flushBytes(isLast bool) error {
	return w.sendBlock(isLast)
}

// sendBlock performs the two sends in the order that preserves per-sink
// order: the reply placeholder is enqueued on the sink's ordered queue
// strictly before the compression job that will eventually fill it is
// submitted.
func (w *PooledWriter) sendBlock(isLast bool) error {
	input := make([]byte, w.buffer.Len())
	copy(input, w.buffer.Bytes())
	w.buffer.Reset()

	job, reply := newCompressionJob(w.sinkIndex, input, isLast)

	// Enqueue the placeholder before submitting the job: this ordering
	// is what lets a reader drain a sink's blocks in submission order
	// even though compression itself may finish out of order. Both
	// sends block when their target channel is at capacity, which is
	// how producer backpressure is implemented.
	if err := safeSend(w.writerTx, reply); err != nil {
		return err
	}
	return safeSend(w.compressorTx, job)
}
