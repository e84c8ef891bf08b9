package pooledwriter

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// pollInterval is the idle throttle a worker sleeps for when neither the
// compressor queue nor the write-ready queue yielded work on an
// iteration.
const pollInterval = 25 * time.Millisecond

// sinkHandle pairs a Sink with the mutex that enforces exclusive access:
// at most one worker may be writing to a given sink at a time.
type sinkHandle struct {
	mu   chanMutex
	sink Sink
}

// chanMutex is a channel-based mutex. It is used here instead of
// sync.Mutex purely so a worker can, in principle, select on it alongside
// other channels; in this package it is always used with plain
// Lock/Unlock, so a sync.Mutex would work identically.
type chanMutex struct {
	ch chan struct{}
}

func newChanMutex() chanMutex {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return chanMutex{ch: ch}
}

func (m chanMutex) Lock()   { <-m.ch }
func (m chanMutex) Unlock() { m.ch <- struct{}{} }

// worker is the per-goroutine state of one member of the pool's worker
// group. Each worker owns its own Compressor instance, never shared with
// its siblings, and shares everything else with them.
type worker struct {
	id int

	compressor Compressor

	compressorRx <-chan compressionJob
	sinkQueues   []chan chan []byte
	sinks        []*sinkHandle
	ready        *readyQueue
	shutdown     <-chan struct{}

	logger *zap.Logger
}

// run executes the worker loop until shutdown is both requested and
// every queue has drained. It returns the first error it encounters;
// other workers keep running independently.
func (w *worker) run() error {
	for {
		didSomething, err := w.tryCompress()
		if err != nil {
			return err
		}

		wroteSomething, err := w.tryWrite()
		if err != nil {
			return err
		}
		didSomething = didSomething || wroteSomething

		if !didSomething {
			if w.shouldTerminate() {
				return nil
			}
			time.Sleep(pollInterval)
		}
	}
}

// tryCompress performs a single non-blocking attempt to pop one
// compression job and compress it.
func (w *worker) tryCompress() (bool, error) {
	select {
	case job, ok := <-w.compressorRx:
		if !ok {
			return false, nil
		}
		var out bytes.Buffer
		if err := w.compressor.Compress(job.input, &out, job.isLast); err != nil {
			// Close the reply so the writing side doesn't block
			// forever waiting for a value that will never arrive.
			close(job.reply)
			w.ready.push(job.sinkIndex)
			poolErr := newPoolError(ErrCompression, fmt.Errorf("worker %d: sink %d: %w", w.id, job.sinkIndex, err))
			w.logger.Warn("compression failed", zap.Int("sink", job.sinkIndex), zap.Error(err))
			return true, poolErr
		}
		job.reply <- out.Bytes()
		w.ready.push(job.sinkIndex)
		return true, nil
	default:
		return false, nil
	}
}

// tryWrite performs a single non-blocking attempt to pop one write-ready
// signal and drain the corresponding compressed block to its sink.
func (w *worker) tryWrite() (bool, error) {
	sinkIndex, ok := w.ready.tryPop()
	if !ok {
		return false, nil
	}

	handle := w.sinks[sinkIndex]
	handle.mu.Lock()
	defer handle.mu.Unlock()

	replyCh, ok := <-w.sinkQueues[sinkIndex]
	if !ok {
		return true, nil
	}

	data, ok := <-replyCh
	if !ok {
		return true, newPoolError(ErrChannelReceive, fmt.Errorf("worker %d: sink %d: compressed reply never arrived", w.id, sinkIndex))
	}

	if _, err := handle.sink.Write(data); err != nil {
		w.logger.Warn("sink write failed", zap.Int("sink", sinkIndex), zap.Error(err))
		return true, newPoolError(ErrIO, fmt.Errorf("worker %d: sink %d: %w", w.id, sinkIndex, err))
	}
	return true, nil
}

// shouldTerminate reports whether every drain condition holds on this
// iteration: shutdown has been requested, and the write-ready queue,
// compressor queue, and every per-sink ordered queue are all empty.
func (w *worker) shouldTerminate() bool {
	select {
	case <-w.shutdown:
	default:
		return false
	}

	if !w.ready.empty() {
		return false
	}
	if len(w.compressorRx) != 0 {
		return false
	}
	for _, q := range w.sinkQueues {
		if len(q) != 0 {
			return false
		}
	}
	return true
}
