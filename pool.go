package pooledwriter

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pool orchestrates the worker goroutine group: compression and writing
// for every sink exchanged through its Builder. Construct one with
// [NewBuilder] and [Builder.Build].
type Pool struct {
	compressorTx chan compressionJob
	shutdown     chan struct{}
	sinks        []*sinkHandle

	g *errgroup.Group

	logger *zap.Logger

	stopped atomic.Bool
	stopErr error
}

// panicValue wraps a recovered worker panic so it can travel through
// errgroup's error-returning contract and be re-raised by StopPool once
// every worker has joined.
type panicValue struct {
	value any
}

func (p *panicValue) Error() string {
	return fmt.Sprintf("worker panic: %v", p.value)
}

func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicValue{value: r}
		}
	}()
	return fn()
}

// StopPool waits for the compressor queue to drain, closes the compressor
// and shutdown channels, joins every worker, and finally flushes each
// sink exactly once. It is idempotent; only the first call does any
// work, and every call returns the same error.
//
// Producers are expected to Close or drop their PooledWriters before
// calling StopPool; any that don't will see ErrChannelSend on subsequent
// operations, which is not itself an error of the pool.
func (p *Pool) StopPool() error {
	if p.stopped.Swap(true) {
		return p.stopErr
	}

	for len(p.compressorTx) > 0 {
		time.Sleep(time.Millisecond)
	}
	close(p.compressorTx)
	close(p.shutdown)

	workerErr := p.g.Wait()
	if pv, ok := asPanicValue(workerErr); ok {
		// Flush what we can before re-raising so a panicking worker
		// doesn't strand data that other workers already finished
		// compressing.
		p.flushSinks()
		panic(pv.value)
	}

	flushErr := p.flushSinks()
	p.stopErr = multierr.Append(workerErr, flushErr)
	return p.stopErr
}

func (p *Pool) flushSinks() error {
	var errs error
	for i, h := range p.sinks {
		if err := h.sink.Flush(); err != nil {
			errs = multierr.Append(errs, newPoolError(ErrIO, fmt.Errorf("sink %d: flush: %w", i, err)))
		}
	}
	return errs
}

func asPanicValue(err error) (*panicValue, bool) {
	pv, ok := err.(*panicValue)
	return pv, ok
}
