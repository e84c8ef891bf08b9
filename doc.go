// Package pooledwriter provides a pooled writer and compressor.
//
// # Overview
//
// pooledwriter solves the problem of compressing and writing data to a set
// of sinks using multiple threads, where the number of sinks and threads
// cannot easily be equal. For example writing to hundreds of gzipped files
// using 16 goroutines, or writing to four gzipped files using 32 goroutines.
//
// To accomplish this, a [Pool] is configured via a [Builder] and sinks are
// exchanged for [PooledWriter]s that can be used in place of the original
// sinks. The builder requires a [Codec] implementation; the reference
// implementation is the bgzf subpackage's block-gzip codec.
//
// The pool consists of a single goroutine group: every worker is both a
// compressor and a writer. Concurrency is managed via channels, except
// for the write-ready queue, which is a mutex-guarded slice.
//
// Every time a [PooledWriter]'s internal buffer reaches the codec's block
// size it dispatches two messages, in order:
//
//  1. It enqueues a one-shot reply channel on the corresponding sink's
//     ordered queue. This reserves this block's position in the sink's
//     output order before compression has even started.
//  2. It sends a compression job to the shared compressor queue, carrying
//     the send side of that same reply channel.
//
// Workers loop over the compressor queue and a write-ready queue, never
// blocking on either: when a worker finishes compressing a block it posts
// the destination sink's index onto the write-ready queue; when it pops a
// write-ready index it locks that sink, pulls the oldest queued reply
// channel, and writes the (now-ready) compressed bytes.
//
// Shutdown is managed by closing the compressor channel and the shutdown
// channel; workers drain every queue before exiting so that no dispatched
// block is ever stranded.
package pooledwriter
