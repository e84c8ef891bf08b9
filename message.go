package pooledwriter

// compressionJob is the unit of work flowing from a PooledWriter to the
// shared compressor queue. input is treated as immutable and is never
// retained past the worker's Compress call. reply is the send side of a
// single-use channel that carries the eventual compressed bytes back to
// whichever worker dequeues the matching placeholder from the sink's
// ordered queue.
type compressionJob struct {
	sinkIndex int
	input     []byte
	isLast    bool
	reply     chan []byte
}

// newCompressionJob creates a compression job together with the receive
// side of its one-shot reply channel, which the caller enqueues on the
// destination sink's ordered queue before the job itself is submitted.
func newCompressionJob(sinkIndex int, input []byte, isLast bool) (compressionJob, chan []byte) {
	reply := make(chan []byte, 1)
	return compressionJob{
		sinkIndex: sinkIndex,
		input:     input,
		isLast:    isLast,
		reply:     reply,
	}, reply
}
