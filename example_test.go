package pooledwriter_test

import (
	"bytes"
	"fmt"

	pooledwriter "github.com/fulcrumgenomics/pooled-writer"
)

// This example exchanges three sinks for three PooledWriters sharing a
// single small pool, writes to each out of order, and closes them down
// cleanly. Each sink still receives its own bytes in the order they were
// written to it, regardless of the order the three writers happened to
// finish compressing in.
func Example() {
	var first, second, third bytes.Buffer

	builder := pooledwriter.NewBuilder(20, 4)
	w1 := builder.Exchange(pooledwriter.NewSink(&first))
	w2 := builder.Exchange(pooledwriter.NewSink(&second))
	w3 := builder.Exchange(pooledwriter.NewSink(&third))

	pool, err := builder.Build()
	if err != nil {
		panic(err)
	}

	fmt.Fprint(w2, "this is writer 2")
	fmt.Fprint(w1, "this is writer 1")
	fmt.Fprint(w3, "this is writer 3")

	for _, w := range []*pooledwriter.PooledWriter{w1, w2, w3} {
		if err := w.Close(); err != nil {
			panic(err)
		}
	}
	if err := pool.StopPool(); err != nil {
		panic(err)
	}

	fmt.Println(first.Len() > 0, second.Len() > 0, third.Len() > 0)
	// Output: true true true
}
