// Command poolgzip fans a set of input files out to one pooled, bgzf
// compressing writer per file, sharing a fixed-size compressor/writer
// goroutine pool across all of them.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	pooledwriter "github.com/fulcrumgenomics/pooled-writer"
)

func main() {
	var (
		outDirFlag  string
		threadsFlag int
		queueFlag   int
		levelFlag   int
		verboseFlag bool
	)

	flag.StringVar(&outDirFlag, "o", ".", "output directory for compressed files")
	flag.IntVar(&threadsFlag, "t", 4, "number of worker goroutines")
	flag.IntVar(&queueFlag, "q", 16, "compressor queue depth (must be > threads)")
	flag.IntVar(&levelFlag, "l", 6, "compression level (0-9)")
	flag.BoolVar(&verboseFlag, "v", false, "be verbose")
	flag.Parse()

	var (
		logger *zap.Logger
		err    error
	)
	if verboseFlag {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	inputs := flag.Args()
	if len(inputs) == 0 {
		logger.Fatal("at least one input file is required")
	}

	builder := pooledwriter.NewBuilder(queueFlag, threadsFlag, pooledwriter.WithLogger(logger))
	if _, err := builder.CompressionLevel(levelFlag); err != nil {
		logger.Fatal("invalid compression level", zap.Error(err))
	}

	type job struct {
		in  *os.File
		out *os.File
		pw  *pooledwriter.PooledWriter
	}

	var jobs []job
	var totalBytes int64
	for _, path := range inputs {
		in, err := os.Open(path)
		if err != nil {
			logger.Fatal("failed to open input", zap.String("path", path), zap.Error(err))
		}
		info, err := in.Stat()
		if err != nil {
			logger.Fatal("failed to stat input", zap.String("path", path), zap.Error(err))
		}
		totalBytes += info.Size()

		outPath := filepath.Join(outDirFlag, filepath.Base(path)+".bgz")
		out, err := os.OpenFile(outPath, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			logger.Fatal("failed to open output", zap.String("path", outPath), zap.Error(err))
		}

		jobs = append(jobs, job{in: in, out: out, pw: builder.Exchange(pooledwriter.NewSink(out))})
	}

	pool, err := builder.Build()
	if err != nil {
		logger.Fatal("failed to build pool", zap.Error(err))
	}

	bar := progressbar.DefaultBytes(totalBytes, "compressing")
	for _, j := range jobs {
		if _, err := io.Copy(io.MultiWriter(j.pw, bar), j.in); err != nil {
			logger.Fatal("failed to copy input to pooled writer", zap.Error(err))
		}
		if err := j.pw.Close(); err != nil {
			logger.Fatal("failed to close pooled writer", zap.Error(err))
		}
		_ = j.in.Close()
	}

	if err := pool.StopPool(); err != nil {
		logger.Fatal("pool reported an error", zap.Error(err))
	}
	for _, j := range jobs {
		_ = j.out.Close()
	}

	fmt.Fprintln(os.Stderr, "done")
}
