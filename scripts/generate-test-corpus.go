//go:build ignore

// Package main generates a synthetic corpus for benchmarking sift.
// Usage: go run scripts/generate-test-corpus.go -files 4 -bytes 100000000 -output testdata/bench
//
// Each file is a stream of random '0' and '1' bytes, so the needle "111"
// occurs at a predictable density and matches routinely straddle chunk
// boundaries. Generation is seeded and skips files that already exist,
// making repeated benchmark runs cheap.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numFiles  = flag.Int("files", 4, "Number of corpus files to generate")
	fileBytes = flag.Int("bytes", 100_000_000, "Size of each file in bytes")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 0, "Random seed for reproducibility")
	needle    = flag.String("plant", "", "Optional needle to plant across chunk boundaries")
	chunkSize = flag.Int("chunk-size", 1_000_000, "Offset stride for planted needles")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	for i := 0; i < *numFiles; i++ {
		path := filepath.Join(*outputDir, fmt.Sprintf("%d.in", i))
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Skipping %s (exists)\n", path)
			continue
		}

		fmt.Printf("Writing %s (%d bytes)\n", path, *fileBytes)
		if err := writeCorpusFile(path, rng); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	fmt.Printf("Done: %d files in %s\n", *numFiles, *outputDir)
	return nil
}

func writeCorpusFile(path string, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)

	planted := plantOffsets(*fileBytes)
	next := 0

	for pos := 0; pos < *fileBytes; {
		if next < len(planted) && pos == planted[next] {
			if _, err := w.WriteString(*needle); err != nil {
				return err
			}
			pos += len(*needle)
			next++
			continue
		}
		if err := w.WriteByte(byte('0' + rng.Intn(2))); err != nil {
			return err
		}
		pos++
	}

	return w.Flush()
}

// plantOffsets places one needle straddling every chunk boundary, which is
// the worst case for boundary handling: the match starts in one chunk's
// search range and ends in the next one's.
func plantOffsets(size int) []int {
	if *needle == "" {
		return nil
	}
	var offsets []int
	for off := *chunkSize - len(*needle)/2; off+len(*needle) <= size; off += *chunkSize {
		if off >= 0 {
			offsets = append(offsets, off)
		}
	}
	return offsets
}
