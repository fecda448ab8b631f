package chunk

import "github.com/Aman-CERP/sift/internal/interval"

// PlanOptions configures chunk planning.
type PlanOptions struct {
	// ChunkSize is the maximum search interval size per chunk.
	// Default: DefaultChunkSize.
	ChunkSize int64

	// Border is the context width added to each read interval.
	// Default: DefaultBorder.
	Border int64
}

// WithDefaults returns options with defaults applied for zero values.
func (o PlanOptions) WithDefaults() PlanOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Border <= 0 {
		o.Border = DefaultBorder
	}
	return o
}

// Plan partitions the file into an ordered sequence of chunks whose search
// intervals cover [0, file.Size) with no gaps or overlaps, each at most
// ChunkSize bytes. Pure transform, no I/O.
//
// The last chunk is split in place until it no longer exceeds ChunkSize:
// its left half replaces it and a new chunk is appended for the remainder.
func Plan(file File, opts PlanOptions) []*Chunk {
	opts = opts.WithDefaults()

	chunks := []*Chunk{New(file, interval.New(0, file.Size), opts.Border)}
	for {
		last := chunks[len(chunks)-1]
		left, right, ok := last.Search.Split(opts.ChunkSize)
		if !ok {
			return chunks
		}
		chunks[len(chunks)-1] = New(file, left, opts.Border)
		chunks = append(chunks, New(file, right, opts.Border))
	}
}
