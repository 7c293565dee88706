// Package chunker splits text into fixed-size character chunks.
package chunker

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// Chunker splits text into consecutive chunks of at most chunkSize
// characters. Chunks never overlap and ignore word or sentence boundaries.
type Chunker struct {
	chunkSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters. Non-positive sizes are ignored.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Split cuts text into chunks counted in runes, so multi-byte characters are
// never split. Empty text produces no chunks.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/c.chunkSize+1)

	for start := 0; start < len(runes); start += c.chunkSize {
		end := min(start+c.chunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
