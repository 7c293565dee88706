package entity

// Metadata keys stored alongside every memory vector
const (
	MetadataText      = "text"
	MetadataSource    = "source"
	MetadataChunk     = "chunk"
	MetadataCreatedAt = "created_at"
	MetadataKind      = "kind"
)

// Memory record kinds
const (
	MemoryKindExchange = "exchange"
	MemoryKindDocument = "document"
)

// EmbeddingDimension is the vector size produced by all-MiniLM-L6-v2
const EmbeddingDimension = 384

// MemoryRecord is one vector stored in the memory index. Records are never
// mutated in place; writing the same ID again replaces the previous record.
type MemoryRecord struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// Text returns the serialized text kept in the record metadata
func (r MemoryRecord) Text() string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[MetadataText]
}

// MemoryMatch is a single nearest-neighbour hit returned by a memory query
type MemoryMatch struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// Text returns the stored text of the match or an empty string
func (m MemoryMatch) Text() string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[MetadataText]
}

// IndexSpec describes the vector index the memory store is backed by
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    string
	Cloud     string
	Region    string
}
