package entity

import "time"

// ChunkMetadata carries the provenance of a chunk so an answer can always be
// traced back to its source document.
type ChunkMetadata struct {
	SourceFile string `json:"source_file"`
	FileType   string `json:"file_type"`
	ChunkIndex int    `json:"chunk_index"`
}

// Chunk is a bounded-length slice of a source document's text, the unit of
// embedding and retrieval. Immutable once created.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// EmbeddedChunk pairs a chunk with its embedding vector. Every vector in a
// given index has identical dimensionality.
type EmbeddedChunk struct {
	Chunk  Chunk     `json:"chunk"`
	Vector []float64 `json:"vector"`
}

// SearchResult is a retrieved chunk with its similarity score, higher is closer.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Turn roles in a conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a session's conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FileFailure reports a single document that could not be ingested. Failures
// are collected per file and never abort the rest of the batch.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IngestReport summarizes one ingestion batch.
type IngestReport struct {
	DocumentsProcessed int           `json:"documents_processed"`
	ChunksIndexed      int           `json:"chunks_indexed"`
	Failures           []FileFailure `json:"failures,omitempty"`
}

// IndexStats describes the currently persisted vector index.
type IndexStats struct {
	Entries   int    `json:"entries"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
}
