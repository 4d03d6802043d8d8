package model

// DocumentChunk is one embedded slice of a logical document. Chunks of the
// same document share an ID prefix: "<base>-chunk-<index>".
type DocumentChunk struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"-"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	UploadedAt  int64     `json:"uploaded_at"`
}

// DocumentSummary is the grouped listing view of a logical document.
type DocumentSummary struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt int64  `json:"uploaded_at"`
}
