package model

// Chunk is the unit of retrieval: a bounded slice of extracted document text
// with its position inside the document.
type Chunk struct {
	FileID string `json:"file_id"`
	Seq    int    `json:"seq"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// ScoredChunk is a retrieval result with its similarity score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}
