package domain

import "time"

// MaxTitleLength is the width, in characters, of the stored document title.
const MaxTitleLength = 255

// DocumentChunk is one stored slice of an uploaded knowledge document.
// Chunks sharing (ChannelID, Title) form one logical document.
type DocumentChunk struct {
	ID         int64
	ChannelID  int64
	Title      string
	Content    string
	ChunkIndex int
	TokenCount int
	Embedding  []float32
	CreatedAt  time.Time
}

// ChunkDraft is produced by the chunker before an embedding is attached.
type ChunkDraft struct {
	Title      string
	Content    string
	ChunkIndex int
	TokenCount int
}

// StoredChunk is a chunk as read back for ranking. RawEmbedding keeps the
// serialized column so that undecodable rows can be skipped by the ranker.
type StoredChunk struct {
	ID           int64
	Title        string
	Content      string
	RawEmbedding string
}

// ScoredChunk is a ranked retrieval result.
type ScoredChunk struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// DocumentSummary aggregates the chunks of one document for listings.
type DocumentSummary struct {
	Title       string
	Chunks      int
	TotalTokens int
	CreatedAt   *time.Time
}
