package service

import (
	"context"

	"github.com/linsalefe/pos-plataform/internal/domain"
)

// ChunkWriter mutates a channel's knowledge chunks.
type ChunkWriter interface {
	InsertChunk(ctx context.Context, chunk *domain.DocumentChunk) error
	DeleteChunksByTitle(ctx context.Context, channelID int64, title string) (int64, error)
}

// MessageWriter persists conversation messages.
type MessageWriter interface {
	InsertMessage(ctx context.Context, msg *domain.Message) error
}

// SummaryWriter maintains the per-contact conversation cards.
type SummaryWriter interface {
	RecordAIReply(ctx context.Context, contactID string, channelID int64, lead domain.LeadContext) error
}

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Chunks() ChunkWriter
	Messages() MessageWriter
	Summaries() SummaryWriter
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
