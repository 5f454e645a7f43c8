package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

// KnowledgeChunkRepository handles persistence of embedded knowledge chunks.
type KnowledgeChunkRepository struct {
	db dbtx
}

func NewKnowledgeChunkRepository(pool *pgxpool.Pool) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: pool}
}

func NewKnowledgeChunkRepositoryWithTx(tx pgx.Tx) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: tx}
}

// InsertChunk stores one chunk with its embedding in the textual array form.
func (r *KnowledgeChunkRepository) InsertChunk(ctx context.Context, c *domain.DocumentChunk) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var embedding any
	if len(c.Embedding) > 0 {
		embedding = domain.EncodeEmbedding(c.Embedding)
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO knowledge_documents
			(channel_id, title, content, embedding, chunk_index, token_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		c.ChannelID,
		c.Title,
		c.Content,
		embedding,
		c.ChunkIndex,
		c.TokenCount,
		createdAt,
	).Scan(&c.ID)
}

// DeleteChunksByTitle removes every chunk of a document and returns how many
// rows were deleted.
func (r *KnowledgeChunkRepository) DeleteChunksByTitle(ctx context.Context, channelID int64, title string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_documents WHERE channel_id = $1 AND title = $2`,
		channelID, title,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListChunksWithEmbedding returns the chunks of a channel that carry an
// embedding, in insertion order. The embedding is returned undecoded.
func (r *KnowledgeChunkRepository) ListChunksWithEmbedding(ctx context.Context, channelID int64) ([]domain.StoredChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, content, embedding
		 FROM knowledge_documents
		 WHERE channel_id = $1 AND embedding IS NOT NULL
		 ORDER BY id`,
		channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.StoredChunk
	for rows.Next() {
		var c domain.StoredChunk
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &c.RawEmbedding); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ListDocuments groups the chunks of a channel by title, newest first.
func (r *KnowledgeChunkRepository) ListDocuments(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title, COUNT(id), COALESCE(SUM(token_count), 0), MIN(created_at)
		 FROM knowledge_documents
		 WHERE channel_id = $1
		 GROUP BY title
		 ORDER BY MIN(created_at) DESC NULLS LAST, title`,
		channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.DocumentSummary{}
	for rows.Next() {
		var (
			d         domain.DocumentSummary
			createdAt *time.Time
		)
		if err := rows.Scan(&d.Title, &d.Chunks, &d.TotalTokens, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
