package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
	"github.com/samber/lo"
)

// KnowledgeChunkStore is the read side of the knowledge base.
type KnowledgeChunkStore interface {
	ChunkReader
	ListDocuments(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error)
	DeleteChunksByTitle(ctx context.Context, channelID int64, title string) (int64, error)
}

// DocumentArchive keeps a copy of every uploaded source file.
type DocumentArchive interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// UploadDocumentInput is a raw document to add to a channel's knowledge base.
type UploadDocumentInput struct {
	ChannelID   int64
	Title       string
	Filename    string
	ContentType string
	Content     []byte
}

// UploadDocumentResult reports what was stored.
type UploadDocumentResult struct {
	Title          string
	ChunksSaved    int
	TotalTokens    int
	ChunksReplaced int64
	ArchiveKey     string
}

// KnowledgeService manages the documents of the channel knowledge bases.
type KnowledgeService struct {
	chunks   KnowledgeChunkStore
	tx       TxRunner
	chunker  *Chunker
	embedder EmbeddingClient
	archive  DocumentArchive
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewKnowledgeService creates a KnowledgeService. archive may be nil.
func NewKnowledgeService(
	chunks KnowledgeChunkStore,
	tx TxRunner,
	chunker *Chunker,
	embedder EmbeddingClient,
	archive DocumentArchive,
	m *metrics.Metrics,
) *KnowledgeService {
	return &KnowledgeService{
		chunks:   chunks,
		tx:       tx,
		chunker:  chunker,
		embedder: embedder,
		archive:  archive,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates, chunks and embeds a document, then replaces any earlier
// document with the same title in a single transaction. Validation happens
// before any embedding call, and a failed embedding stores nothing.
func (s *KnowledgeService) Upload(ctx context.Context, input UploadDocumentInput) (*UploadDocumentResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Upload", telemetry.SpanAttributes{
		ChannelID: input.ChannelID,
		Operation: "upload",
	})
	defer span.End()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return nil, domain.ErrTitleTooLong
	}
	if !utf8.Valid(input.Content) {
		return nil, domain.ErrDocumentNotText
	}
	text := string(input.Content)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	drafts := s.chunker.Chunk(text, title)
	if len(drafts) == 0 {
		return nil, domain.ErrUnchunkableDocument
	}

	createdAt := s.now()
	chunks := make([]*domain.DocumentChunk, 0, len(drafts))
	for _, d := range drafts {
		vec, err := s.embedder.GenerateEmbedding(ctx, d.Content)
		if err != nil {
			span.SetError(err)
			return nil, upstreamError(fmt.Sprintf("failed to embed chunk %d", d.ChunkIndex), err)
		}
		chunks = append(chunks, &domain.DocumentChunk{
			ChannelID:  input.ChannelID,
			Title:      title,
			Content:    d.Content,
			ChunkIndex: d.ChunkIndex,
			TokenCount: d.TokenCount,
			Embedding:  vec,
			CreatedAt:  createdAt,
		})
	}

	var replaced int64
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		n, err := repos.Chunks().DeleteChunksByTitle(ctx, input.ChannelID, title)
		if err != nil {
			return fmt.Errorf("failed to delete previous chunks: %w", err)
		}
		replaced = n
		for _, c := range chunks {
			if err := repos.Chunks().InsertChunk(ctx, c); err != nil {
				return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	s.metrics.ChunksIngested(len(chunks))

	result := &UploadDocumentResult{
		Title:          title,
		ChunksSaved:    len(chunks),
		TotalTokens:    lo.SumBy(drafts, func(d domain.ChunkDraft) int { return d.TokenCount }),
		ChunksReplaced: replaced,
	}
	result.ArchiveKey = s.archiveSource(ctx, input, title, createdAt)
	return result, nil
}

// archiveSource stores the raw upload when an archive is configured. Failure
// only loses the archived copy.
func (s *KnowledgeService) archiveSource(ctx context.Context, input UploadDocumentInput, title string, at time.Time) string {
	if s.archive == nil {
		return ""
	}
	name := input.Filename
	if name == "" {
		name = title + ".txt"
	}
	key := archivePrefix(input.ChannelID, title) + at.Format("20060102T150405Z") + "-" + path.Base(name)
	contentType := input.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	if err := s.archive.PutObject(ctx, key, input.Content, contentType); err != nil {
		telemetry.ReportSuppressed(ctx, "knowledge_archive", err, "key", key)
		return ""
	}
	return key
}

// List returns the channel's documents, newest first.
func (s *KnowledgeService) List(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.List", telemetry.SpanAttributes{
		ChannelID: channelID,
		Operation: "list",
	})
	defer span.End()

	return s.chunks.ListDocuments(ctx, channelID)
}

// Delete removes every chunk of a document and returns how many were removed.
func (s *KnowledgeService) Delete(ctx context.Context, channelID int64, title string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		ChannelID: channelID,
		Operation: "delete",
	})
	defer span.End()

	n, err := s.chunks.DeleteChunksByTitle(ctx, channelID, title)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrDocumentNotFound
	}
	s.purgeArchive(ctx, channelID, title)
	return n, nil
}

// purgeArchive drops the archived sources of a deleted document. Failure
// only leaves orphaned copies behind.
func (s *KnowledgeService) purgeArchive(ctx context.Context, channelID int64, title string) {
	if s.archive == nil {
		return
	}
	prefix := archivePrefix(channelID, title)
	if _, err := s.archive.DeletePrefix(ctx, prefix); err != nil {
		telemetry.ReportSuppressed(ctx, "knowledge_archive", err, "prefix", prefix)
	}
}

// archivePrefix groups every archived upload of a document. The title is
// escaped so that it never adds path segments.
func archivePrefix(channelID int64, title string) string {
	return fmt.Sprintf("knowledge/%d/%s/", channelID, url.PathEscape(title))
}

func upstreamError(message string, err error) error {
	var embErr *domain.EmbeddingError
	if errors.As(err, &embErr) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
