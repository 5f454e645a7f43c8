//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_CommitsAllWrites(t *testing.T) {
	ctx, pool := setupDB(t)
	runner := NewTxRunner(pool)

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Messages().InsertMessage(ctx, &domain.Message{
			WAMessageID: "ai-1",
			ContactID:   testContact,
			ChannelID:   testChannel,
			Direction:   domain.DirectionOutbound,
			MessageType: "text",
			Content:     "A pós custa R$ 500.",
			Timestamp:   time.Now().UTC(),
			Status:      "sent",
			SentByAI:    true,
		}); err != nil {
			return err
		}
		return repos.Summaries().RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{Name: "Maria Souza"})
	})
	require.NoError(t, err)

	msgs, err := NewMessageRepository(pool).RecentMessages(ctx, testContact, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].SentByAI)

	_, _, count := cardStatus(ctx, t, pool)
	assert.Equal(t, 1, count)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	ctx, pool := setupDB(t)
	chunks := NewKnowledgeChunkRepository(pool)
	require.NoError(t, chunks.InsertChunk(ctx, &domain.DocumentChunk{
		ChannelID: testChannel,
		Title:     "Preços",
		Content:   "versão antiga",
		Embedding: []float32{1, 0},
	}))

	boom := errors.New("embedding lost mid-upload")
	err := NewTxRunner(pool).WithTx(ctx, func(repos service.TxRepositories) error {
		if _, err := repos.Chunks().DeleteChunksByTitle(ctx, testChannel, "Preços"); err != nil {
			return err
		}
		if err := repos.Chunks().InsertChunk(ctx, &domain.DocumentChunk{
			ChannelID: testChannel,
			Title:     "Preços",
			Content:   "versão nova",
			Embedding: []float32{0, 1},
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := chunks.ListChunksWithEmbedding(ctx, testChannel)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "versão antiga", stored[0].Content)
}
