//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(ctx context.Context, t *testing.T, repo *MessageRepository, id string, dir domain.Direction, content string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.InsertMessage(ctx, &domain.Message{
		WAMessageID: id,
		ContactID:   testContact,
		ChannelID:   testChannel,
		Direction:   dir,
		MessageType: "text",
		Content:     content,
		Timestamp:   at,
		Status:      "received",
	}))
}

func cardStatus(ctx context.Context, t *testing.T, pool *pgxpool.Pool) (string, bool, int) {
	t.Helper()
	var (
		status string
		took   bool
		count  int
	)
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT status, human_took_over, ai_messages_count FROM ai_conversation_summaries
		 WHERE contact_wa_id = $1 AND channel_id = $2`,
		testContact, testChannel,
	).Scan(&status, &took, &count))
	return status, took, count
}

func TestMessageRepository_RecentMessages(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewMessageRepository(pool)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seedMessage(ctx, t, repo, "wamid.1", domain.DirectionInbound, "Oi", base)
	seedMessage(ctx, t, repo, "wamid.2", domain.DirectionOutbound, "Olá! Como posso ajudar?", base.Add(time.Minute))
	seedMessage(ctx, t, repo, "wamid.3", domain.DirectionInbound, "Quanto custa o curso?", base.Add(2*time.Minute))

	msgs, err := repo.RecentMessages(ctx, testContact, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Quanto custa o curso?", msgs[0].Content)
	assert.Equal(t, domain.DirectionInbound, msgs[0].Direction)
	assert.Equal(t, "Olá! Como posso ajudar?", msgs[1].Content)
	assert.Equal(t, testChannel, msgs[1].ChannelID)

	none, err := repo.RecentMessages(ctx, "5511000000000", 30)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestContactRepository_GetContactName(t *testing.T) {
	ctx, pool := setupDB(t)
	testutil.SeedContact(ctx, t, pool, "5511888880000", "", testChannel)
	repo := NewContactRepository(pool)

	name, ok, err := repo.GetContactName(ctx, testContact)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Maria Souza", name)

	_, ok, err = repo.GetContactName(ctx, "5511888880000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.GetContactName(ctx, "5511000000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContactRepository_SetAIActive(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewContactRepository(pool)

	ok, err := repo.SetAIActive(ctx, testContact, true)
	require.NoError(t, err)
	assert.True(t, ok)

	var active bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT ai_active FROM contacts WHERE wa_id = $1`, testContact).Scan(&active))
	assert.True(t, active)

	ok, err = repo.SetAIActive(ctx, "5511000000000", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummaryRepository_RecordAIReply(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewSummaryRepository(pool)

	require.NoError(t, repo.RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{Name: "Maria Souza"}))
	require.NoError(t, repo.RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{Name: "Outro", Course: "Saúde Mental"}))

	status, took, count := cardStatus(ctx, t, pool)
	assert.Equal(t, domain.SummaryStatusInProgress, status)
	assert.False(t, took)
	assert.Equal(t, 2, count)

	course, ok, err := repo.GetLeadCourse(ctx, testContact, testChannel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Saúde Mental", course)

	var name string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT lead_name FROM ai_conversation_summaries WHERE contact_wa_id = $1`, testContact,
	).Scan(&name))
	assert.Equal(t, "Maria Souza", name)
}

func TestSummaryRepository_GetLeadCourseMissing(t *testing.T) {
	ctx, pool := setupDB(t)

	_, ok, err := NewSummaryRepository(pool).GetLeadCourse(ctx, testContact, testChannel)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContactRepository_HandOff(t *testing.T) {
	ctx, pool := setupDB(t)
	contacts := NewContactRepository(pool)

	_, ok, err := contacts.HandOff(ctx, testContact)
	require.NoError(t, err)
	assert.False(t, ok, "no open card yet")

	require.NoError(t, NewSummaryRepository(pool).RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{}))

	channelID, ok, err := contacts.HandOff(ctx, testContact)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testChannel, channelID)

	status, took, _ := cardStatus(ctx, t, pool)
	assert.Equal(t, domain.SummaryStatusAwaitingHuman, status)
	assert.True(t, took)

	_, ok, err = contacts.HandOff(ctx, testContact)
	require.NoError(t, err)
	assert.False(t, ok, "card already handed off")
}

func TestSummaryRepository_UpdateSummaryAndListStale(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewSummaryRepository(pool)

	err := repo.UpdateSummary(ctx, testContact, testChannel, "nada")
	assert.ErrorIs(t, err, domain.ErrSummaryNotFound)

	require.NoError(t, repo.RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{}))

	stale, err := repo.ListStale(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, testContact, stale[0].ContactID)
	assert.Equal(t, testChannel, stale[0].ChannelID)
	assert.Equal(t, 1, stale[0].AIMessagesCount)

	require.NoError(t, repo.UpdateSummary(ctx, testContact, testChannel, "Lead quer saber preços."))
	stale, err = repo.ListStale(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stale)

	require.NoError(t, repo.RecordAIReply(ctx, testContact, testChannel, domain.LeadContext{}))
	stale, err = repo.ListStale(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "Lead quer saber preços.", stale[0].Summary)
}
