package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

// SummaryRepository maintains the per-contact conversation cards.
type SummaryRepository struct {
	db dbtx
}

func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: pool}
}

func NewSummaryRepositoryWithTx(tx pgx.Tx) *SummaryRepository {
	return &SummaryRepository{db: tx}
}

// GetLeadCourse returns the course recorded on the contact's card for a
// channel. The boolean is false when there is no card or no course.
func (r *SummaryRepository) GetLeadCourse(ctx context.Context, contactID string, channelID int64) (string, bool, error) {
	var course *string
	err := r.db.QueryRow(ctx,
		`SELECT lead_course FROM ai_conversation_summaries
		 WHERE contact_wa_id = $1 AND channel_id = $2`,
		contactID, channelID,
	).Scan(&course)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if course == nil || *course == "" {
		return "", false, nil
	}
	return *course, true, nil
}

// RecordAIReply opens the card on the first assistant reply and counts every
// following one. Known lead data fills gaps on the card but never overwrites it.
func (r *SummaryRepository) RecordAIReply(ctx context.Context, contactID string, channelID int64, lead domain.LeadContext) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_conversation_summaries
			(contact_wa_id, channel_id, status, lead_name, lead_course, ai_messages_count)
		 VALUES ($1, $2, $3, $4, $5, 1)
		 ON CONFLICT (contact_wa_id, channel_id) DO UPDATE SET
			ai_messages_count = ai_conversation_summaries.ai_messages_count + 1,
			lead_name = COALESCE(ai_conversation_summaries.lead_name, EXCLUDED.lead_name),
			lead_course = COALESCE(ai_conversation_summaries.lead_course, EXCLUDED.lead_course),
			updated_at = now()`,
		contactID,
		channelID,
		domain.SummaryStatusInProgress,
		nullableString(lead.Name),
		nullableString(lead.Course),
	)
	return err
}

// UpdateSummary stores a summary on the card and marks it fresh. It returns
// domain.ErrSummaryNotFound when the contact has no card on the channel.
func (r *SummaryRepository) UpdateSummary(ctx context.Context, contactID string, channelID int64, summary string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ai_conversation_summaries
		 SET summary = $3, summarized_at = now(), updated_at = now()
		 WHERE contact_wa_id = $1 AND channel_id = $2`,
		contactID, channelID, summary,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSummaryNotFound
	}
	return nil
}

// ListStale returns open cards whose conversation moved since their last
// summary, least recently summarized first.
func (r *SummaryRepository) ListStale(ctx context.Context, limit int) ([]domain.ConversationSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, contact_wa_id, channel_id, status, COALESCE(summary, ''),
			COALESCE(lead_name, ''), COALESCE(lead_course, ''), ai_messages_count, human_took_over, updated_at
		 FROM ai_conversation_summaries
		 WHERE status = $1 AND (summarized_at IS NULL OR summarized_at < updated_at)
		 ORDER BY summarized_at ASC NULLS FIRST, id
		 LIMIT $2`,
		domain.SummaryStatusInProgress, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.ConversationSummary
	for rows.Next() {
		var c domain.ConversationSummary
		if err := rows.Scan(
			&c.ID,
			&c.ContactID,
			&c.ChannelID,
			&c.Status,
			&c.Summary,
			&c.LeadName,
			&c.LeadCourse,
			&c.AIMessagesCount,
			&c.HumanTookOver,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
