package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

// ContactRepository reads and updates the assistant state of contacts.
type ContactRepository struct {
	db dbtx
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: pool}
}

// GetContactName returns the display name of a contact. The boolean is false
// when the contact is unknown or has no name.
func (r *ContactRepository) GetContactName(ctx context.Context, contactID string) (string, bool, error) {
	var name *string
	err := r.db.QueryRow(ctx,
		`SELECT name FROM contacts WHERE wa_id = $1`,
		contactID,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if name == nil || *name == "" {
		return "", false, nil
	}
	return *name, true, nil
}

// SetAIActive switches the assistant for a contact. It reports false when the
// contact does not exist.
func (r *ContactRepository) SetAIActive(ctx context.Context, contactID string, active bool) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE contacts SET ai_active = $2, updated_at = now() WHERE wa_id = $1`,
		contactID, active,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// HandOff moves the contact's open conversation card to the human queue and
// returns the card's channel. The boolean is false when no card was open.
func (r *ContactRepository) HandOff(ctx context.Context, contactID string) (int64, bool, error) {
	var channelID int64
	err := r.db.QueryRow(ctx,
		`UPDATE ai_conversation_summaries
		 SET status = $3, human_took_over = TRUE, updated_at = now()
		 WHERE contact_wa_id = $1 AND status = $2
		 RETURNING channel_id`,
		contactID, domain.SummaryStatusInProgress, domain.SummaryStatusAwaitingHuman,
	).Scan(&channelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return channelID, true, nil
}
