package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

// MessageRepository reads and writes WhatsApp messages.
type MessageRepository struct {
	db dbtx
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: pool}
}

func NewMessageRepositoryWithTx(tx pgx.Tx) *MessageRepository {
	return &MessageRepository{db: tx}
}

// RecentMessages returns up to limit messages of a contact, newest first.
func (r *MessageRepository) RecentMessages(ctx context.Context, contactID string, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, wa_message_id, contact_wa_id, COALESCE(channel_id, 0), direction, message_type,
			COALESCE(content, ''), timestamp, COALESCE(status, ''), COALESCE(sent_by_ai, FALSE)
		 FROM messages
		 WHERE contact_wa_id = $1
		 ORDER BY timestamp DESC, id DESC
		 LIMIT $2`,
		contactID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			m         domain.Message
			direction string
		)
		if err := rows.Scan(
			&m.ID,
			&m.WAMessageID,
			&m.ContactID,
			&m.ChannelID,
			&direction,
			&m.MessageType,
			&m.Content,
			&m.Timestamp,
			&m.Status,
			&m.SentByAI,
		); err != nil {
			return nil, err
		}
		m.Direction = domain.Direction(direction)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// InsertMessage stores a message and sets its ID.
func (r *MessageRepository) InsertMessage(ctx context.Context, m *domain.Message) error {
	var channelID any
	if m.ChannelID != 0 {
		channelID = m.ChannelID
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO messages
			(wa_message_id, contact_wa_id, channel_id, direction, message_type, content, timestamp, status, sent_by_ai)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		m.WAMessageID,
		m.ContactID,
		channelID,
		string(m.Direction),
		m.MessageType,
		m.Content,
		m.Timestamp,
		nullableString(m.Status),
		m.SentByAI,
	).Scan(&m.ID)
}
