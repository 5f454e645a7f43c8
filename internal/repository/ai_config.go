package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/domain"
)

// AIConfigRepository stores the per-channel assistant settings.
type AIConfigRepository struct {
	db dbtx
}

func NewAIConfigRepository(pool *pgxpool.Pool) *AIConfigRepository {
	return &AIConfigRepository{db: pool}
}

// GetAIConfig returns the stored config of a channel, or nil when the channel
// has none. The textual temperature column is parsed here.
func (r *AIConfigRepository) GetAIConfig(ctx context.Context, channelID int64) (*domain.AIConfig, error) {
	var (
		cfg         domain.AIConfig
		prompt      *string
		model       *string
		temperature *string
		maxTokens   *int
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, channel_id, COALESCE(is_enabled, FALSE), system_prompt, model, temperature, max_tokens
		 FROM ai_configs WHERE channel_id = $1`,
		channelID,
	).Scan(&cfg.ID, &cfg.ChannelID, &cfg.IsEnabled, &prompt, &model, &temperature, &maxTokens)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if prompt != nil {
		cfg.SystemPrompt = *prompt
	}
	cfg.Model = domain.DefaultChatModel
	if model != nil && *model != "" {
		cfg.Model = *model
	}
	cfg.Temperature = domain.DefaultTemperature
	if temperature != nil {
		t, err := domain.ParseTemperature(*temperature)
		if err != nil {
			return nil, fmt.Errorf("channel %d has an invalid temperature %q: %w", channelID, *temperature, err)
		}
		cfg.Temperature = t
	}
	cfg.MaxTokens = domain.DefaultMaxTokens
	if maxTokens != nil && *maxTokens > 0 {
		cfg.MaxTokens = *maxTokens
	}
	return &cfg, nil
}

// UpsertAIConfig creates or replaces the config of cfg.ChannelID.
func (r *AIConfigRepository) UpsertAIConfig(ctx context.Context, cfg *domain.AIConfig) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO ai_configs (channel_id, is_enabled, system_prompt, model, temperature, max_tokens)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (channel_id) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			system_prompt = EXCLUDED.system_prompt,
			model = EXCLUDED.model,
			temperature = EXCLUDED.temperature,
			max_tokens = EXCLUDED.max_tokens,
			updated_at = now()
		 RETURNING id`,
		cfg.ChannelID,
		cfg.IsEnabled,
		nullableString(cfg.SystemPrompt),
		cfg.Model,
		domain.FormatTemperature(cfg.Temperature),
		cfg.MaxTokens,
	).Scan(&cfg.ID)
}
