package service

import (
	"context"
	"fmt"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

// AIConfigStore reads and writes channel configurations.
type AIConfigStore interface {
	AIConfigReader
	UpsertAIConfig(ctx context.Context, cfg *domain.AIConfig) error
}

// AIConfigService manages the per-channel assistant settings.
type AIConfigService struct {
	store AIConfigStore
}

func NewAIConfigService(store AIConfigStore) *AIConfigService {
	return &AIConfigService{store: store}
}

// Get returns the stored configuration, or the disabled defaults when the
// channel was never configured.
func (s *AIConfigService) Get(ctx context.Context, channelID int64) (*domain.AIConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, "AIConfigService.Get", telemetry.SpanAttributes{
		ChannelID: channelID,
		Operation: "get_config",
	})
	defer span.End()

	cfg, err := s.store.GetAIConfig(ctx, channelID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to load ai config: %w", err)
	}
	if cfg == nil {
		return domain.DefaultAIConfig(channelID), nil
	}
	return cfg, nil
}

// Update applies a partial update, creating the configuration on first use.
func (s *AIConfigService) Update(ctx context.Context, channelID int64, patch domain.AIConfigPatch) (*domain.AIConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, "AIConfigService.Update", telemetry.SpanAttributes{
		ChannelID: channelID,
		Operation: "update_config",
	})
	defer span.End()

	cfg, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertAIConfig(ctx, cfg); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to save ai config: %w", err)
	}
	return cfg, nil
}
