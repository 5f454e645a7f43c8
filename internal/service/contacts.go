package service

import (
	"context"
	"fmt"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

// ContactStore switches the assistant per contact.
type ContactStore interface {
	// SetAIActive reports false when the contact does not exist.
	SetAIActive(ctx context.Context, contactID string, active bool) (bool, error)
	// HandOff moves the contact's open card to the human queue and returns
	// its channel. The boolean is false when no card was open.
	HandOff(ctx context.Context, contactID string) (int64, bool, error)
}

// SummaryRefresher stores a fresh summary on a card.
type SummaryRefresher interface {
	Refresh(ctx context.Context, contactID string, channelID int64) (bool, error)
}

// ContactState is the assistant state of a contact.
type ContactState struct {
	ContactID string
	AIActive  bool
}

// ContactService turns the assistant on or off for single leads.
type ContactService struct {
	store     ContactStore
	summaries SummaryRefresher
}

// NewContactService creates a ContactService. summaries may be nil.
func NewContactService(store ContactStore, summaries SummaryRefresher) *ContactService {
	return &ContactService{store: store, summaries: summaries}
}

// Toggle sets whether the assistant answers the contact. Switching it off
// hands the open conversation card over to a human and refreshes its
// summary on a best-effort basis.
func (s *ContactService) Toggle(ctx context.Context, contactID string, active bool) (*ContactState, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContactService.Toggle", telemetry.SpanAttributes{
		ContactID: contactID,
		Operation: "toggle_ai",
	})
	defer span.End()

	found, err := s.store.SetAIActive(ctx, contactID, active)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if !found {
		return nil, domain.ErrContactNotFound
	}

	if !active {
		channelID, handedOff, err := s.store.HandOff(ctx, contactID)
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("failed to hand off conversation: %w", err)
		}
		if handedOff && s.summaries != nil {
			if _, err := s.summaries.Refresh(ctx, contactID, channelID); err != nil {
				telemetry.ReportSuppressed(ctx, "contacts.summary", err, "contact_id", contactID)
			}
		}
	}
	return &ContactState{ContactID: contactID, AIActive: active}, nil
}
