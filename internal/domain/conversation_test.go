package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageToTurn(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Turn
	}{
		{"inbound text", Message{Direction: DirectionInbound, Content: "Oi"}, Turn{RoleUser, "Oi"}},
		{"outbound text", Message{Direction: DirectionOutbound, Content: "Olá!"}, Turn{RoleAssistant, "Olá!"}},
		{"media", Message{Direction: DirectionInbound, Content: "media:123abc"}, Turn{RoleUser, MediaPlaceholder}},
		{"template prefix", Message{Direction: DirectionOutbound, Content: "template:boas_vindas"}, Turn{RoleAssistant, TemplatePlaceholder}},
		{"template tag", Message{Direction: DirectionOutbound, Content: "[Template] Olá {{1}}"}, Turn{RoleAssistant, TemplatePlaceholder}},
		{"unknown direction", Message{Direction: "system", Content: "x"}, Turn{RoleAssistant, "x"}},
		{"empty", Message{Direction: DirectionInbound}, Turn{RoleUser, ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.ToTurn())
		})
	}
}

func TestLeadContext_IsEmpty(t *testing.T) {
	assert.True(t, LeadContext{}.IsEmpty())
	assert.False(t, LeadContext{Name: "Ana"}.IsEmpty())
	assert.False(t, LeadContext{Course: "Saúde Mental"}.IsEmpty())
}

func TestBookingEvent(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	start, err := ParseSlot("2026-03-10", "14:30", loc)
	require.NoError(t, err)

	ev := BookingEvent(Booking{LeadName: "Ana", LeadPhone: "5511999", Course: "Psicanálise"}, start)

	assert.Equal(t, "📞 Ligação - Ana (Psicanálise)", ev.Summary)
	assert.Equal(t, "Lead: Ana\nTelefone: 5511999\nCurso: Psicanálise\nAgendado pela IA Nat", ev.Description)
	assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
	assert.Equal(t, 14, ev.Start.Hour())
}

func TestParseSlot_Invalid(t *testing.T) {
	_, err := ParseSlot("10/03/2026", "14:30", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseSlot("2026-03-10", "2pm", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestGeneration_HasText(t *testing.T) {
	assert.True(t, Generation{Outcome: OutcomePrimary}.HasText())
	assert.True(t, Generation{Outcome: OutcomeFallback}.HasText())
	assert.True(t, Generation{Outcome: OutcomeApology}.HasText())
	assert.False(t, Generation{Outcome: OutcomeFailed}.HasText())
	assert.False(t, Generation{Outcome: OutcomeDisabled}.HasText())
}
