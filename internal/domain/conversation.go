package domain

import (
	"strings"
	"time"
)

// Role is the speaker of a turn sent to the generation backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Direction of a stored WhatsApp message.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

const (
	MediaPlaceholder    = "[mídia enviada]"
	TemplatePlaceholder = "[mensagem de template enviada]"
)

// Turn is one role-tagged message of a generation request.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Message is a stored WhatsApp message.
type Message struct {
	ID          int64
	WAMessageID string
	ContactID   string
	ChannelID   int64
	Direction   Direction
	MessageType string
	Content     string
	Timestamp   time.Time
	Status      string
	SentByAI    bool
}

// ToTurn maps a stored message to a model turn, replacing media and template
// payloads with neutral placeholders.
func (m *Message) ToTurn() Turn {
	role := RoleAssistant
	if m.Direction == DirectionInbound {
		role = RoleUser
	}
	return Turn{Role: role, Content: RedactContent(m.Content)}
}

// RedactContent hides payloads that must never reach the model.
func RedactContent(content string) string {
	if strings.HasPrefix(content, "media:") {
		content = MediaPlaceholder
	}
	if strings.HasPrefix(content, "template:") || strings.HasPrefix(content, "[Template]") {
		content = TemplatePlaceholder
	}
	return content
}

// LeadContext is the lead data injected into the system prompt.
type LeadContext struct {
	Name   string
	Course string
}

// IsEmpty reports whether neither field is known.
func (l LeadContext) IsEmpty() bool {
	return l.Name == "" && l.Course == ""
}

// Summary card statuses.
const (
	SummaryStatusInProgress    = "em_atendimento_ia"
	SummaryStatusAwaitingHuman = "aguardando_humano"
)

// ConversationSummary is the per-contact card tracking an AI conversation.
type ConversationSummary struct {
	ID              int64
	ContactID       string
	ChannelID       int64
	Status          string
	Summary         string
	LeadName        string
	LeadCourse      string
	AIMessagesCount int
	HumanTookOver   bool
	UpdatedAt       time.Time
}
