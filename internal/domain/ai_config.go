package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultChatModel     = "gpt-4o"
	DefaultFallbackModel = "gpt-4o-mini"
	DefaultTemperature   = float32(0.7)
	DefaultMaxTokens     = 500
	MaxTemperature       = float32(2)
)

// DefaultSystemPrompt is the persona used when a channel has no prompt of its own.
const DefaultSystemPrompt = `Você é um atendente virtual do CENAT (Centro Educacional Novas Abordagens em Saúde Mental).
Seu papel é atender leads interessados em cursos de pós-graduação.
Seja cordial, profissional e objetivo. Use as informações da base de conhecimento para responder.
Se não souber a resposta, diga que vai encaminhar para um atendente humano.
Nunca invente informações sobre preços, datas ou grades curriculares.
Responda de forma natural, como uma conversa no WhatsApp (mensagens curtas, use emojis com moderação).`

// AIConfig is the per-channel assistant configuration.
type AIConfig struct {
	ID           int64
	ChannelID    int64
	IsEnabled    bool
	SystemPrompt string
	Model        string
	Temperature  float32
	MaxTokens    int
}

// DefaultAIConfig is what a channel without a stored row reports.
func DefaultAIConfig(channelID int64) *AIConfig {
	return &AIConfig{
		ChannelID:   channelID,
		IsEnabled:   false,
		Model:       DefaultChatModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// EffectivePrompt returns the configured prompt or the default persona.
func (c *AIConfig) EffectivePrompt() string {
	if strings.TrimSpace(c.SystemPrompt) == "" {
		return DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// EffectiveModel returns the configured model or the default chat model.
func (c *AIConfig) EffectiveModel() string {
	if c.Model == "" {
		return DefaultChatModel
	}
	return c.Model
}

// EffectiveMaxTokens returns the configured budget or the default one.
func (c *AIConfig) EffectiveMaxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// Validate checks the typed fields of a config.
func (c *AIConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > MaxTemperature || math.IsNaN(float64(c.Temperature)) {
		return ErrInvalidTemperature
	}
	if c.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}
	return nil
}

// ParseTemperature parses the textual temperature column. An empty value
// means the default.
func ParseTemperature(raw string) (float32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTemperature, nil
	}
	t, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 32)
	if err != nil {
		return 0, NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidTemperature.Message, err)
	}
	if t < 0 || t > float64(MaxTemperature) || math.IsNaN(t) {
		return 0, ErrInvalidTemperature
	}
	return float32(t), nil
}

// FormatTemperature renders a temperature for the textual column.
func FormatTemperature(t float32) string {
	return strconv.FormatFloat(float64(t), 'f', -1, 32)
}

// AIConfigPatch is a partial update; nil fields are left untouched.
type AIConfigPatch struct {
	IsEnabled    *bool
	SystemPrompt *string
	Model        *string
	Temperature  *string
	MaxTokens    *int
}

// Apply merges the patch into c, validating every provided field.
func (p AIConfigPatch) Apply(c *AIConfig) error {
	if p.IsEnabled != nil {
		c.IsEnabled = *p.IsEnabled
	}
	if p.SystemPrompt != nil {
		c.SystemPrompt = *p.SystemPrompt
	}
	if p.Model != nil {
		c.Model = strings.TrimSpace(*p.Model)
	}
	if p.Temperature != nil {
		t, err := ParseTemperature(*p.Temperature)
		if err != nil {
			return err
		}
		c.Temperature = t
	}
	if p.MaxTokens != nil {
		if *p.MaxTokens <= 0 {
			return ErrInvalidMaxTokens
		}
		c.MaxTokens = *p.MaxTokens
	}
	return nil
}
