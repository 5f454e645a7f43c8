package domain

const (
	// ApologyText is returned when neither the primary nor the fallback model
	// produced any text.
	ApologyText = "Desculpe, não consegui processar. Um momento que vou transferir para nossa consultora."
	// ContinueNudge is the user turn appended before the fallback attempt.
	ContinueNudge = "Por favor, continue o atendimento."
)

// GenerationOutcome tells how a reply was produced.
type GenerationOutcome string

const (
	OutcomeDisabled GenerationOutcome = "disabled"
	OutcomePrimary  GenerationOutcome = "primary"
	OutcomeFallback GenerationOutcome = "fallback"
	OutcomeApology  GenerationOutcome = "apology"
	OutcomeFailed   GenerationOutcome = "failed"
)

// Generation is the result of one generation run.
type Generation struct {
	Text    string
	Model   string
	Outcome GenerationOutcome
}

// HasText reports whether the run produced a reply to send.
func (g Generation) HasText() bool {
	switch g.Outcome {
	case OutcomePrimary, OutcomeFallback, OutcomeApology:
		return true
	}
	return false
}

// CompletionRequest is one call to the chat completion backend.
type CompletionRequest struct {
	Model       string
	Messages    []Turn
	Temperature float32
	MaxTokens   int
}
