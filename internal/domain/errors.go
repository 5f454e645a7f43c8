package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrDocumentNotText     = NewDomainError(ErrCodeValidation, "Arquivo deve ser texto (.txt, .md, .csv)")
	ErrTitleTooLong        = NewDomainError(ErrCodeValidation, "title must be at most 255 characters")
	ErrEmptyDocument       = NewDomainError(ErrCodeValidation, "Arquivo vazio")
	ErrUnchunkableDocument = NewDomainError(ErrCodeValidation, "Não foi possível processar o documento")
	ErrInvalidTemperature  = NewDomainError(ErrCodeValidation, "temperature must be a number between 0 and 2")
	ErrInvalidMaxTokens    = NewDomainError(ErrCodeValidation, "max_tokens must be positive")
	ErrInvalidDate         = NewDomainError(ErrCodeValidation, "date must be formatted as YYYY-MM-DD")
	ErrInvalidTime         = NewDomainError(ErrCodeValidation, "time must be formatted as HH:MM")
	ErrZeroEmbedding       = NewDomainError(ErrCodeValidation, "embedding has zero norm")
	ErrDimensionMismatch   = NewDomainError(ErrCodeValidation, "embedding dimensions do not match")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "Documento não encontrado")
	ErrContactNotFound  = NewDomainError(ErrCodeNotFound, "Contato não encontrado")
	ErrSummaryNotFound  = NewDomainError(ErrCodeNotFound, "conversation summary not found")
)

// Operation errors
var (
	ErrAIDisabled         = NewDomainError(ErrCodeInvalidOperation, "ai is disabled for this channel")
	ErrSlotUnavailable    = NewDomainError(ErrCodeConflict, "Horário não disponível")
	ErrCalendarNotEnabled = NewDomainError(ErrCodeInvalidOperation, "calendar integration not configured")
)

// EmbeddingError wraps every failure of the embedding backend.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding (%s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
