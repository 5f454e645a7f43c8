package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pgvector/pgvector-go"
)

// EncodeEmbedding renders a vector in the textual array form stored in the
// knowledge_documents.embedding column, e.g. "[0.1,0.2,0.3]".
func EncodeEmbedding(v []float32) string {
	return pgvector.NewVector(v).String()
}

// DecodeEmbedding parses a stored embedding. It accepts both the compact
// vector form and JSON arrays with arbitrary whitespace written by older
// deployments.
func DecodeEmbedding(raw string) ([]float32, error) {
	if raw == "" {
		return nil, fmt.Errorf("embedding is empty")
	}
	var v []float32
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("embedding has no components")
	}
	return v, nil
}

// Norm returns the euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// ValidateEmbedding checks that v has the expected length and a non-zero norm.
// A non-positive dimensions skips the length check.
func ValidateEmbedding(v []float32, dimensions int) error {
	if dimensions > 0 && len(v) != dimensions {
		return NewDomainErrorWithCause(ErrCodeValidation, ErrDimensionMismatch.Message,
			fmt.Errorf("expected %d, got %d", dimensions, len(v)))
	}
	n := Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrZeroEmbedding
	}
	return nil
}
