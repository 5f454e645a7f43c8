package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/linsalefe/pos-plataform/internal/domain"
)

// TokenAuthService validates the static bearer tokens of the dashboard and
// webhook clients. Only token digests are kept in memory.
type TokenAuthService struct {
	clients map[string][]byte
}

// NewTokenAuthService builds a validator from client name to token.
// Blank tokens are ignored.
func NewTokenAuthService(tokens map[string]string) *TokenAuthService {
	clients := make(map[string][]byte, len(tokens))
	for name, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		digest := sha256.Sum256([]byte(token))
		clients[name] = digest[:]
	}
	return &TokenAuthService{clients: clients}
}

// Enabled reports whether at least one token is configured.
func (s *TokenAuthService) Enabled() bool {
	return len(s.clients) > 0
}

// ValidateAPIKey returns the client name the token belongs to.
func (s *TokenAuthService) ValidateAPIKey(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.NewDomainError(domain.ErrCodeUnauthorized, "api token is required")
	}
	digest := sha256.Sum256([]byte(token))
	matched := ""
	for name, want := range s.clients {
		if subtle.ConstantTimeCompare(digest[:], want) == 1 {
			matched = name
		}
	}
	if matched == "" {
		return "", domain.NewDomainError(domain.ErrCodeUnauthorized, "invalid api token")
	}
	return matched, nil
}
