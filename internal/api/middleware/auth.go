package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/linsalefe/pos-plataform/internal/api"
)

type contextKey string

const ClientKey contextKey = "client"

// clientHeader carries the client name back to outer middleware, which only
// sees the request they were handed.
const clientHeader = "X-Leadbot-Client"

// apiKeyHeader is accepted for webhook relays that cannot set Authorization.
const apiKeyHeader = "X-API-Key"

// AuthValidator resolves a static API token to the name of the client that
// owns it: the dashboard, the WhatsApp webhook relay, or the CLI.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// APIKeyAuth requires a valid token as "Authorization: Bearer <token>" or
// in the X-API-Key header.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, msg := requestToken(r)
			if token == "" {
				unauthorized(w, msg)
				return
			}

			client, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid api token")
				return
			}

			r.Header.Set(clientHeader, client)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClientKey, client)))
		})
	}
}

// requestToken returns the presented token, or an empty token and the
// reason it is missing.
func requestToken(r *http.Request) (string, string) {
	if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
		return key, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", "invalid authorization format"
	}
	return strings.TrimSpace(token), ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="leadbot"`)
	api.Error(w, http.StatusUnauthorized, msg)
}

// GetClient returns the authenticated client name.
func GetClient(ctx context.Context) string {
	client, _ := ctx.Value(ClientKey).(string)
	return client
}

func requestClient(r *http.Request) string {
	if client := GetClient(r.Context()); client != "" {
		return client
	}
	return r.Header.Get(clientHeader)
}
