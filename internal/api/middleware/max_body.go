package middleware

import (
	"mime"
	"net/http"

	"github.com/linsalefe/pos-plataform/internal/api"
)

// BodyLimits bounds request bodies. Knowledge uploads arrive as multipart
// forms and get the larger Upload limit; every other body is JSON.
type BodyLimits struct {
	JSON   int64
	Upload int64
}

// MaxBodyBytes rejects bodies over the limit of their content type. A limit
// of zero or less disables the check for that type.
func MaxBodyBytes(limits BodyLimits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := limits.JSON
			if isMultipart(r) {
				limit = limits.Upload
			}
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
