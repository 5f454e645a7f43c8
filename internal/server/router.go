package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/api"
	"github.com/linsalefe/pos-plataform/internal/api/handlers"
	"github.com/linsalefe/pos-plataform/internal/api/middleware"
)

var bodyLimits = middleware.BodyLimits{
	JSON:   1 << 20,
	Upload: 10 << 20,
}

type RouterConfig struct {
	// AuthValidator guards the /api routes. Nil leaves them open.
	AuthValidator   middleware.AuthValidator
	MetricsHandler  http.Handler
	AIConfigHandler *handlers.AIConfigHandler
	DocumentHandler *handlers.DocumentHandler
	ContactHandler  *handlers.ContactHandler
	ChatHandler     *handlers.ChatHandler
	SummaryHandler  *handlers.SummaryHandler
	CalendarHandler *handlers.CalendarHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(bodyLimits))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Route("/ai", func(r chi.Router) {
			r.Get("/config/{channelID}", cfg.AIConfigHandler.Get)
			r.Put("/config/{channelID}", cfg.AIConfigHandler.Update)

			r.Route("/documents/{channelID}", func(r chi.Router) {
				r.Get("/", cfg.DocumentHandler.List)
				r.Post("/", cfg.DocumentHandler.Upload)
				r.Delete("/{title}", cfg.DocumentHandler.Delete)
			})

			r.Patch("/contacts/{contactID}/toggle", cfg.ContactHandler.Toggle)
			r.Post("/test-chat", cfg.ChatHandler.TestChat)
			r.Post("/reply", cfg.ChatHandler.Reply)
			r.Post("/summaries/{contactID}", cfg.SummaryHandler.Summarize)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/available-dates", cfg.CalendarHandler.AvailableDates)
			r.Get("/available-slots/{date}", cfg.CalendarHandler.AvailableSlots)
			r.Post("/book", cfg.CalendarHandler.Book)
		})
	})

	return r
}
