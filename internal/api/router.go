package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"edusense-backend/internal/logger"
)

func NewRouter(h *APIHandler, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Any origin, any method, any header.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", h.RootHandler)
	r.Get("/test", h.TestHandler)

	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)

	r.Post("/materials", h.CreateMaterialHandler)
	r.Get("/materials/{userID}", h.ListMaterialsHandler)

	r.Post("/videos", h.CreateVideoHandler)
	r.Get("/videos/{userID}", h.ListVideosHandler)

	r.Post("/emotions", h.LogEmotionHandler)
	r.Get("/emotions/summary/{userID}", h.EmotionSummaryHandler)

	r.Post("/adapt", h.AdaptHandler)
	r.Post("/chat", h.ChatHandler)

	return r
}
