package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/pixtag/service/internal/middleware"
	"github.com/pixtag/service/internal/response"
	"github.com/pixtag/service/internal/upload"
	"github.com/pixtag/service/internal/vision"

	_ "github.com/pixtag/service/docs/swagger"
)

// Router returns the HTTP handler serving the API.
func (a *App) Router() http.Handler {
	uploadHandler := upload.NewHandler(a.Upload, a.MaxUploadBytes)
	tagHandler := vision.NewHandler(a.Tags)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Wrong methods are rejected before any body is read.
	r.MethodNotAllowed(response.MethodNotAllowed)
	r.NotFound(response.NotFound)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tags", tagHandler.Tag)
		r.Post("/upload", uploadHandler.Upload)
	})

	return r
}
