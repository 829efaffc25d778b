package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"artwall/internal/http/handlers"
	"artwall/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		middleware.Recover(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalJWT(app.Config.JWTSecret))
		r.Get("/v1/artworks", app.ListArtworks)
		r.Get("/v1/artworks/facets", app.ArtworkFacets)
		r.Get("/v1/artworks/{medium}/{id}", app.GetArtwork)
	})

	r.Route("/v1/images", func(r chi.Router) {
		r.Get("/original", app.ImageOriginal)

		// resolve?verify=true and variants send HEAD requests to storage
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			r.Get("/resolve", app.ResolveImage)
			r.Get("/variants", app.ImageVariants)
		})
	})

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		r.Post("/session", app.CreateSession)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))
		r.Get("/v1/me", app.Me)

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/form", app.FormSchema)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
				r.Post("/artworks", app.CreateArtwork)
				r.Put("/artworks/{medium}/{id}", app.UpdateArtwork)
				r.Delete("/artworks/{medium}/{id}", app.DeleteArtwork)
			})

			r.Route("/drafts/{key}", func(r chi.Router) {
				r.Get("/", app.GetDraft)
				r.Put("/", app.PutDraft)
				r.Delete("/", app.DeleteDraft)
			})
		})
	})

	return r
}
