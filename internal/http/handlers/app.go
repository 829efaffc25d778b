package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"artwall/internal/adminform"
	"artwall/internal/domain"
	"artwall/internal/gallery"
	"artwall/internal/imageurl"
	"artwall/internal/infra"
	"artwall/internal/infra/firebaseauth"
	"artwall/internal/middleware"
)

// IDTokenVerifier checks a Firebase ID token.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*firebaseauth.Identity, error)
}

// App carries the dependencies shared by every handler.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Artworks domain.ArtworkRepository
	Gallery  *gallery.Snapshot
	Images   *imageurl.Resolver
	Drafts   *adminform.Drafts
	Verifier IDTokenVerifier
	// Ping reports backend health; nil means always healthy.
	Ping func(ctx context.Context) error

	now func() time.Time
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// fail maps domain errors to a status; anything unknown is logged and hidden
// behind fallback.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "artwork not found")
	case errors.Is(err, domain.ErrInvalidArtwork):
		a.error(w, http.StatusUnprocessableEntity, "invalid_artwork", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign in required")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "admin access required")
	case errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusGatewayTimeout, "timeout", fallback)
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg(fallback)
		a.error(w, http.StatusInternalServerError, "internal", fallback)
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func isAdmin(r *http.Request) bool {
	c := middleware.ClaimsFromContext(r.Context())
	return c != nil && c.Admin
}
