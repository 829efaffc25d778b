package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"artwall/internal/middleware"
)

type sessionRequest struct {
	IDToken string `json:"id_token"`
}

type sessionUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      sessionUser `json:"user"`
}

// CreateSession exchanges a Firebase ID token for a session token. Only
// verified emails on the admin allowlist get a session.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	id, err := a.Verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("firebase token rejected")
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign-in could not be verified")
		return
	}
	if !id.EmailVerified || !a.Config.IsAdmin(id.Email) {
		a.Logger.Info().Str("uid", id.UID).Msg("non-admin sign-in refused")
		a.error(w, http.StatusForbidden, "forbidden", "this account is not an administrator")
		return
	}

	now := a.clock()
	expires := now.Add(a.Config.SessionTTL)
	token, err := middleware.SignJWT(a.Config.JWTSecret, middleware.TokenClaims{
		Sub:      id.UID,
		Email:    strings.ToLower(id.Email),
		Admin:    true,
		Iat:      now.Unix(),
		Exp:      expires.Unix(),
		Issuer:   middleware.SessionIssuer,
		Audience: middleware.SessionAudience,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start a session")
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: expires.UTC(),
		User:      sessionUser{UID: id.UID, Email: strings.ToLower(id.Email), Admin: true},
	})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	c := middleware.ClaimsFromContext(r.Context())
	if c == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}
	a.json(w, http.StatusOK, sessionUser{UID: c.Sub, Email: c.Email, Admin: c.Admin})
}
