package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"artwall/internal/adminform"
	"artwall/internal/domain"
	"artwall/internal/middleware"
)

type draftResponse struct {
	Key     string         `json:"key"`
	Form    adminform.Form `json:"form"`
	SavedAt time.Time      `json:"saved_at"`
}

func draftKey(r *http.Request) (owner, key string) {
	c := middleware.ClaimsFromContext(r.Context())
	if c != nil {
		owner = c.Sub
	}
	return owner, strings.TrimSpace(chi.URLParam(r, "key"))
}

func (a *App) GetDraft(w http.ResponseWriter, r *http.Request) {
	owner, key := draftKey(r)
	f, savedAt, err := a.Drafts.Load(r.Context(), owner, key)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "no draft saved")
		return
	}
	if err != nil {
		a.fail(w, r, err, "could not load the draft")
		return
	}
	a.json(w, http.StatusOK, draftResponse{Key: key, Form: *f, SavedAt: savedAt})
}

// PutDraft schedules a debounced save of the form; rapid edits collapse into
// one write.
func (a *App) PutDraft(w http.ResponseWriter, r *http.Request) {
	owner, key := draftKey(r)
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "draft key required")
		return
	}
	var f adminform.Form
	if !a.decode(w, r, &f) {
		return
	}
	a.Drafts.Touch(owner, key, f)
	a.json(w, http.StatusAccepted, map[string]string{"status": "scheduled", "key": key})
}

func (a *App) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	owner, key := draftKey(r)
	if err := a.Drafts.Discard(r.Context(), owner, key); err != nil {
		a.fail(w, r, err, "could not discard the draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
