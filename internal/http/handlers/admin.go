package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"artwall/internal/adminform"
	"artwall/internal/domain"
	"artwall/internal/middleware"
)

type formResponse struct {
	Schema   adminform.Schema `json:"schema"`
	Defaults adminform.Form   `json:"defaults"`
}

type validationResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Fields  adminform.FieldErrors `json:"fields"`
}

type savedResponse struct {
	ID      string         `json:"id"`
	Artwork domain.Artwork `json:"artwork"`
}

// FormSchema returns the visible fields and defaults for a medium and category.
func (a *App) FormSchema(w http.ResponseWriter, r *http.Request) {
	defaults := adminform.Form{
		Medium:   strings.TrimSpace(r.URL.Query().Get("medium")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
	if defaults.Medium != "" {
		if _, err := domain.ParseMedium(defaults.Medium); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown medium")
			return
		}
	}
	defaults.ApplyDefaults(a.clock())
	a.json(w, http.StatusOK, formResponse{
		Schema:   adminform.SchemaFor(domain.Medium(defaults.Medium), defaults.Category),
		Defaults: defaults,
	})
}

// validForm decodes and validates the submitted form, writing the response
// itself on failure.
func (a *App) validForm(w http.ResponseWriter, r *http.Request) (adminform.Form, bool) {
	var f adminform.Form
	if !a.decode(w, r, &f) {
		return f, false
	}
	if errs := f.Validate(a.clock()); len(errs) > 0 {
		a.json(w, http.StatusUnprocessableEntity, validationResponse{
			Error:   "validation_failed",
			Message: "please fix the highlighted fields",
			Fields:  errs,
		})
		return f, false
	}
	return f, true
}

// afterSave refreshes the public snapshot and drops the draft the form was
// edited from, if the client named one.
func (a *App) afterSave(r *http.Request) {
	a.Gallery.Invalidate()
	key := strings.TrimSpace(r.URL.Query().Get("draft"))
	if key == "" || a.Drafts == nil {
		return
	}
	c := middleware.ClaimsFromContext(r.Context())
	if err := a.Drafts.Discard(r.Context(), c.Sub, key); err != nil {
		a.Logger.Warn().Err(err).Str("key", key).Msg("discard draft after save failed")
	}
}

func (a *App) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	f, ok := a.validForm(w, r)
	if !ok {
		return
	}
	art, err := f.Artwork("")
	if err != nil {
		a.fail(w, r, err, "could not save the artwork, please try again")
		return
	}
	id, err := a.Artworks.Create(r.Context(), &art)
	if err != nil {
		a.fail(w, r, err, "could not save the artwork, please try again")
		return
	}
	a.afterSave(r)
	a.Logger.Info().Str("id", id).Str("medium", string(art.Medium)).Msg("artwork created")
	a.json(w, http.StatusCreated, savedResponse{ID: id, Artwork: art})
}

// UpdateArtwork overwrites the artwork at {medium}/{id}. A different medium
// in the body moves it.
func (a *App) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	from, err := domain.ParseMedium(chi.URLParam(r, "medium"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artwork not found")
		return
	}
	f, ok := a.validForm(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	art, err := f.Artwork(id)
	if err != nil {
		a.fail(w, r, err, "could not save the artwork, please try again")
		return
	}
	if err := a.Artworks.Update(r.Context(), from, &art); err != nil {
		a.fail(w, r, err, "could not save the artwork, please try again")
		return
	}
	a.afterSave(r)
	a.Logger.Info().Str("id", id).Str("medium", string(art.Medium)).Msg("artwork updated")
	a.json(w, http.StatusOK, savedResponse{ID: id, Artwork: art})
}

func (a *App) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	m, err := domain.ParseMedium(chi.URLParam(r, "medium"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artwork not found")
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.Artworks.Delete(r.Context(), m, id); err != nil {
		a.fail(w, r, err, "could not delete the artwork, please try again")
		return
	}
	a.Gallery.Invalidate()
	a.Logger.Info().Str("id", id).Str("medium", string(m)).Msg("artwork deleted")
	w.WriteHeader(http.StatusNoContent)
}
