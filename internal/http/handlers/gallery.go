package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"artwall/internal/domain"
	"artwall/internal/gallery"
	"artwall/internal/imageurl"
)

type imageDTO struct {
	URL      string `json:"url"`
	Original string `json:"original"`
}

type artworkDTO struct {
	Artwork domain.Artwork `json:"artwork"`
	Cover   *imageDTO      `json:"cover,omitempty"`
	Media   []imageDTO     `json:"media,omitempty"`
}

type entryDTO struct {
	Kind    gallery.EntryKind `json:"kind"`
	Year    int               `json:"year"`
	Artwork *domain.Artwork   `json:"artwork,omitempty"`
	Cover   *imageDTO         `json:"cover,omitempty"`
	Media   []imageDTO        `json:"media,omitempty"`
}

type listResponse struct {
	Entries []entryDTO `json:"entries"`
	Visible int        `json:"visible"`
	HasMore bool       `json:"has_more"`
	Total   int        `json:"total"`
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func querySize(r *http.Request, fallback imageurl.Size) imageurl.Size {
	raw := strings.TrimSpace(r.URL.Query().Get("size"))
	if raw == "" {
		return fallback
	}
	if s, ok := imageurl.ParseSize(raw); ok {
		return s
	}
	return imageurl.Size(raw)
}

// parseFilter reads the gallery filter from the query string. Hidden
// artworks are only included for admin sessions.
func (a *App) parseFilter(r *http.Request) (gallery.Filter, string) {
	q := r.URL.Query()
	var f gallery.Filter
	if raw := strings.TrimSpace(q.Get("medium")); raw != "" {
		m, err := domain.ParseMedium(raw)
		if err != nil {
			return f, "unknown medium"
		}
		f.Medium = m
	}
	var ok bool
	if f.Year, ok = queryInt(r, "year"); !ok {
		return f, "year must be a positive number"
	}
	if f.MinRating, ok = queryInt(r, "min_rating"); !ok {
		return f, "min_rating must be a positive number"
	}
	if f.MinEvaluation, ok = queryInt(r, "min_evaluation"); !ok {
		return f, "min_evaluation must be a positive number"
	}
	f.Query = q.Get("q")
	f.IncludeHidden = isAdmin(r) && q.Get("include_hidden") == "true"
	return f, ""
}

// present resolves the artwork's images to size. Listing uses the pure
// transform; the client swaps in Original when a variant fails to load.
func (a *App) present(art *domain.Artwork, size imageurl.Size) *artworkDTO {
	dto := &artworkDTO{Artwork: *art}
	if art.CoverImageURL != "" {
		dto.Cover = &imageDTO{URL: a.Images.Resolve(art.CoverImageURL, size), Original: art.CoverImageURL}
	}
	switch d := art.Details.(type) {
	case domain.DrawingDetails:
		dto.Media = a.presentAll(d.MediaURLs, size)
	case domain.SculptureDetails:
		dto.Media = a.presentAll(d.MediaURLs, size)
	}
	return dto
}

func (a *App) presentAll(urls []string, size imageurl.Size) []imageDTO {
	out := make([]imageDTO, 0, len(urls))
	for _, u := range urls {
		out = append(out, imageDTO{URL: a.Images.Resolve(u, size), Original: u})
	}
	return out
}

func (a *App) ListArtworks(w http.ResponseWriter, r *http.Request) {
	filter, problem := a.parseFilter(r)
	if problem != "" {
		a.error(w, http.StatusBadRequest, "bad_request", problem)
		return
	}
	visible, ok := queryInt(r, "visible")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "visible must be a positive number")
		return
	}
	window := gallery.WindowFor(visible, r.URL.Query().Get("narrow") == "true")
	size := querySize(r, imageurl.SizeCard)

	all, err := a.Gallery.Artworks(r.Context())
	if err != nil {
		a.fail(w, r, err, "could not load the gallery")
		return
	}
	entries := gallery.Build(all, filter)
	shown, more := window.Slice(entries)

	resp := listResponse{Entries: make([]entryDTO, 0, len(shown)), Visible: window.Visible, HasMore: more, Total: len(entries)}
	for _, e := range shown {
		dto := entryDTO{Kind: e.Kind, Year: e.Year}
		if e.Artwork != nil {
			p := a.present(e.Artwork, size)
			dto.Artwork, dto.Cover, dto.Media = &p.Artwork, p.Cover, p.Media
		}
		resp.Entries = append(resp.Entries, dto)
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) ArtworkFacets(w http.ResponseWriter, r *http.Request) {
	all, err := a.Gallery.Artworks(r.Context())
	if err != nil {
		a.fail(w, r, err, "could not load the gallery")
		return
	}
	a.json(w, http.StatusOK, gallery.BuildFacets(all, isAdmin(r) && r.URL.Query().Get("include_hidden") == "true"))
}

// GetArtwork reads one artwork from the store, bypassing the snapshot, and
// verifies its cover variant before answering.
func (a *App) GetArtwork(w http.ResponseWriter, r *http.Request) {
	m, err := domain.ParseMedium(chi.URLParam(r, "medium"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artwork not found")
		return
	}
	art, err := a.Artworks.Get(r.Context(), m, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, "could not load the artwork")
		return
	}
	if art.Hidden && !isAdmin(r) {
		a.error(w, http.StatusNotFound, "not_found", "artwork not found")
		return
	}
	size := querySize(r, imageurl.SizeFull)
	dto := a.present(art, size)
	if dto.Cover != nil {
		dto.Cover.URL = a.Images.ResolveWithFallback(r.Context(), art.CoverImageURL, size)
	}
	a.json(w, http.StatusOK, dto)
}
