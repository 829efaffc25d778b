package handlers

import (
	"net/http"
	"strings"

	"artwall/internal/imageurl"
)

type resolveResponse struct {
	URL      string        `json:"url"`
	Original string        `json:"original"`
	Size     imageurl.Size `json:"size"`
	Verified bool          `json:"verified"`
}

func imageParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("url"))
}

// ResolveImage maps a stored image URL to its resized variant. With
// verify=true the variant is checked and the original returned when missing.
func (a *App) ResolveImage(w http.ResponseWriter, r *http.Request) {
	raw := imageParam(r)
	if raw == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	}
	size := querySize(r, imageurl.SizeCard)
	resp := resolveResponse{Original: raw, Size: size}
	if r.URL.Query().Get("verify") == "true" {
		resp.URL = a.Images.ResolveWithFallback(r.Context(), raw, size)
		resp.Verified = true
	} else {
		resp.URL = a.Images.Resolve(raw, size)
	}
	a.json(w, http.StatusOK, resp)
}

// ImageVariants checks every resized size and reports the usable URL for each.
func (a *App) ImageVariants(w http.ResponseWriter, r *http.Request) {
	raw := imageParam(r)
	if raw == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"original": raw, "variants": a.Images.Variants(r.Context(), raw)})
}

// ImageOriginal strips a resize suffix from a variant URL.
func (a *App) ImageOriginal(w http.ResponseWriter, r *http.Request) {
	raw := imageParam(r)
	if raw == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": a.Images.DeriveOriginal(raw), "resized": raw})
}
