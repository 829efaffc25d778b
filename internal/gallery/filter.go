// Package gallery derives the ordered, filtered display list from the full
// artwork snapshot.
package gallery

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"artwall/internal/domain"
)

// Filter narrows the gallery. Zero values disable the corresponding predicate
// and all active predicates must hold.
type Filter struct {
	Medium        domain.Medium
	Year          int
	Query         string
	MinEvaluation int
	MinRating     int
	// IncludeHidden is only honoured for admin sessions.
	IncludeHidden bool
}

// EntryKind distinguishes year markers from artworks in a derived list.
type EntryKind string

const (
	EntryYear    EntryKind = "year"
	EntryArtwork EntryKind = "artwork"
)

// Entry is one row of the derived gallery list.
type Entry struct {
	Kind    EntryKind
	Year    int
	Artwork *domain.Artwork
}

// matcher evaluates a Filter. It owns a case folder, so it must not be
// shared between goroutines.
type matcher struct {
	f      Filter
	folder cases.Caser
	query  string
}

func newMatcher(f Filter) *matcher {
	m := &matcher{f: f, folder: cases.Fold()}
	if q := strings.TrimSpace(f.Query); q != "" {
		m.query = m.folder.String(q)
	}
	return m
}

func (m *matcher) match(a *domain.Artwork) bool {
	if a.Hidden && !m.f.IncludeHidden {
		return false
	}
	if m.f.Medium != "" && a.Medium != m.f.Medium {
		return false
	}
	if m.f.Year != 0 && a.Year != m.f.Year {
		return false
	}
	if a.Evaluation < m.f.MinEvaluation {
		return false
	}
	if a.Rating < m.f.MinRating {
		return false
	}
	if m.query == "" {
		return true
	}
	for _, field := range a.SearchText() {
		if field != "" && strings.Contains(m.folder.String(field), m.query) {
			return true
		}
	}
	return false
}

// Select returns the artworks matching f, newest first. all is not modified.
func Select(all []domain.Artwork, f Filter) []domain.Artwork {
	m := newMatcher(f)
	out := make([]domain.Artwork, 0, len(all))
	for i := range all {
		if m.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(items []domain.Artwork) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if ka, kb := a.DateKey(), b.DateKey(); ka != kb {
			return ka > kb
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

// Build filters, sorts and groups the artworks, inserting a year marker in
// front of every run of same-year items.
func Build(all []domain.Artwork, f Filter) []Entry {
	selected := Select(all, f)
	entries := make([]Entry, 0, len(selected)+8)
	lastYear := -1
	for i := range selected {
		a := &selected[i]
		if a.Year != lastYear {
			entries = append(entries, Entry{Kind: EntryYear, Year: a.Year})
			lastYear = a.Year
		}
		entries = append(entries, Entry{Kind: EntryArtwork, Year: a.Year, Artwork: a})
	}
	return entries
}

// MediumCount is the number of visible artworks of one medium.
type MediumCount struct {
	Medium domain.Medium `json:"medium"`
	Count  int           `json:"count"`
}

// Facets summarises the visible artworks for the filter controls.
type Facets struct {
	Years   []int         `json:"years"`
	Mediums []MediumCount `json:"mediums"`
}

// BuildFacets reports the years (newest first) and per-medium counts of the
// artworks visible to the caller.
func BuildFacets(all []domain.Artwork, includeHidden bool) Facets {
	seenYear := map[int]bool{}
	counts := map[domain.Medium]int{}
	facets := Facets{Years: []int{}, Mediums: []MediumCount{}}
	for i := range all {
		a := &all[i]
		if a.Hidden && !includeHidden {
			continue
		}
		counts[a.Medium]++
		if !seenYear[a.Year] {
			seenYear[a.Year] = true
			facets.Years = append(facets.Years, a.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(facets.Years)))
	for _, m := range domain.Mediums {
		if counts[m] > 0 {
			facets.Mediums = append(facets.Mediums, MediumCount{Medium: m, Count: counts[m]})
		}
	}
	return facets
}
