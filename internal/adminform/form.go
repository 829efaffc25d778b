package adminform

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"artwall/internal/domain"
)

const (
	minYear           = 1900
	defaultEvaluation = 50
)

// Form is the flat admin form state. Which fields matter depends on Medium
// and Category; see SchemaFor.
type Form struct {
	Medium          string   `json:"medium"`
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Year            int      `json:"year"`
	Month           int      `json:"month"`
	Day             int      `json:"day"`
	CoverImageURL   string   `json:"coverImageUrl"`
	Tags            []string `json:"tags"`
	Rating          int      `json:"rating"`
	Evaluation      int      `json:"evaluation"`
	Hidden          bool     `json:"hidden"`
	Content         string   `json:"content"`
	WordCount       int      `json:"wordCount"`
	MediaURL        string   `json:"mediaUrl"`
	MediaURLs       []string `json:"mediaUrls"`
	Lyrics          string   `json:"lyrics"`
	DurationSeconds int      `json:"durationSeconds"`
	Materials       string   `json:"materials"`
	Dimensions      string   `json:"dimensions"`
	WeightKg        float64  `json:"weightKg"`
	Notes           string   `json:"notes"`
}

// ApplyDefaults fills zero-valued fields of a new entry.
func (f *Form) ApplyDefaults(now time.Time) {
	if f.Medium == "" {
		f.Medium = string(domain.MediumDrawing)
	}
	if f.Category == "" {
		f.Category = DefaultCategory(domain.Medium(f.Medium))
	}
	if f.Year == 0 {
		f.Year = now.Year()
	}
	if f.Month == 0 {
		f.Month = int(now.Month())
	}
	if f.Evaluation == 0 {
		f.Evaluation = defaultEvaluation
	}
	if f.WordCount == 0 && f.Content != "" {
		f.WordCount = len(strings.Fields(f.Content))
	}
}

// FieldErrors maps a field to its validation message.
type FieldErrors map[Field]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for f := range e {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[Field(k)])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate runs the presence and range checks for the visible fields. It
// returns nil when the form can be submitted.
func (f Form) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}
	m, err := domain.ParseMedium(f.Medium)
	if err != nil {
		errs[FieldMedium] = "choose a medium"
		return errs
	}
	visible, required := visibility(m, f.Category)
	shown := map[Field]bool{}
	for _, v := range visible {
		shown[v] = true
	}

	for field := range required {
		if f.isEmpty(field) {
			errs[field] = labels[field] + " is required"
		}
	}
	if f.Category != "" && !contains(Categories[m], f.Category) {
		errs[FieldCategory] = "unknown category for " + string(m)
	}
	if f.Year != 0 && (f.Year < minYear || f.Year > now.Year()+1) {
		errs[FieldYear] = fmt.Sprintf("year must be between %d and %d", minYear, now.Year()+1)
	}
	if f.Month < 0 || f.Month > 12 {
		errs[FieldMonth] = "month must be between 1 and 12"
	}
	if f.Day < 0 || f.Day > 31 {
		errs[FieldDay] = "day must be between 1 and 31"
	}
	if f.Rating < 0 || f.Rating > 5 {
		errs[FieldRating] = "rating must be between 0 and 5"
	}
	if f.Evaluation < 0 || f.Evaluation > 100 {
		errs[FieldEvaluation] = "evaluation must be between 0 and 100"
	}
	if shown[FieldWordCount] && f.WordCount < 0 {
		errs[FieldWordCount] = "word count must not be negative"
	}
	if shown[FieldDurationSeconds] && f.DurationSeconds < 0 {
		errs[FieldDurationSeconds] = "duration must not be negative"
	}
	if shown[FieldWeightKg] && f.WeightKg < 0 {
		errs[FieldWeightKg] = "weight must not be negative"
	}
	if f.CoverImageURL != "" && !isHTTPURL(f.CoverImageURL) {
		errs[FieldCoverImageURL] = "must be an http(s) URL"
	}
	if shown[FieldMediaURL] && f.MediaURL != "" && !isHTTPURL(f.MediaURL) {
		errs[FieldMediaURL] = "must be an http(s) URL"
	}
	if shown[FieldMediaURLs] {
		for _, u := range f.MediaURLs {
			if !isHTTPURL(u) {
				errs[FieldMediaURLs] = "every image must be an http(s) URL"
				break
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f Form) isEmpty(field Field) bool {
	switch field {
	case FieldMedium:
		return strings.TrimSpace(f.Medium) == ""
	case FieldCategory:
		return strings.TrimSpace(f.Category) == ""
	case FieldTitle:
		return strings.TrimSpace(f.Title) == ""
	case FieldYear:
		return f.Year == 0
	case FieldCoverImageURL:
		return strings.TrimSpace(f.CoverImageURL) == ""
	case FieldContent:
		return strings.TrimSpace(f.Content) == ""
	case FieldMediaURL:
		return strings.TrimSpace(f.MediaURL) == ""
	case FieldMediaURLs:
		return len(f.MediaURLs) == 0
	case FieldLyrics:
		return strings.TrimSpace(f.Lyrics) == ""
	}
	return false
}

// Artwork converts the form into an artwork, dropping every field that is
// not visible for the chosen medium and category.
func (f Form) Artwork(id string) (domain.Artwork, error) {
	m, err := domain.ParseMedium(f.Medium)
	if err != nil {
		return domain.Artwork{}, err
	}
	category := strings.TrimSpace(f.Category)
	a := domain.Artwork{
		ID:            id,
		Medium:        m,
		Category:      category,
		Title:         strings.TrimSpace(f.Title),
		Description:   strings.TrimSpace(f.Description),
		Year:          f.Year,
		Month:         f.Month,
		Day:           f.Day,
		CoverImageURL: strings.TrimSpace(f.CoverImageURL),
		Tags:          normalizeTags(f.Tags),
		Rating:        f.Rating,
		Evaluation:    f.Evaluation,
		Hidden:        f.Hidden,
	}
	show := func(field Field) bool { return IsVisible(m, category, field) }
	switch m {
	case domain.MediumWriting:
		d := domain.WritingDetails{Content: f.Content}
		if show(FieldWordCount) {
			d.WordCount = f.WordCount
		}
		a.Details = d
	case domain.MediumAudio:
		d := domain.AudioDetails{MediaURL: strings.TrimSpace(f.MediaURL), DurationSeconds: f.DurationSeconds}
		if show(FieldLyrics) {
			d.Lyrics = f.Lyrics
		}
		a.Details = d
	case domain.MediumDrawing:
		a.Details = domain.DrawingDetails{MediaURLs: trimAll(f.MediaURLs), Materials: f.Materials, Dimensions: f.Dimensions}
	case domain.MediumSculpture:
		a.Details = domain.SculptureDetails{MediaURLs: trimAll(f.MediaURLs), Materials: f.Materials, Dimensions: f.Dimensions, WeightKg: f.WeightKg}
	case domain.MediumOther:
		a.Details = domain.OtherDetails{MediaURL: strings.TrimSpace(f.MediaURL), Notes: f.Notes}
	}
	return a, nil
}

// FromArtwork fills a form for editing an existing artwork.
func FromArtwork(a domain.Artwork) Form {
	f := Form{
		Medium:        string(a.Medium),
		Category:      a.Category,
		Title:         a.Title,
		Description:   a.Description,
		Year:          a.Year,
		Month:         a.Month,
		Day:           a.Day,
		CoverImageURL: a.CoverImageURL,
		Tags:          append([]string(nil), a.Tags...),
		Rating:        a.Rating,
		Evaluation:    a.Evaluation,
		Hidden:        a.Hidden,
	}
	switch d := a.Details.(type) {
	case domain.WritingDetails:
		f.Content, f.WordCount = d.Content, d.WordCount
	case domain.AudioDetails:
		f.MediaURL, f.Lyrics, f.DurationSeconds = d.MediaURL, d.Lyrics, d.DurationSeconds
	case domain.DrawingDetails:
		f.MediaURLs, f.Materials, f.Dimensions = append([]string(nil), d.MediaURLs...), d.Materials, d.Dimensions
	case domain.SculptureDetails:
		f.MediaURLs, f.Materials, f.Dimensions, f.WeightKg = append([]string(nil), d.MediaURLs...), d.Materials, d.Dimensions, d.WeightKg
	case domain.OtherDetails:
		f.MediaURL, f.Notes = d.MediaURL, d.Notes
	}
	return f
}

func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
