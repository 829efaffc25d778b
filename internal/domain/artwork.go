package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Medium enumerates the kinds of creative work in the gallery.
type Medium string

const (
	MediumWriting   Medium = "writing"
	MediumAudio     Medium = "audio"
	MediumDrawing   Medium = "drawing"
	MediumSculpture Medium = "sculpture"
	MediumOther     Medium = "other"
)

// Mediums lists every medium in display order.
var Mediums = []Medium{MediumWriting, MediumAudio, MediumDrawing, MediumSculpture, MediumOther}

// ParseMedium validates a medium token.
func ParseMedium(s string) (Medium, error) {
	m := Medium(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Mediums {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown medium %q", ErrInvalidArtwork, s)
}

// Artwork is a single gallery entry. Fields that only make sense for one
// medium live in Details.
type Artwork struct {
	ID            string
	Medium        Medium
	Category      string
	Title         string
	Description   string
	Year          int
	Month         int
	Day           int
	CoverImageURL string
	Tags          []string
	Rating        int
	Evaluation    int
	Hidden        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Details       Details
}

// Details is implemented only by the per-medium detail types in this package.
type Details interface {
	Medium() Medium
	assetURLs() []string
	text() []string
	record(rec map[string]any)
}

// WritingDetails holds the text of a written piece.
type WritingDetails struct {
	Content   string `json:"content,omitempty"`
	WordCount int    `json:"wordCount,omitempty"`
}

// AudioDetails points at an audio file and its lyrics.
type AudioDetails struct {
	MediaURL        string `json:"mediaUrl,omitempty"`
	Lyrics          string `json:"lyrics,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// DrawingDetails lists the scans or photos of a drawing.
type DrawingDetails struct {
	MediaURLs  []string `json:"mediaUrls,omitempty"`
	Materials  string   `json:"materials,omitempty"`
	Dimensions string   `json:"dimensions,omitempty"`
}

// SculptureDetails lists the photos of a sculpture and its physical properties.
type SculptureDetails struct {
	MediaURLs  []string `json:"mediaUrls,omitempty"`
	Materials  string   `json:"materials,omitempty"`
	Dimensions string   `json:"dimensions,omitempty"`
	WeightKg   float64  `json:"weightKg,omitempty"`
}

// OtherDetails covers anything that does not fit the other mediums.
type OtherDetails struct {
	MediaURL string `json:"mediaUrl,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (WritingDetails) Medium() Medium   { return MediumWriting }
func (AudioDetails) Medium() Medium     { return MediumAudio }
func (DrawingDetails) Medium() Medium   { return MediumDrawing }
func (SculptureDetails) Medium() Medium { return MediumSculpture }
func (OtherDetails) Medium() Medium     { return MediumOther }

func (d WritingDetails) assetURLs() []string   { return nil }
func (d AudioDetails) assetURLs() []string     { return nonEmpty(d.MediaURL) }
func (d DrawingDetails) assetURLs() []string   { return nonEmpty(d.MediaURLs...) }
func (d SculptureDetails) assetURLs() []string { return nonEmpty(d.MediaURLs...) }
func (d OtherDetails) assetURLs() []string     { return nonEmpty(d.MediaURL) }

func (d WritingDetails) text() []string   { return []string{d.Content} }
func (d AudioDetails) text() []string     { return []string{d.Lyrics} }
func (d DrawingDetails) text() []string   { return []string{d.Materials} }
func (d SculptureDetails) text() []string { return []string{d.Materials} }
func (d OtherDetails) text() []string     { return []string{d.Notes} }

func (d WritingDetails) record(rec map[string]any) {
	setString(rec, "content", d.Content)
	setInt(rec, "wordCount", d.WordCount)
}

func (d AudioDetails) record(rec map[string]any) {
	setString(rec, "mediaUrl", d.MediaURL)
	setString(rec, "lyrics", d.Lyrics)
	setInt(rec, "durationSeconds", d.DurationSeconds)
}

func (d DrawingDetails) record(rec map[string]any) {
	if len(d.MediaURLs) > 0 {
		rec["mediaUrls"] = append([]string(nil), d.MediaURLs...)
	}
	setString(rec, "materials", d.Materials)
	setString(rec, "dimensions", d.Dimensions)
}

func (d SculptureDetails) record(rec map[string]any) {
	if len(d.MediaURLs) > 0 {
		rec["mediaUrls"] = append([]string(nil), d.MediaURLs...)
	}
	setString(rec, "materials", d.Materials)
	setString(rec, "dimensions", d.Dimensions)
	if d.WeightKg != 0 {
		rec["weightKg"] = d.WeightKg
	}
}

func (d OtherDetails) record(rec map[string]any) {
	setString(rec, "mediaUrl", d.MediaURL)
	setString(rec, "notes", d.Notes)
}

// NewDetails returns the empty detail variant for m.
func NewDetails(m Medium) (Details, error) {
	switch m {
	case MediumWriting:
		return WritingDetails{}, nil
	case MediumAudio:
		return AudioDetails{}, nil
	case MediumDrawing:
		return DrawingDetails{}, nil
	case MediumSculpture:
		return SculptureDetails{}, nil
	case MediumOther:
		return OtherDetails{}, nil
	}
	return nil, fmt.Errorf("%w: unknown medium %q", ErrInvalidArtwork, m)
}

// Validate checks the invariants of the record. Dates are range checked only,
// not against the calendar.
func (a *Artwork) Validate() error {
	if _, err := ParseMedium(string(a.Medium)); err != nil {
		return err
	}
	if a.Details == nil {
		return fmt.Errorf("%w: details missing", ErrInvalidArtwork)
	}
	if a.Details.Medium() != a.Medium {
		return fmt.Errorf("%w: %s details on %s artwork", ErrInvalidArtwork, a.Details.Medium(), a.Medium)
	}
	if a.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", ErrInvalidArtwork)
	}
	if a.Month != 0 && (a.Month < 1 || a.Month > 12) {
		return fmt.Errorf("%w: month out of range", ErrInvalidArtwork)
	}
	if a.Day != 0 && (a.Day < 1 || a.Day > 31) {
		return fmt.Errorf("%w: day out of range", ErrInvalidArtwork)
	}
	if a.Rating < 0 || a.Rating > 5 {
		return fmt.Errorf("%w: rating out of range", ErrInvalidArtwork)
	}
	if a.Evaluation < 0 || a.Evaluation > 100 {
		return fmt.Errorf("%w: evaluation out of range", ErrInvalidArtwork)
	}
	return nil
}

// AssetURLs returns the cover image followed by the medium's media URLs.
func (a *Artwork) AssetURLs() []string {
	urls := nonEmpty(a.CoverImageURL)
	if a.Details != nil {
		urls = append(urls, a.Details.assetURLs()...)
	}
	return urls
}

// SearchText returns the free-text fields a gallery query matches against.
func (a *Artwork) SearchText() []string {
	fields := []string{a.Title, a.Description, a.Category}
	fields = append(fields, a.Tags...)
	if a.Details != nil {
		fields = append(fields, a.Details.text()...)
	}
	return fields
}

// DateKey orders artworks chronologically; unknown month or day sort first within the year.
func (a *Artwork) DateKey() int {
	return a.Year*10000 + a.Month*100 + a.Day
}

// artworkHeader is the flat-record shape of the fields every medium shares.
type artworkHeader struct {
	ID            string   `json:"id"`
	Medium        Medium   `json:"medium"`
	Category      string   `json:"category"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Year          int      `json:"year"`
	Month         int      `json:"month"`
	Day           int      `json:"day"`
	CoverImageURL string   `json:"coverImageUrl"`
	Tags          []string `json:"tags"`
	Rating        int      `json:"rating"`
	Evaluation    int      `json:"evaluation"`
	Hidden        bool     `json:"hidden"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
}

// Record flattens the artwork into a single key/value row. Timestamps are
// Unix milliseconds.
func (a Artwork) Record() map[string]any {
	rec := map[string]any{
		"id":         a.ID,
		"medium":     string(a.Medium),
		"title":      a.Title,
		"year":       a.Year,
		"rating":     a.Rating,
		"evaluation": a.Evaluation,
		"hidden":     a.Hidden,
	}
	setString(rec, "category", a.Category)
	setString(rec, "description", a.Description)
	setInt(rec, "month", a.Month)
	setInt(rec, "day", a.Day)
	setString(rec, "coverImageUrl", a.CoverImageURL)
	if len(a.Tags) > 0 {
		rec["tags"] = append([]string(nil), a.Tags...)
	}
	if !a.CreatedAt.IsZero() {
		rec["createdAt"] = a.CreatedAt.UnixMilli()
	}
	if !a.UpdatedAt.IsZero() {
		rec["updatedAt"] = a.UpdatedAt.UnixMilli()
	}
	if a.Details != nil {
		a.Details.record(rec)
	}
	return rec
}

// MarshalJSON encodes the artwork as its flat record.
func (a Artwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Record())
}

// UnmarshalJSON decodes a flat record, choosing the detail variant from medium.
func (a *Artwork) UnmarshalJSON(data []byte) error {
	var h artworkHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	details, err := decodeDetails(h.Medium, data)
	if err != nil {
		return err
	}
	*a = Artwork{
		ID:            h.ID,
		Medium:        h.Medium,
		Category:      h.Category,
		Title:         h.Title,
		Description:   h.Description,
		Year:          h.Year,
		Month:         h.Month,
		Day:           h.Day,
		CoverImageURL: h.CoverImageURL,
		Tags:          h.Tags,
		Rating:        h.Rating,
		Evaluation:    h.Evaluation,
		Hidden:        h.Hidden,
		Details:       details,
	}
	if h.CreatedAt != 0 {
		a.CreatedAt = time.UnixMilli(h.CreatedAt).UTC()
	}
	if h.UpdatedAt != 0 {
		a.UpdatedAt = time.UnixMilli(h.UpdatedAt).UTC()
	}
	return nil
}

func decodeDetails(m Medium, data []byte) (Details, error) {
	switch m {
	case MediumWriting:
		var d WritingDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case MediumAudio:
		var d AudioDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case MediumDrawing:
		var d DrawingDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case MediumSculpture:
		var d SculptureDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case MediumOther:
		var d OtherDetails
		err := json.Unmarshal(data, &d)
		return d, err
	}
	return nil, fmt.Errorf("%w: unknown medium %q", ErrInvalidArtwork, m)
}

// ArtworkFromRecord decodes a flat row read from a document store. id wins
// over any id stored inside the row.
func ArtworkFromRecord(id string, rec map[string]any) (Artwork, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return Artwork{}, err
	}
	var a Artwork
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artwork{}, err
	}
	if id != "" {
		a.ID = id
	}
	return a, nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func setString(rec map[string]any, key, v string) {
	if v != "" {
		rec[key] = v
	}
}

func setInt(rec map[string]any, key string, v int) {
	if v != 0 {
		rec[key] = v
	}
}
