// Package adminform implements the admin create/edit form: which fields are
// shown for a medium, their defaults, validation, and draft autosave.
package adminform

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"artwall/internal/domain"
)

// Field names match the flat record keys.
type Field string

const (
	FieldMedium          Field = "medium"
	FieldCategory        Field = "category"
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldYear            Field = "year"
	FieldMonth           Field = "month"
	FieldDay             Field = "day"
	FieldCoverImageURL   Field = "coverImageUrl"
	FieldTags            Field = "tags"
	FieldRating          Field = "rating"
	FieldEvaluation      Field = "evaluation"
	FieldHidden          Field = "hidden"
	FieldContent         Field = "content"
	FieldWordCount       Field = "wordCount"
	FieldMediaURL        Field = "mediaUrl"
	FieldMediaURLs       Field = "mediaUrls"
	FieldLyrics          Field = "lyrics"
	FieldDurationSeconds Field = "durationSeconds"
	FieldMaterials       Field = "materials"
	FieldDimensions      Field = "dimensions"
	FieldWeightKg        Field = "weightKg"
	FieldNotes           Field = "notes"
)

var labels = map[Field]string{
	FieldMedium:          "Medium",
	FieldCategory:        "Category",
	FieldTitle:           "Title",
	FieldDescription:     "Description",
	FieldYear:            "Year",
	FieldMonth:           "Month",
	FieldDay:             "Day",
	FieldCoverImageURL:   "Cover image URL",
	FieldTags:            "Tags",
	FieldRating:          "Rating",
	FieldEvaluation:      "Evaluation",
	FieldHidden:          "Hidden",
	FieldContent:         "Text",
	FieldWordCount:       "Word count",
	FieldMediaURL:        "Media URL",
	FieldMediaURLs:       "Images",
	FieldLyrics:          "Lyrics",
	FieldDurationSeconds: "Duration (seconds)",
	FieldMaterials:       "Materials",
	FieldDimensions:      "Dimensions",
	FieldWeightKg:        "Weight (kg)",
	FieldNotes:           "Notes",
}

type rule struct {
	visible  []Field
	required []Field
	hidden   []Field // removes fields made visible by the medium rule
}

var commonRule = rule{
	visible: []Field{
		FieldMedium, FieldCategory, FieldTitle, FieldDescription, FieldYear, FieldMonth, FieldDay,
		FieldCoverImageURL, FieldTags, FieldRating, FieldEvaluation, FieldHidden,
	},
	required: []Field{FieldMedium, FieldTitle, FieldYear},
}

var mediumRules = map[domain.Medium]rule{
	domain.MediumWriting: {
		visible:  []Field{FieldContent, FieldWordCount},
		required: []Field{FieldContent},
	},
	domain.MediumAudio: {
		visible:  []Field{FieldMediaURL, FieldLyrics, FieldDurationSeconds},
		required: []Field{FieldMediaURL},
	},
	domain.MediumDrawing: {
		visible:  []Field{FieldMediaURLs, FieldMaterials, FieldDimensions},
		required: []Field{FieldCoverImageURL},
	},
	domain.MediumSculpture: {
		visible:  []Field{FieldMediaURLs, FieldMaterials, FieldDimensions, FieldWeightKg},
		required: []Field{FieldCoverImageURL},
	},
	domain.MediumOther: {
		visible: []Field{FieldMediaURL, FieldNotes},
	},
}

// categoryRules refine a medium rule for one category, keyed "medium/category".
var categoryRules = map[string]rule{
	"writing/poem":       {hidden: []Field{FieldWordCount}},
	"audio/instrumental": {hidden: []Field{FieldLyrics}},
	"audio/song":         {required: []Field{FieldLyrics}},
}

// Categories lists the allowed categories per medium; the first is the default.
var Categories = map[domain.Medium][]string{
	domain.MediumWriting:   {"poem", "short-story", "essay"},
	domain.MediumAudio:     {"song", "instrumental", "podcast"},
	domain.MediumDrawing:   {"sketch", "illustration", "painting"},
	domain.MediumSculpture: {"clay", "wood", "mixed-media"},
	domain.MediumOther:     {"misc"},
}

// FieldSpec describes one visible form field.
type FieldSpec struct {
	Name     Field  `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Option is a selectable value with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Schema is the field layout of the form for one medium and category.
type Schema struct {
	Medium     domain.Medium `json:"medium"`
	Category   string        `json:"category"`
	Mediums    []Option      `json:"mediums"`
	Categories []Option      `json:"categories"`
	Fields     []FieldSpec   `json:"fields"`
}

// visibility resolves the visible and required sets for a medium/category.
// Required fields are always a subset of visible ones.
func visibility(m domain.Medium, category string) (visible []Field, required map[Field]bool) {
	rules := []rule{commonRule, mediumRules[m]}
	if cr, ok := categoryRules[string(m)+"/"+category]; ok {
		rules = append(rules, cr)
	}
	hidden := map[Field]bool{}
	for _, r := range rules {
		for _, f := range r.hidden {
			hidden[f] = true
		}
	}
	seen := map[Field]bool{}
	for _, r := range rules {
		for _, f := range r.visible {
			if !seen[f] && !hidden[f] {
				seen[f] = true
				visible = append(visible, f)
			}
		}
	}
	required = map[Field]bool{}
	for _, r := range rules {
		for _, f := range r.required {
			if seen[f] {
				required[f] = true
			}
		}
	}
	return visible, required
}

// IsVisible reports whether f is shown for the medium and category.
func IsVisible(m domain.Medium, category string, f Field) bool {
	visible, _ := visibility(m, category)
	for _, v := range visible {
		if v == f {
			return true
		}
	}
	return false
}

// SchemaFor builds the form layout. An empty category selects the medium's default.
func SchemaFor(m domain.Medium, category string) Schema {
	if category == "" {
		category = DefaultCategory(m)
	}
	visible, required := visibility(m, category)
	s := Schema{Medium: m, Category: category}
	for _, medium := range domain.Mediums {
		s.Mediums = append(s.Mediums, Option{Value: string(medium), Label: Label(string(medium))})
	}
	for _, c := range Categories[m] {
		s.Categories = append(s.Categories, Option{Value: c, Label: Label(c)})
	}
	for _, f := range visible {
		s.Fields = append(s.Fields, FieldSpec{Name: f, Label: labels[f], Required: required[f]})
	}
	return s
}

// DefaultCategory returns the first category of the medium.
func DefaultCategory(m domain.Medium) string {
	if cs := Categories[m]; len(cs) > 0 {
		return cs[0]
	}
	return ""
}

// Label turns a token such as "short-story" into "Short Story".
func Label(token string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(token, "-", " "))
}
