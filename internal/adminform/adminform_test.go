package adminform

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"artwall/internal/domain"
)

var fixedNow = time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

func TestVisibilityRules(t *testing.T) {
	tests := []struct {
		medium   domain.Medium
		category string
		field    Field
		want     bool
	}{
		{domain.MediumAudio, "song", FieldLyrics, true},
		{domain.MediumAudio, "instrumental", FieldLyrics, false},
		{domain.MediumDrawing, "sketch", FieldLyrics, false},
		{domain.MediumWriting, "essay", FieldWordCount, true},
		{domain.MediumWriting, "poem", FieldWordCount, false},
		{domain.MediumSculpture, "clay", FieldWeightKg, true},
		{domain.MediumDrawing, "sketch", FieldWeightKg, false},
		{domain.MediumOther, "misc", FieldTitle, true},
	}
	for _, tc := range tests {
		if got := IsVisible(tc.medium, tc.category, tc.field); got != tc.want {
			t.Fatalf("IsVisible(%s, %s, %s) = %v, want %v", tc.medium, tc.category, tc.field, got, tc.want)
		}
	}
}

func TestSchemaForDefaultsCategory(t *testing.T) {
	s := SchemaFor(domain.MediumWriting, "")
	if s.Category != "poem" {
		t.Fatalf("Category = %q, want poem", s.Category)
	}
	if len(s.Categories) != 3 || s.Categories[1].Label != "Short Story" {
		t.Fatalf("Categories = %+v", s.Categories)
	}
	required := map[Field]bool{}
	for _, f := range s.Fields {
		if f.Required {
			required[f.Name] = true
		}
	}
	for _, f := range []Field{FieldMedium, FieldTitle, FieldYear, FieldContent} {
		if !required[f] {
			t.Fatalf("expected %s to be required, got %+v", f, s.Fields)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	f := Form{Medium: "audio"}
	f.ApplyDefaults(fixedNow)
	if f.Category != "song" || f.Year != 2024 || f.Month != 7 || f.Evaluation != defaultEvaluation {
		t.Fatalf("ApplyDefaults() = %+v", f)
	}

	keep := Form{Medium: "audio", Category: "podcast", Year: 2019, Month: 2, Evaluation: 10}
	keep.ApplyDefaults(fixedNow)
	if keep.Category != "podcast" || keep.Year != 2019 || keep.Month != 2 || keep.Evaluation != 10 {
		t.Fatalf("ApplyDefaults() overwrote values: %+v", keep)
	}
}

func TestValidate(t *testing.T) {
	valid := Form{Medium: "audio", Category: "song", Title: "Night Bus", Year: 2023, MediaURL: "https://example.com/a.mp3", Lyrics: "la"}
	if errs := valid.Validate(fixedNow); len(errs) != 0 {
		t.Fatalf("Validate() unexpected errors: %v", errs)
	}

	tests := []struct {
		name  string
		form  Form
		field Field
	}{
		{name: "unknown medium", form: Form{Medium: "tapestry"}, field: FieldMedium},
		{name: "missing title", form: func() Form { f := valid; f.Title = " "; return f }(), field: FieldTitle},
		{name: "song needs lyrics", form: func() Form { f := valid; f.Lyrics = ""; return f }(), field: FieldLyrics},
		{name: "month range", form: func() Form { f := valid; f.Month = 13; return f }(), field: FieldMonth},
		{name: "day range", form: func() Form { f := valid; f.Day = 32; return f }(), field: FieldDay},
		{name: "future year", form: func() Form { f := valid; f.Year = 2031; return f }(), field: FieldYear},
		{name: "rating range", form: func() Form { f := valid; f.Rating = 9; return f }(), field: FieldRating},
		{name: "bad media url", form: func() Form { f := valid; f.MediaURL = "ftp://x"; return f }(), field: FieldMediaURL},
		{name: "category of other medium", form: func() Form { f := valid; f.Category = "sketch"; return f }(), field: FieldCategory},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.form.Validate(fixedNow)
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("Validate() = %v, want error on %s", errs, tc.field)
			}
		})
	}

	instrumental := valid
	instrumental.Category = "instrumental"
	instrumental.Lyrics = ""
	if errs := instrumental.Validate(fixedNow); len(errs) != 0 {
		t.Fatalf("instrumental should not require lyrics: %v", errs)
	}
}

func TestFormArtworkDropsHiddenFields(t *testing.T) {
	f := Form{
		Medium: "audio", Category: "instrumental", Title: " Drift ", Year: 2022,
		MediaURL: "https://example.com/drift.mp3", Lyrics: "stale lyrics", Content: "not audio",
		Tags: []string{"Ambient", "ambient", " "},
	}
	a, err := f.Artwork("id-1")
	if err != nil {
		t.Fatalf("Artwork() error: %v", err)
	}
	d, ok := a.Details.(domain.AudioDetails)
	if !ok {
		t.Fatalf("Details = %T", a.Details)
	}
	if d.Lyrics != "" {
		t.Fatalf("lyrics should be dropped for instrumentals, got %q", d.Lyrics)
	}
	if a.Title != "Drift" || len(a.Tags) != 1 || a.Tags[0] != "ambient" {
		t.Fatalf("Artwork() = %+v", a)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("converted artwork invalid: %v", err)
	}

	back := FromArtwork(a)
	if back.MediaURL != d.MediaURL || back.Medium != "audio" {
		t.Fatalf("FromArtwork() = %+v", back)
	}
}

type memoryDrafts struct {
	mu     sync.Mutex
	saves  int
	drafts map[string]domain.Draft
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]domain.Draft{}}
}

func (m *memoryDrafts) Load(_ context.Context, owner, key string) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[owner+"/"+key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (m *memoryDrafts) Save(_ context.Context, d domain.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.drafts[d.Owner+"/"+d.Key] = d
	return nil
}

func (m *memoryDrafts) Delete(_ context.Context, owner, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, owner+"/"+key)
	return nil
}

func (m *memoryDrafts) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func TestAutosaverDebounces(t *testing.T) {
	store := newMemoryDrafts()
	a := NewAutosaver(store, "admin", "new", 30*time.Millisecond, zerolog.Nop())
	defer a.Close()

	for i := 1; i <= 5; i++ {
		a.Touch(Form{Title: "v", Year: 2000 + i})
	}
	deadline := time.Now().Add(2 * time.Second)
	for store.saveCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)
	if got := store.saveCount(); got != 1 {
		t.Fatalf("expected one debounced save, got %d", got)
	}
	d, err := store.Load(context.Background(), "admin", "new")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	var f Form
	if err := json.Unmarshal(d.Payload, &f); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if f.Year != 2005 {
		t.Fatalf("saved draft year = %d, want the latest edit", f.Year)
	}
}

func TestAutosaverCloseCancelsPendingWrite(t *testing.T) {
	store := newMemoryDrafts()
	a := NewAutosaver(store, "admin", "new", 20*time.Millisecond, zerolog.Nop())
	a.Touch(Form{Title: "unsaved"})
	a.Close()
	time.Sleep(60 * time.Millisecond)
	if got := store.saveCount(); got != 0 {
		t.Fatalf("expected no save after Close, got %d", got)
	}
	a.Touch(Form{Title: "after close"})
	if a.Pending() {
		t.Fatalf("closed autosaver accepted an edit")
	}
}

func TestDraftsLoadFlushesPending(t *testing.T) {
	store := newMemoryDrafts()
	d := NewDrafts(store, time.Hour, zerolog.Nop())
	d.Touch("admin", "k1", Form{Title: "fresh"})

	f, savedAt, err := d.Load(context.Background(), "admin", "k1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.Title != "fresh" || savedAt.IsZero() {
		t.Fatalf("Load() = %+v, %v", f, savedAt)
	}

	if err := d.Discard(context.Background(), "admin", "k1"); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
	if _, _, err := d.Load(context.Background(), "admin", "k1"); err == nil {
		t.Fatalf("expected missing draft after Discard")
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

// blockingDrafts holds every Save until release is closed.
type blockingDrafts struct {
	*memoryDrafts
	saving  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingDrafts) Save(ctx context.Context, d domain.Draft) error {
	b.once.Do(func() { close(b.saving) })
	<-b.release
	return b.memoryDrafts.Save(ctx, d)
}

func TestDraftsDiscardWaitsForWriteInFlight(t *testing.T) {
	store := &blockingDrafts{memoryDrafts: newMemoryDrafts(), saving: make(chan struct{}), release: make(chan struct{})}
	d := NewDrafts(store, 5*time.Millisecond, zerolog.Nop())
	d.Touch("admin", "k1", Form{Title: "half typed"})
	<-store.saving

	discarded := make(chan error, 1)
	go func() { discarded <- d.Discard(context.Background(), "admin", "k1") }()

	select {
	case err := <-discarded:
		t.Fatalf("Discard() returned before the write finished: %v", err)
	case <-time.After(30 * time.Millisecond):
	}
	close(store.release)
	if err := <-discarded; err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
	if _, err := store.Load(context.Background(), "admin", "k1"); err != domain.ErrNotFound {
		t.Fatalf("draft still stored after Discard: %v", err)
	}
	if got := d.Active(); got != 0 {
		t.Fatalf("Active() = %d after Discard", got)
	}
}

func TestDraftsReleaseIdleSavers(t *testing.T) {
	store := newMemoryDrafts()
	d := NewDrafts(store, 5*time.Millisecond, zerolog.Nop())
	d.Touch("admin", "k1", Form{Title: "one"})
	d.Touch("admin", "k2", Form{Title: "two"})
	if got := d.Active(); got != 2 {
		t.Fatalf("Active() = %d, want 2", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Active() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := d.Active(); got != 0 {
		t.Fatalf("Active() = %d after writes landed, want 0", got)
	}
	if got := store.saveCount(); got != 2 {
		t.Fatalf("saves = %d, want 2", got)
	}

	// a released key starts a fresh saver on the next edit
	d.Touch("admin", "k1", Form{Title: "again"})
	f, _, err := d.Load(context.Background(), "admin", "k1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.Title != "again" {
		t.Fatalf("Load() title = %q", f.Title)
	}
}
