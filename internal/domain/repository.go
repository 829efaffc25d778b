package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ArtworkRepository persists the gallery tree, keyed by medium then id.
// Writes are last-write-wins; there is no version check.
type ArtworkRepository interface {
	// ListAll reads the whole tree in one pass.
	ListAll(ctx context.Context) ([]Artwork, error)
	Get(ctx context.Context, medium Medium, id string) (*Artwork, error)
	// Create stores a new artwork and returns the id assigned by the store.
	Create(ctx context.Context, art *Artwork) (string, error)
	// Update overwrites an existing artwork. When the medium changed the
	// record moves out of fromMedium.
	Update(ctx context.Context, fromMedium Medium, art *Artwork) error
	Delete(ctx context.Context, medium Medium, id string) error
}

// Draft is an autosaved, not yet submitted admin form.
type Draft struct {
	Owner   string          `json:"owner"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

// DraftStore keeps one draft per owner and key.
type DraftStore interface {
	Load(ctx context.Context, owner, key string) (*Draft, error)
	Save(ctx context.Context, draft Draft) error
	Delete(ctx context.Context, owner, key string) error
}
