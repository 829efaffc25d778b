package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"artwall/internal/domain"
)

const (
	artworksCollection = "artworks"
	itemsCollection    = "items"
)

// ArtworkRepositoryFirestore keeps the gallery tree as
// artworks/{medium}/items/{id}, one flat document per artwork.
type ArtworkRepositoryFirestore struct {
	client *firestore.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewArtworkFirestoreRepository wraps an open Firestore client.
func NewArtworkFirestoreRepository(client *firestore.Client, logger zerolog.Logger) *ArtworkRepositoryFirestore {
	return &ArtworkRepositoryFirestore{client: client, logger: logger, now: time.Now}
}

func (r *ArtworkRepositoryFirestore) items(m domain.Medium) *firestore.CollectionRef {
	return r.client.Collection(artworksCollection).Doc(string(m)).Collection(itemsCollection)
}

// ListAll walks every medium's items collection. Leaves that fail to decode
// are skipped and logged so one bad record does not hide the gallery.
func (r *ArtworkRepositoryFirestore) ListAll(ctx context.Context) ([]domain.Artwork, error) {
	var out []domain.Artwork
	for _, m := range domain.Mediums {
		iter := r.items(m).Documents(ctx)
		for {
			doc, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, fmt.Errorf("list %s artworks: %w", m, err)
			}
			a, err := decodeDoc(m, doc)
			if err != nil {
				r.logger.Warn().Err(err).Str("medium", string(m)).Str("id", doc.Ref.ID).Msg("firestore: skipping artwork")
				continue
			}
			out = append(out, a)
		}
		iter.Stop()
	}
	return out, nil
}

func (r *ArtworkRepositoryFirestore) Get(ctx context.Context, medium domain.Medium, id string) (*domain.Artwork, error) {
	doc, err := r.items(medium).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artwork: %w", err)
	}
	a, err := decodeDoc(medium, doc)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtworkRepositoryFirestore) Create(ctx context.Context, art *domain.Artwork) (string, error) {
	if err := art.Validate(); err != nil {
		return "", err
	}
	ref := r.items(art.Medium).NewDoc()
	now := r.now().UTC().Truncate(time.Millisecond)
	art.ID = ref.ID
	art.CreatedAt, art.UpdatedAt = now, now
	if _, err := ref.Create(ctx, art.Record()); err != nil {
		return "", fmt.Errorf("create artwork: %w", err)
	}
	return art.ID, nil
}

// Update overwrites the document. A medium change moves the document inside
// one transaction so readers never see it under both mediums.
func (r *ArtworkRepositoryFirestore) Update(ctx context.Context, fromMedium domain.Medium, art *domain.Artwork) error {
	if err := art.Validate(); err != nil {
		return err
	}
	oldRef := r.items(fromMedium).Doc(art.ID)
	newRef := r.items(art.Medium).Doc(art.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(oldRef)
		if err != nil {
			return err
		}
		if existing, err := decodeDoc(fromMedium, snap); err == nil && !existing.CreatedAt.IsZero() {
			art.CreatedAt = existing.CreatedAt
		}
		art.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
		if art.CreatedAt.IsZero() {
			art.CreatedAt = art.UpdatedAt
		}
		if err := tx.Set(newRef, art.Record()); err != nil {
			return err
		}
		if fromMedium != art.Medium {
			return tx.Delete(oldRef)
		}
		return nil
	})
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update artwork: %w", err)
	}
	return nil
}

func (r *ArtworkRepositoryFirestore) Delete(ctx context.Context, medium domain.Medium, id string) error {
	_, err := r.items(medium).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	return nil
}

func decodeDoc(m domain.Medium, doc *firestore.DocumentSnapshot) (domain.Artwork, error) {
	rec := doc.Data()
	if rec == nil {
		return domain.Artwork{}, domain.ErrNotFound
	}
	// The tree position is authoritative for the discriminator.
	rec["medium"] = string(m)
	return domain.ArtworkFromRecord(doc.Ref.ID, rec)
}

func isNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

var _ domain.ArtworkRepository = (*ArtworkRepositoryFirestore)(nil)
