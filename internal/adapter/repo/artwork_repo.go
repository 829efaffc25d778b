package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artwall/internal/domain"
	"artwall/internal/infra"
	"artwall/internal/sqlinline"
)

// ArtworkRepositoryPG stores each artwork as one flat jsonb record keyed by
// (id, medium).
type ArtworkRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewArtworkRepository creates a Postgres-backed artwork repository.
func NewArtworkRepository(sql infra.SQLExecutor) *ArtworkRepositoryPG {
	return &ArtworkRepositoryPG{sql: sql}
}

// EnsureSchema creates the artworks table when missing.
func (r *ArtworkRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureArtworks); err != nil {
		return fmt.Errorf("ensure artworks schema: %w", err)
	}
	return nil
}

func (r *ArtworkRepositoryPG) ListAll(ctx context.Context) ([]domain.Artwork, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListArtworks)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	var items []domain.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	return items, nil
}

func (r *ArtworkRepositoryPG) Get(ctx context.Context, medium domain.Medium, id string) (*domain.Artwork, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	a, err := scanArtwork(r.sql.QueryRow(ctx, sqlinline.QGetArtwork, id, string(medium)))
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtworkRepositoryPG) Create(ctx context.Context, art *domain.Artwork) (string, error) {
	if err := art.Validate(); err != nil {
		return "", err
	}
	art.ID = uuid.NewString()
	data, err := json.Marshal(art)
	if err != nil {
		return "", fmt.Errorf("encode artwork: %w", err)
	}
	if err := r.sql.QueryRow(ctx, sqlinline.QInsertArtwork, art.ID, string(art.Medium), data).Scan(&art.CreatedAt, &art.UpdatedAt); err != nil {
		return "", fmt.Errorf("insert artwork: %w", err)
	}
	return art.ID, nil
}

func (r *ArtworkRepositoryPG) Update(ctx context.Context, fromMedium domain.Medium, art *domain.Artwork) error {
	if err := art.Validate(); err != nil {
		return err
	}
	if _, err := uuid.Parse(art.ID); err != nil {
		return domain.ErrNotFound
	}
	data, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("encode artwork: %w", err)
	}
	err = r.sql.QueryRow(ctx, sqlinline.QUpdateArtwork, art.ID, string(fromMedium), string(art.Medium), data).Scan(&art.CreatedAt, &art.UpdatedAt)
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update artwork: %w", err)
	}
	return nil
}

func (r *ArtworkRepositoryPG) Delete(ctx context.Context, medium domain.Medium, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteArtwork, id, string(medium))
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanArtwork reads (id, medium, data, created_at, updated_at). Columns win
// over values stored inside data.
func scanArtwork(row scanner) (domain.Artwork, error) {
	var (
		id, medium       string
		data             []byte
		created, updated time.Time
	)
	if err := row.Scan(&id, &medium, &data, &created, &updated); err != nil {
		return domain.Artwork{}, err
	}
	var a domain.Artwork
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Artwork{}, fmt.Errorf("decode artwork %s: %w", id, err)
	}
	if string(a.Medium) != medium {
		return domain.Artwork{}, fmt.Errorf("%w: row %s stores %q under %q", domain.ErrInvalidArtwork, id, a.Medium, medium)
	}
	a.ID = id
	a.CreatedAt = created.UTC()
	a.UpdatedAt = updated.UTC()
	return a, nil
}

var _ domain.ArtworkRepository = (*ArtworkRepositoryPG)(nil)
