package repo

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"

	"artwall/internal/domain"
)

// Runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func TestArtworkRepositoryFirestoreEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "artwall-test")
	if err != nil {
		t.Fatalf("firestore.NewClient() error: %v", err)
	}
	defer client.Close()
	repo := NewArtworkFirestoreRepository(client, zerolog.Nop())

	art := &domain.Artwork{
		Medium: domain.MediumDrawing, Title: "Heron", Year: 2021, Month: 3,
		CoverImageURL: "https://example.com/heron.jpg",
		Details:       domain.DrawingDetails{Materials: "Ink"},
	}
	id, err := repo.Create(ctx, art)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	got, err := repo.Get(ctx, domain.MediumDrawing, id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Title != "Heron" || got.Month != 3 {
		t.Fatalf("Get() = %+v", got)
	}

	got.Medium = domain.MediumSculpture
	got.Details = domain.SculptureDetails{Materials: "Clay", WeightKg: 2.5}
	if err := repo.Update(ctx, domain.MediumDrawing, got); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if _, err := repo.Get(ctx, domain.MediumDrawing, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("old location still readable: %v", err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	found := false
	for _, a := range all {
		if a.ID == id && a.Medium == domain.MediumSculpture {
			found = true
		}
	}
	if !found {
		t.Fatalf("moved artwork missing from ListAll()")
	}

	if err := repo.Delete(ctx, domain.MediumSculpture, id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := repo.Delete(ctx, domain.MediumSculpture, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete() = %v, want ErrNotFound", err)
	}
}
