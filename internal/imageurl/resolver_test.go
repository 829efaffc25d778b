package imageurl

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

const firebaseURL = "https://firebasestorage.googleapis.com/v0/b/my-bucket/o/drawing%2Fexample.jpg?alt=media&token=abc-123"

func TestResolveFirebaseDimensions(t *testing.T) {
	tests := map[Size]string{
		SizeThumbnail: "example_200x200.jpg",
		SizeCard:      "example_480x480.jpg",
		SizeFull:      "example_1200x1200.jpg",
	}
	for size, want := range tests {
		t.Run(string(size), func(t *testing.T) {
			got := Resolve(firebaseURL, size)
			if !strings.Contains(got, want) {
				t.Fatalf("Resolve(%q) = %q, want it to contain %q", size, got, want)
			}
			if !strings.HasSuffix(got, "?alt=media&token=abc-123") {
				t.Fatalf("query not preserved: %q", got)
			}
		})
	}
}

func TestResolveConcreteScenario(t *testing.T) {
	in := "https://firebasestorage.googleapis.com/v0/b/my-bucket/o/path%2Fimage.jpg?alt=media"
	want := "https://firebasestorage.googleapis.com/v0/b/my-bucket/o/path%2Fimage_480x480.jpg?alt=media"
	if got := Resolve(in, SizeCard); got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveDefaultsFirebaseQuery(t *testing.T) {
	in := "https://firebasestorage.googleapis.com/v0/b/my-bucket/o/audio%2Fcover.png"
	want := "https://firebasestorage.googleapis.com/v0/b/my-bucket/o/audio%2Fcover_200x200.png?alt=media"
	if got := Resolve(in, SizeThumbnail); got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveReencodesSpecialCharacters(t *testing.T) {
	in := "https://firebasestorage.googleapis.com/v0/b/b/o/writing%2Fmy%20poem%20(draft).jpeg?alt=media"
	want := "https://firebasestorage.googleapis.com/v0/b/b/o/writing%2Fmy%20poem%20(draft)_1200x1200.jpeg?alt=media"
	if got := Resolve(in, SizeFull); got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveGCSShape(t *testing.T) {
	in := "https://storage.googleapis.com/art-bucket/sculpture/bust.webp?ignored=1"
	got := Resolve(in, SizeCard)
	want := "https://storage.googleapis.com/art-bucket/sculpture/bust_480x480.webp"
	if got != want {
		t.Fatalf("Resolve() = %q, want %q", got, want)
	}
	if strings.Contains(got, "/o/") || strings.Contains(got, "?") {
		t.Fatalf("GCS output changed shape: %q", got)
	}
}

func TestResolvePassthrough(t *testing.T) {
	inputs := []string{
		"https://example.com/x.jpg",
		"",
		"not a url at all",
		"https://cdn.example.org/storage/googleapis/x.png",
		"https://firebasestorage.googleapis.com/v0/b/bucket/no-object-segment",
		"https://firebasestorage.googleapis.com/v0/b/bucket/o/bad%zzencoding.jpg",
	}
	sizes := []Size{SizeThumbnail, SizeCard, SizeFull, SizeOriginal, Size("huge")}
	for _, in := range inputs {
		for _, size := range sizes {
			if got := Resolve(in, size); got != in {
				t.Fatalf("Resolve(%q, %q) = %q, want passthrough", in, size, got)
			}
		}
	}
}

func TestResolveOriginalIsIdentity(t *testing.T) {
	for _, in := range []string{firebaseURL, "https://storage.googleapis.com/b/a.jpg", "https://example.com/x.jpg"} {
		if got := Resolve(in, SizeOriginal); got != in {
			t.Fatalf("Resolve(%q, original) = %q", in, got)
		}
	}
}

func TestResolveWithoutExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://storage.googleapis.com/b/drawing/photo", "https://storage.googleapis.com/b/drawing/photo_480x480"},
		{"https://storage.googleapis.com/b/drawing/photo.", "https://storage.googleapis.com/b/drawing/photo_480x480."},
		{"https://firebasestorage.googleapis.com/v0/b/b/o/drawing%2Fphoto.?alt=media", "https://firebasestorage.googleapis.com/v0/b/b/o/drawing%2Fphoto_480x480.?alt=media"},
	}
	for _, tc := range tests {
		got := Resolve(tc.in, SizeCard)
		if got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if back := DeriveOriginal(got); back != tc.in {
			t.Fatalf("DeriveOriginal(%q) = %q, want %q", got, back, tc.in)
		}
	}
}

func TestResolveDropsFragment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"https://firebasestorage.googleapis.com/v0/b/my-bucket/o/a%2Fx.jpg#frag",
			"https://firebasestorage.googleapis.com/v0/b/my-bucket/o/a%2Fx_480x480.jpg?alt=media",
		},
		{
			"https://firebasestorage.googleapis.com/v0/b/my-bucket/o/a%2Fx.jpg?alt=media&token=t1#frag",
			"https://firebasestorage.googleapis.com/v0/b/my-bucket/o/a%2Fx_480x480.jpg?alt=media&token=t1",
		},
		{
			"https://storage.googleapis.com/my-bucket/a/x.jpg#frag",
			"https://storage.googleapis.com/my-bucket/a/x_480x480.jpg",
		},
	}
	for _, tc := range tests {
		if got := Resolve(tc.in, SizeCard); got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveOriginalRoundTrip(t *testing.T) {
	inputs := []string{
		firebaseURL,
		"https://firebasestorage.googleapis.com/v0/b/my-bucket/o/path%2Fimage.jpg",
		"https://storage.googleapis.com/art-bucket/sculpture/bust.webp",
		"https://storage.googleapis.com/art-bucket/drawing/photo",
	}
	for _, in := range inputs {
		_, wantPath, ok := ObjectPath(in)
		if !ok {
			t.Fatalf("ObjectPath(%q) failed", in)
		}
		derived := DeriveOriginal(Resolve(in, SizeCard))
		_, gotPath, ok := ObjectPath(derived)
		if !ok {
			t.Fatalf("ObjectPath(%q) failed", derived)
		}
		if gotPath != wantPath {
			t.Fatalf("round trip path = %q, want %q", gotPath, wantPath)
		}
	}
}

func TestDeriveOriginalPassthrough(t *testing.T) {
	for _, in := range []string{"https://example.com/x_200x200.jpg", firebaseURL} {
		if got := DeriveOriginal(in); got != in {
			t.Fatalf("DeriveOriginal(%q) = %q, want passthrough", in, got)
		}
	}
}

func TestParseSize(t *testing.T) {
	for _, tok := range []string{"thumbnail", "card", "full", "original"} {
		if _, ok := ParseSize(tok); !ok {
			t.Fatalf("ParseSize(%q) rejected", tok)
		}
	}
	if _, ok := ParseSize("medium"); ok {
		t.Fatalf("ParseSize(medium) accepted")
	}
}

func TestResolveWithFallbackMissingVariant(t *testing.T) {
	r := NewResolver(Options{Checker: CheckerFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("404")
	})})
	if got := r.ResolveWithFallback(context.Background(), firebaseURL, SizeCard); got != firebaseURL {
		t.Fatalf("ResolveWithFallback() = %q, want original", got)
	}
}

func TestResolveWithFallbackPresentVariant(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(Options{Checker: CheckerFunc(func(_ context.Context, u string) (bool, error) {
		calls.Add(1)
		return true, nil
	})})
	want := Resolve(firebaseURL, SizeCard)
	if got := r.ResolveWithFallback(context.Background(), firebaseURL, SizeCard); got != want {
		t.Fatalf("ResolveWithFallback() = %q, want %q", got, want)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one check, got %d", calls.Load())
	}
}

func TestResolveWithFallbackOriginalSkipsCheck(t *testing.T) {
	r := NewResolver(Options{Checker: CheckerFunc(func(context.Context, string) (bool, error) {
		t.Fatalf("check must not run for original size")
		return false, nil
	})})
	if got := r.ResolveWithFallback(context.Background(), firebaseURL, SizeOriginal); got != firebaseURL {
		t.Fatalf("ResolveWithFallback() = %q", got)
	}
}

func TestVariants(t *testing.T) {
	r := NewResolver(Options{Checker: CheckerFunc(func(_ context.Context, u string) (bool, error) {
		return !strings.Contains(u, "1200x1200"), nil
	})})
	got := r.Variants(context.Background(), firebaseURL)
	if got[SizeOriginal] != firebaseURL {
		t.Fatalf("original = %q", got[SizeOriginal])
	}
	if got[SizeFull] != firebaseURL {
		t.Fatalf("full should fall back, got %q", got[SizeFull])
	}
	if got[SizeThumbnail] != Resolve(firebaseURL, SizeThumbnail) {
		t.Fatalf("thumbnail = %q", got[SizeThumbnail])
	}
}
