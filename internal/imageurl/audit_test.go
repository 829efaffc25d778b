package imageurl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAuditSeparatesLookupErrors(t *testing.T) {
	const u = "https://storage.googleapis.com/art-bucket/drawing/heron.jpg"
	checker := CheckerFunc(func(_ context.Context, v string) (bool, error) {
		switch {
		case strings.Contains(v, "_200x200"):
			return false, errors.New("permission denied")
		case strings.Contains(v, "_480x480"):
			return true, nil
		}
		return false, nil
	})
	got := Audit(context.Background(), checker, []string{u}, 1)
	want := []AuditResult{{
		URL:     u,
		Missing: []Size{SizeFull},
		Errors:  map[Size]string{SizeThumbnail: "permission denied"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Audit() mismatch (-want +got):\n%s", diff)
	}
}

func TestAudit(t *testing.T) {
	const a = "https://storage.googleapis.com/art-bucket/drawing/heron.jpg"
	const b = "https://firebasestorage.googleapis.com/v0/b/art-bucket/o/audio%2Fcover.png?alt=media"
	checker := CheckerFunc(func(_ context.Context, u string) (bool, error) {
		// only the 480 variants were generated
		return strings.Contains(u, "_480x480"), nil
	})
	got := Audit(context.Background(), checker, []string{a, "", b, a, "https://example.com/x.jpg"}, 2)
	want := []AuditResult{
		{URL: a, Missing: []Size{SizeThumbnail, SizeFull}},
		{URL: b, Missing: []Size{SizeThumbnail, SizeFull}},
		{URL: "https://example.com/x.jpg", Unsupported: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Audit() mismatch (-want +got):\n%s", diff)
	}
}
