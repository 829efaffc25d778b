package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"artwall/internal/domain"
	"artwall/internal/imageurl"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	const original = "https://storage.googleapis.com/art-bucket/drawing/heron.jpg"
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"resolve", original}, "https://storage.googleapis.com/art-bucket/drawing/heron_480x480.jpg"},
		{[]string{"resolve", "--size", "thumbnail", original}, "https://storage.googleapis.com/art-bucket/drawing/heron_200x200.jpg"},
		{[]string{"resolve", "-s", "original", original}, original},
	}
	for _, tc := range tests {
		got, err := run(t, tc.args...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if strings.TrimSpace(got) != tc.want {
			t.Fatalf("%v = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestResolveRejectsUnknownSize(t *testing.T) {
	if _, err := run(t, "resolve", "--size", "huge", "https://example.com/a.jpg"); err == nil {
		t.Fatalf("expected error for unknown size")
	}
}

func TestDeriveCommand(t *testing.T) {
	got, err := run(t, "derive",
		"https://storage.googleapis.com/art-bucket/drawing/heron_1200x1200.jpg",
		"https://example.com/plain.jpg",
	)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{"https://storage.googleapis.com/art-bucket/drawing/heron.jpg", "https://example.com/plain.jpg"}
	if len(lines) != len(want) || lines[0] != want[0] || lines[1] != want[1] {
		t.Fatalf("derive output = %q", got)
	}
}

func TestCollectURLs(t *testing.T) {
	items := []domain.Artwork{
		{CoverImageURL: "https://example.com/c.jpg", Details: domain.DrawingDetails{MediaURLs: []string{"https://example.com/1.jpg", ""}}},
		{Details: domain.WritingDetails{Content: "text"}},
	}
	got := collectURLs(items)
	if len(got) != 2 || got[0] != "https://example.com/c.jpg" {
		t.Fatalf("collectURLs() = %v", got)
	}
}

func TestWriteAudit(t *testing.T) {
	results := []imageurl.AuditResult{
		{URL: "https://storage.googleapis.com/b/a.jpg", Missing: []imageurl.Size{imageurl.SizeFull}},
		{URL: "https://storage.googleapis.com/b/ok.jpg"},
		{URL: "https://storage.googleapis.com/b/locked.jpg", Errors: map[imageurl.Size]string{imageurl.SizeCard: "permission denied"}},
		{URL: "https://example.com/x.jpg", Unsupported: true},
	}
	cmd := newAuditCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := writeAudit(cmd, results, false); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "MISS  https://storage.googleapis.com/b/a.jpg (full)") || !strings.Contains(text, "4 images checked, 1 with missing variants, 1 with lookup errors") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if !strings.Contains(text, "ERR   https://storage.googleapis.com/b/locked.jpg (card): permission denied") || strings.Contains(text, "MISS  https://storage.googleapis.com/b/locked.jpg") {
		t.Fatalf("lookup error reported as missing:\n%s", text)
	}

	out.Reset()
	if err := writeAudit(cmd, results, true); err != nil {
		t.Fatal(err)
	}
	var decoded []imageurl.AuditResult
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil || len(decoded) != 4 {
		t.Fatalf("json output = %s (%v)", out.String(), err)
	}
}
