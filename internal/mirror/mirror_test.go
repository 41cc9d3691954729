package mirror

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hollando78/airgen-sub002/internal/domain"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

func testRequirement() *domain.Requirement {
	return &domain.Requirement{
		ID:           "acme:demo:URD-001",
		Ref:          "URD-001",
		TenantSlug:   "acme",
		ProjectSlug:  "demo",
		DocumentSlug: "user-needs",
		Title:        "Braking distance",
		Text:         "The system shall stop within 100 m.",
		Pattern:      "ubiquitous",
		Tags:         []string{"safety", "braking"},
		Path:         "acme/demo/requirements/URD-001.md",
		UpdatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteRendersFrontMatter(t *testing.T) {
	w := NewWriter(t.TempDir(), logger.NewNop())
	req := testRequirement()
	if err := w.Write(context.Background(), req); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(w.root, "acme", "demo", "requirements", "URD-001.md"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := string(raw)
	for _, want := range []string{
		"ref: URD-001",
		"document: user-needs",
		"tags: [safety, braking]",
		"# Braking distance",
		"The system shall stop within 100 m.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("rendered file missing %q:\n%s", want, got)
		}
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	w := NewWriter(t.TempDir(), logger.NewNop())
	if err := w.Remove(context.Background(), "acme/demo/requirements/URD-404.md"); err != nil {
		t.Fatalf("remove of absent file: %v", err)
	}
}

func TestWriteThenRemove(t *testing.T) {
	w := NewWriter(t.TempDir(), logger.NewNop())
	req := testRequirement()
	if err := w.Write(context.Background(), req); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Remove(context.Background(), req.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.root, "acme", "demo", "requirements", "URD-001.md")); !os.IsNotExist(err) {
		t.Fatalf("file still present after remove")
	}
}
