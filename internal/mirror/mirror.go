package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hollando78/airgen-sub002/internal/domain"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

// Writer keeps a markdown copy of every live requirement under
// <root>/<tenant>/<project>/requirements/<ref>.md. The graph stays the
// source of truth; the mirror exists for diffing and offline review.
type Writer struct {
	root string
	log  *logger.Logger
}

func NewWriter(root string, log *logger.Logger) *Writer {
	return &Writer{root: root, log: log.With("service", "MarkdownMirror")}
}

func (w *Writer) Write(ctx context.Context, req *domain.Requirement) error {
	if req == nil || req.Path == "" {
		return nil
	}
	target := filepath.Join(w.root, filepath.FromSlash(req.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mirror mkdir: %w", err)
	}
	if err := os.WriteFile(target, []byte(render(req)), 0o644); err != nil {
		return fmt.Errorf("mirror write %s: %w", req.Path, err)
	}
	return nil
}

// Remove drops the file at a graph-relative path. Renumbering calls
// this for the old path before writing the new one; a file that is
// already gone is not an error.
func (w *Writer) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	target := filepath.Join(w.root, filepath.FromSlash(path))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("mirror remove %s: %w", path, err)
	}
	return nil
}

func render(req *domain.Requirement) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "ref: %s\n", req.Ref)
	fmt.Fprintf(&b, "id: %s\n", req.ID)
	if req.DocumentSlug != "" {
		fmt.Fprintf(&b, "document: %s\n", req.DocumentSlug)
	}
	if req.SectionID != "" {
		fmt.Fprintf(&b, "section: %s\n", req.SectionID)
	}
	if req.Pattern != "" {
		fmt.Fprintf(&b, "pattern: %s\n", req.Pattern)
	}
	if req.Verification != "" {
		fmt.Fprintf(&b, "verification: %s\n", req.Verification)
	}
	if len(req.Tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(req.Tags, ", "))
	}
	fmt.Fprintf(&b, "updated: %s\n", req.UpdatedAt.UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	if req.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", req.Title)
	}
	b.WriteString(req.Text)
	b.WriteString("\n")
	return b.String()
}
