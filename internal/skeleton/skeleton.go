// Package skeleton holds the project's authoritative form data and the
// context extracted from uploaded planning documents. Skeleton fields always
// win over generated content for the identification page.
package skeleton

import (
	"fmt"
	"strings"
	"time"

	"github.com/oagudelo/mgadoc/internal/money"
)

// ProjectSkeleton is the form data a run starts from.
type ProjectSkeleton struct {
	Municipality string
	Department   string
	Entity       string
	Responsible  string
	Role         string
	BPIN         string
	Identifier   string
	ProjectName  string
	TotalValue   money.Amount
	DurationDays int
	CreatedAt    time.Time

	// Context is the extracted text of the uploaded POAI / development-plan
	// documents, used verbatim as prompt context.
	Context string
}

// Validate rejects skeletons the pipeline cannot work with. BPIN and
// identifier may be empty: BPIN is assigned after approval and an empty
// identifier is generated downstream.
func (s *ProjectSkeleton) Validate() error {
	if strings.TrimSpace(s.Municipality) == "" {
		return fmt.Errorf("municipality is required")
	}
	if strings.TrimSpace(s.ProjectName) == "" {
		return fmt.Errorf("project name is required")
	}
	if s.TotalValue <= 0 {
		return fmt.Errorf("total value must be positive")
	}
	if s.DurationDays < 0 {
		return fmt.Errorf("duration days must not be negative")
	}
	return nil
}

// ContextExcerpt returns the context capped at limit bytes, cut at a rune
// boundary. Prompts carry the excerpt, never the full dump.
func (s *ProjectSkeleton) ContextExcerpt(limit int) string {
	c := strings.TrimSpace(s.Context)
	if limit <= 0 || len(c) <= limit {
		return c
	}
	cut := limit
	for cut > 0 && !utf8Start(c[cut]) {
		cut--
	}
	return c[:cut] + "\n[... contexto truncado ...]"
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
