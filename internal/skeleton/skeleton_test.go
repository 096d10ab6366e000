package skeleton

import (
	"strings"
	"testing"

	"github.com/oagudelo/mgadoc/internal/money"
)

func validSkeleton() ProjectSkeleton {
	return ProjectSkeleton{
		Municipality: "El Banco",
		Department:   "Magdalena",
		ProjectName:  "Fortalecimiento agropecuario",
		TotalValue:   money.FromMajor(100_000_000),
		DurationDays: 360,
	}
}

func TestValidate_OK(t *testing.T) {
	sk := validSkeleton()
	if err := sk.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ProjectSkeleton)
	}{
		{"missing municipality", func(s *ProjectSkeleton) { s.Municipality = "  " }},
		{"missing project name", func(s *ProjectSkeleton) { s.ProjectName = "" }},
		{"zero total", func(s *ProjectSkeleton) { s.TotalValue = 0 }},
		{"negative duration", func(s *ProjectSkeleton) { s.DurationDays = -1 }},
	}
	for _, tc := range cases {
		sk := validSkeleton()
		tc.mutate(&sk)
		if err := sk.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestValidate_EmptyBPINAllowed(t *testing.T) {
	sk := validSkeleton()
	sk.BPIN = ""
	sk.Identifier = ""
	if err := sk.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContextExcerpt_UnderLimit(t *testing.T) {
	sk := validSkeleton()
	sk.Context = "  plan de desarrollo  "
	if got := sk.ContextExcerpt(100); got != "plan de desarrollo" {
		t.Errorf("got %q", got)
	}
}

func TestContextExcerpt_Truncates(t *testing.T) {
	sk := validSkeleton()
	sk.Context = strings.Repeat("a", 50)
	got := sk.ContextExcerpt(10)
	if !strings.HasPrefix(got, "aaaaaaaaaa\n") {
		t.Errorf("expected 10-byte prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "[... contexto truncado ...]") {
		t.Errorf("expected truncation marker, got %q", got)
	}
}

func TestContextExcerpt_RuneBoundary(t *testing.T) {
	sk := validSkeleton()
	sk.Context = strings.Repeat("ñ", 20) // 2 bytes each
	got := sk.ContextExcerpt(5)
	cut, _, _ := strings.Cut(got, "\n")
	if cut != "ññ" {
		t.Errorf("expected cut at rune boundary, got %q", cut)
	}
}
