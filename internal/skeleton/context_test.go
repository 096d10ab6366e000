package skeleton

import (
	"strings"
	"testing"
)

func TestIsSupportedContext(t *testing.T) {
	for _, name := range []string{"plan.PDF", "poai.docx", "notas.txt", "tabla.csv", "informe.html"} {
		if !IsSupportedContext(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"foto.png", "plan.doc", "archivo", "datos.xlsx"} {
		if IsSupportedContext(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}

func TestExtractContext_PlainText(t *testing.T) {
	got, err := ExtractContext(strings.NewReader("  plan de desarrollo 2024\n"), "plan.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plan de desarrollo 2024" {
		t.Errorf("got %q", got)
	}
}

func TestExtractContext_HTML(t *testing.T) {
	in := `<html><head><style>p{color:red}</style></head><body>
<nav><p>menú</p></nav>
<h1>Plan de Desarrollo</h1>
<p>Sector   agropecuario.</p>
<script>alert(1)</script>
</body></html>`
	got, err := ExtractContext(strings.NewReader(in), "plan.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Plan de Desarrollo\n\nSector agropecuario." {
		t.Errorf("got %q", got)
	}
}

func TestExtractContext_UnsupportedExtension(t *testing.T) {
	if _, err := ExtractContext(strings.NewReader("x"), "foto.png"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
