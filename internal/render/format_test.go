package render

import (
	"testing"
	"time"

	"github.com/oagudelo/mgadoc/internal/money"
)

func TestFormatCOP(t *testing.T) {
	if got := FormatCOP(money.FromMajor(4_500_000)); got != "$ 4.500.000,00" {
		t.Errorf("got %q", got)
	}
	if got := FormatCOP(0); got != "$ 0,00" {
		t.Errorf("got %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.149); got != "14,9 %" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(1); got != "100,0 %" {
		t.Errorf("got %q", got)
	}
}

func TestArtifactName(t *testing.T) {
	ts := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	if got := ArtifactName("El Banco", ts); got != "MGA_El_Banco_20260315_103000.pdf" {
		t.Errorf("got %q", got)
	}
	if got := ArtifactName("Chibolo (Magdalena)", ts); got != "MGA_Chibolo_Magdalena_20260315_103000.pdf" {
		t.Errorf("got %q", got)
	}
	if got := ArtifactName("Ariguaní", ts); got != "MGA_Ariguani_20260315_103000.pdf" {
		t.Errorf("got %q", got)
	}
	if got := ArtifactName("¿?", ts); got != "MGA_municipio_20260315_103000.pdf" {
		t.Errorf("got %q", got)
	}
}
