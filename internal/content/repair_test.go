package content

import (
	"errors"
	"testing"
)

func TestRepair_BareJSON(t *testing.T) {
	rec, err := Repair(`{"pagina_3_problematica": {"problema_central": "Vías en mal estado"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Map("pagina_3_problematica").Str("problema_central") != "Vías en mal estado" {
		t.Error("expected nested value to survive repair")
	}
}

func TestRepair_LabeledFence(t *testing.T) {
	raw := "Aquí está el contenido solicitado:\n```json\n{\"clave\": \"valor\"}\n```\nEspero que sea útil."
	rec, err := Repair(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Str("clave") != "valor" {
		t.Errorf("expected valor, got %q", rec.Str("clave"))
	}
}

func TestRepair_GenericFence(t *testing.T) {
	raw := "```\n{\"clave\": \"valor\"}\n```"
	rec, err := Repair(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Str("clave") != "valor" {
		t.Errorf("expected valor, got %q", rec.Str("clave"))
	}
}

func TestRepair_BraceSpanFallback(t *testing.T) {
	raw := `Claro, con gusto. {"focalizacion": [{"politica": "Construcción de Paz", "valor": "1.000,00"}]} ¿Necesitas algo más?`
	rec, err := Repair(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.List("focalizacion")) != 1 {
		t.Error("expected one focalizacion entry from brace span")
	}
}

func TestRepair_PrefersEarlierCandidate(t *testing.T) {
	// The fenced object should win over the wider brace span.
	raw := "```json\n{\"a\": 1}\n```\ntrailing {\"b\": 2} text}"
	rec, err := Repair(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rec["a"]; !ok {
		t.Error("expected fenced object to win")
	}
}

func TestRepair_NoObject(t *testing.T) {
	_, err := Repair("Lo siento, no puedo generar ese contenido.")
	if err == nil {
		t.Fatal("expected error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestRepair_TopLevelArrayRejected(t *testing.T) {
	// Stage responses must be objects; an array has no keys to merge.
	_, err := Repair(`[1, 2, 3]`)
	if err == nil {
		t.Fatal("expected error for top-level array")
	}
}
