package budget

import (
	"testing"

	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/money"
)

func stageMapWith(chain map[string]any) *content.StageContentMap {
	m := content.NewStageContentMap()
	m.Put("paginas_12_16", content.Record{"pagina_13_cadena_valor": chain})
	return m
}

func TestBuild_ObjetivosList(t *testing.T) {
	stages := stageMapWith(map[string]any{
		"objetivos": []any{
			map[string]any{
				"numero":      "1",
				"descripcion": "Objetivo específico",
				"costo":       "13.000.000,00",
				"productos": []any{
					map[string]any{
						"codigo": "1.3",
						"nombre": "Servicio de acompañamiento",
						"medido": "Número de unidades",
						"costo":  "13.000.000,00",
						"etapa":  "Inversión",
						"actividades": []any{
							map[string]any{"codigo": "1.3.1", "nombre": "Fase 1", "costo": "6.500.000,00"},
							map[string]any{"codigo": "1.3.2", "nombre": "Fase 2", "costo": "6.500.000,00"},
						},
					},
				},
			},
		},
	})

	tree, err := Build(stages, money.FromMajor(13_000_000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Objectives) != 1 {
		t.Fatalf("expected 1 objective, got %d", len(tree.Objectives))
	}
	p := tree.Objectives[0].Products[0]
	if p.Code != "1.3" || len(p.Activities) != 2 {
		t.Errorf("unexpected product %+v", p)
	}
	if tree.Total() != money.FromMajor(13_000_000) {
		t.Errorf("expected closed total, got %s", tree.Total())
	}
}

func TestBuild_TopLevelProductosFallback(t *testing.T) {
	stages := stageMapWith(map[string]any{
		"objetivo_general": "Cumplir con el proyecto",
		"costo_total":      "10.000.000,00",
		"productos": []any{
			map[string]any{
				"codigo": "1.1",
				"nombre": "Producto directo",
				"costo":  "10.000.000,00",
			},
		},
	})

	tree, err := Build(stages, money.FromMajor(10_000_000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Objectives) != 1 {
		t.Fatalf("expected synthetic objective, got %d", len(tree.Objectives))
	}
	obj := tree.Objectives[0]
	if obj.Description != "Cumplir con el proyecto" {
		t.Errorf("expected general objective as description, got %q", obj.Description)
	}
	if len(obj.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(obj.Products))
	}
	// The costed product had no activities, so one was synthesized.
	if len(obj.Products[0].Activities) != 1 {
		t.Errorf("expected synthetic activity, got %d", len(obj.Products[0].Activities))
	}
}

func TestBuild_MissingChainFails(t *testing.T) {
	m := content.NewStageContentMap()
	m.Put("paginas_1_5", content.Record{"pagina_1_datos_basicos": map[string]any{}})

	if _, err := Build(m, money.FromMajor(1), DefaultOptions()); err == nil {
		t.Fatal("expected error when no value chain exists")
	}
}

func TestBuild_MissingCodesSynthesized(t *testing.T) {
	stages := stageMapWith(map[string]any{
		"objetivos": []any{
			map[string]any{
				"descripcion": "Sin códigos",
				"productos": []any{
					map[string]any{
						"nombre": "Producto sin código",
						"costo":  "1.000.000,00",
						"actividades": []any{
							map[string]any{"nombre": "Actividad sin código", "costo": "1.000.000,00"},
						},
					},
				},
			},
		},
	})

	tree, err := Build(stages, money.FromMajor(1_000_000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := tree.Objectives[0]
	if obj.Number != "1" {
		t.Errorf("expected ordinal number fallback, got %q", obj.Number)
	}
	p := obj.Products[0]
	if p.Code != "1.1" {
		t.Errorf("expected synthesized product code 1.1, got %q", p.Code)
	}
	if p.Activities[0].Code != "1.1.1" {
		t.Errorf("expected synthesized activity code 1.1.1, got %q", p.Activities[0].Code)
	}
}

func TestBuild_BeneficiaryCountTolerant(t *testing.T) {
	stages := stageMapWith(map[string]any{
		"objetivos": []any{
			map[string]any{
				"numero": "1", "descripcion": "x",
				"productos": []any{
					map[string]any{
						"codigo": "1.1", "nombre": "p",
						"costo":                  "1.000,00",
						"poblacion_beneficiaria": "1.240",
						"actividades": []any{
							map[string]any{"codigo": "1.1.1", "nombre": "a", "costo": "1.000,00"},
						},
					},
				},
			},
		},
	})

	tree, err := Build(stages, money.FromMajor(1000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tree.Products()[0].Beneficiaries; got != 1240 {
		t.Errorf("expected 1240 beneficiaries, got %d", got)
	}
}
