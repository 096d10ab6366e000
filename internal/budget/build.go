package budget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/money"
)

// Value-chain content keys across generator versions; first hit wins.
var valueChainKeys = []string{"pagina_13_cadena_valor", "pagina_14_cadena_valor"}

// Build assembles the budget tree from the merged stage content, then
// validates and repairs it. declaredTotal comes from the project skeleton and
// is the authority the objective level must close against.
func Build(stages *content.StageContentMap, declaredTotal money.Amount, opts Options) (*Tree, error) {
	merged := stages.Merged()

	var chain content.Record
	for _, key := range valueChainKeys {
		if c := merged.Map(key); len(c) > 0 {
			chain = c
			break
		}
	}
	if chain == nil {
		return nil, &ValidationError{Reason: "no value-chain content in any stage"}
	}

	tree := &Tree{DeclaredTotal: declaredTotal}
	for i, objRec := range objectiveRecords(chain) {
		tree.Objectives = append(tree.Objectives, buildObjective(objRec, i+1))
	}

	if err := tree.Validate(opts); err != nil {
		return nil, err
	}
	return tree, nil
}

// objectiveRecords normalizes the three shapes the generator produces: a
// proper "objetivos" list, top-level "productos" under a general objective,
// or a single "objetivo_especifico".
func objectiveRecords(chain content.Record) []content.Record {
	if objs := chain.List("objetivos"); len(objs) > 0 {
		return objs
	}
	if prods := chain.List("productos"); len(prods) > 0 {
		return []content.Record{{
			"numero":      "1",
			"descripcion": chain.Str("objetivo_general"),
			"costo":       chain.Str("costo_total"),
			"productos":   anySlice(prods),
		}}
	}
	if single := chain.Map("objetivo_especifico"); len(single) > 0 {
		return []content.Record{single}
	}
	return nil
}

func anySlice(recs []content.Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = map[string]any(r)
	}
	return out
}

func buildObjective(rec content.Record, ordinal int) *Objective {
	obj := &Objective{
		Number:      rec.StrOr("numero", strconv.Itoa(ordinal)),
		Description: rec.Str("descripcion"),
		Cost:        rec.Money("costo"),
	}
	for i, prodRec := range rec.List("productos") {
		obj.Products = append(obj.Products, buildProduct(prodRec, obj.Number, i+1))
	}
	return obj
}

func buildProduct(rec content.Record, objNumber string, ordinal int) *Product {
	p := &Product{
		Code:          rec.StrOr("codigo", fmt.Sprintf("%s.%d", objNumber, ordinal)),
		Name:          rec.Str("nombre"),
		Unit:          rec.StrOr("medido", rec.Str("unidad")),
		Quantity:      rec.Str("cantidad"),
		Cost:          rec.Money("costo"),
		Stage:         rec.StrOr("etapa", "Inversión"),
		Location:      rec.Str("localizacion"),
		Beneficiaries: intField(rec, "poblacion_beneficiaria", "personas", "num_personas"),
	}
	for i, actRec := range rec.List("actividades") {
		p.Activities = append(p.Activities, &Activity{
			Code:  actRec.StrOr("codigo", fmt.Sprintf("%s.%d", p.Code, i+1)),
			Name:  actRec.StrOr("nombre", actRec.Str("descripcion")),
			Cost:  actRec.Money("costo"),
			Stage: actRec.StrOr("etapa", "Inversión"),
		})
	}
	return p
}

// intField reads the first key that parses as an integer, tolerating
// formatted counts like "1.240".
func intField(rec content.Record, keys ...string) int {
	for _, key := range keys {
		s := strings.TrimSpace(rec.Str(key))
		if s == "" {
			continue
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", "")
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
