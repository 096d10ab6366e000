// Package auxiliary pairs each budget product with its indicator and
// regional-allocation records. Pairing is total: every product in the tree
// gets exactly one of each, with placeholders synthesized where the generated
// content fell short.
package auxiliary

import (
	"fmt"
	"strings"

	"github.com/oagudelo/mgadoc/internal/budget"
	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/money"
)

// Indicator is a product's measurement record: the identifying fields the
// indicator page prints plus the per-period programming table.
type Indicator struct {
	ProductCode  string
	ProductName  string
	Code         string
	Name         string
	Unit         string // "medido a través de"
	Goal         string // meta total
	Formula      string
	Cumulative   string // "Sí"/"No", kept verbatim from the generator
	Principal    string
	SourceType   string
	Verification string
	Schedule     []PeriodTarget
}

// PeriodTarget is one programming row: the target committed for one period.
type PeriodTarget struct {
	Period string
	Target string
}

// RegionalAllocation is a product's geographic cost split: where the product
// lands and how its cost and target spread across periods.
type RegionalAllocation struct {
	ProductCode string
	ProductName string
	Location    Location
	Periods     []PeriodCost
}

// Location is the five-part MGA location tuple.
type Location struct {
	Region       string
	Department   string
	Municipality string
	GroupingType string
	GroupingName string
}

// PeriodCost is one row of the regionalization cost table. Targets and
// beneficiary counts stay as generated text; only costs are parsed as money.
type PeriodCost struct {
	Period          string
	TotalCost       money.Amount
	AllocatedCost   money.Amount
	TotalTarget     string
	AllocatedTarget string
	Beneficiaries   string
}

// ProductAuxiliary is the pairing result for one product.
type ProductAuxiliary struct {
	Product            *budget.Product
	Indicator          Indicator
	Regional           RegionalAllocation
	IndicatorSynthetic bool
	RegionalSynthetic  bool
}

// PairingNote is an audit entry: a mismatch that was repaired, never a
// failure.
type PairingNote struct {
	ProductCode string
	Kind        string // "indicador" or "regionalizacion"
	Detail      string
}

func (n PairingNote) String() string {
	return fmt.Sprintf("%s %s: %s", n.Kind, n.ProductCode, n.Detail)
}

// IndicatorsFromContent reads "indicadores_producto" from the merged content.
// The generator nests product and indicator objects; older outputs flatten
// everything, so each field falls back to the flat key.
func IndicatorsFromContent(merged content.Record) []Indicator {
	var out []Indicator
	for _, rec := range merged.List("indicadores_producto") {
		prod := rec.Map("producto")
		ind := rec.Map("indicador")
		it := Indicator{
			ProductCode:  prod.StrOr("codigo", rec.Str("codigo_producto")),
			ProductName:  prod.StrOr("nombre", rec.Str("producto")),
			Code:         ind.Str("codigo"),
			Name:         ind.StrOr("nombre", rec.Str("indicador")),
			Unit:         ind.StrOr("medido", rec.Str("unidad")),
			Goal:         ind.StrOr("meta_total", ind.Str("meta")),
			Formula:      ind.Str("formula"),
			Cumulative:   ind.Str("es_acumulativo"),
			Principal:    ind.Str("es_principal"),
			SourceType:   ind.Str("tipo_fuente"),
			Verification: ind.StrOr("fuente_verificacion", rec.Str("fuente_verificacion")),
		}
		for _, row := range rec.List("programacion_indicadores") {
			it.Schedule = append(it.Schedule, PeriodTarget{
				Period: row.Str("periodo"),
				Target: row.Str("meta"),
			})
		}
		out = append(out, it)
	}
	return out
}

// RegionalFromContent reads "regionalizacion_productos" from the merged
// content. "producto" is usually the plain product name; the location tuple
// comes from the "ubicacion" object and the period rows from "tabla_costos".
func RegionalFromContent(merged content.Record) []RegionalAllocation {
	var out []RegionalAllocation
	for _, rec := range merged.List("regionalizacion_productos") {
		ra := RegionalAllocation{ProductCode: rec.Str("codigo_producto")}
		if prod := rec.Map("producto"); len(prod) > 0 {
			ra.ProductName = prod.Str("nombre")
			if ra.ProductCode == "" {
				ra.ProductCode = prod.Str("codigo")
			}
		} else {
			ra.ProductName = rec.Str("producto")
		}

		ub := rec.Map("ubicacion")
		ra.Location = Location{
			Region:       ub.Str("region"),
			Department:   ub.Str("departamento"),
			Municipality: ub.Str("municipio"),
			GroupingType: ub.Str("tipo_agrupacion"),
			GroupingName: ub.Str("agrupacion"),
		}
		for _, row := range rec.List("tabla_costos") {
			ra.Periods = append(ra.Periods, PeriodCost{
				Period:          row.Str("periodo"),
				TotalCost:       row.Money("costo_total"),
				AllocatedCost:   row.Money("costo_regionalizado"),
				TotalTarget:     row.Str("meta_total"),
				AllocatedTarget: row.Str("meta_regionalizada"),
				Beneficiaries:   row.Str("beneficiarios"),
			})
		}
		if len(ra.Periods) == 0 {
			// Older flat shape: a single localizacion/valor pair.
			if ra.Location.Municipality == "" {
				ra.Location.Municipality = rec.Str("localizacion")
			}
			if v := rec.Money("valor"); v != 0 || ra.Location.Municipality != "" {
				ra.Periods = append(ra.Periods, PeriodCost{
					Period:        "0",
					TotalCost:     v,
					AllocatedCost: v,
				})
			}
		}
		out = append(out, ra)
	}
	return out
}

// Pair walks the budget tree in traversal order and assigns each product an
// indicator and a regional allocation. Matching is two-pass per product:
// first by product code, then by normalized product name; whatever remains
// unmatched is handed out positionally, and placeholders fill the tail.
// Leftover auxiliaries that matched no product are dropped with a note.
func Pair(tree *budget.Tree, inds []Indicator, regs []RegionalAllocation, placeholder string) ([]ProductAuxiliary, []PairingNote) {
	products := tree.Products()
	out := make([]ProductAuxiliary, len(products))
	var notes []PairingNote

	usedInd := make([]bool, len(inds))
	usedReg := make([]bool, len(regs))
	haveInd := make([]bool, len(products))
	haveReg := make([]bool, len(products))

	for i, p := range products {
		out[i].Product = p

		if j := matchIndicator(p, inds, usedInd); j >= 0 {
			usedInd[j] = true
			out[i].Indicator = inds[j]
			haveInd[i] = true
		}
	}
	for i, p := range products {
		if !haveInd[i] {
			if j := firstUnused(usedInd); j >= 0 {
				usedInd[j] = true
				out[i].Indicator = inds[j]
				notes = append(notes, PairingNote{
					ProductCode: p.Code,
					Kind:        "indicador",
					Detail:      fmt.Sprintf("sin coincidencia exacta, asignado por posición: %q", inds[j].Name),
				})
			} else {
				out[i].Indicator = syntheticIndicator(p, placeholder)
				out[i].IndicatorSynthetic = true
				notes = append(notes, PairingNote{
					ProductCode: p.Code,
					Kind:        "indicador",
					Detail:      "sin indicador generado, se sintetizó uno",
				})
			}
		}
		out[i].Indicator.ProductCode = p.Code
		out[i].Indicator.ProductName = p.Name
	}
	for j, ind := range inds {
		if !usedInd[j] {
			notes = append(notes, PairingNote{
				ProductCode: ind.ProductCode,
				Kind:        "indicador",
				Detail:      fmt.Sprintf("indicador sobrante descartado: %q", ind.Name),
			})
		}
	}

	for i, p := range products {
		if j := matchRegional(p, regs, usedReg); j >= 0 {
			usedReg[j] = true
			out[i].Regional = regs[j]
			haveReg[i] = true
		}
	}
	for i, p := range products {
		if !haveReg[i] {
			if j := firstUnused(usedReg); j >= 0 {
				usedReg[j] = true
				out[i].Regional = regs[j]
				notes = append(notes, PairingNote{
					ProductCode: p.Code,
					Kind:        "regionalizacion",
					Detail:      "sin coincidencia exacta, asignada por posición",
				})
			} else {
				out[i].Regional = syntheticRegional(p)
				out[i].RegionalSynthetic = true
				notes = append(notes, PairingNote{
					ProductCode: p.Code,
					Kind:        "regionalizacion",
					Detail:      "sin regionalización generada, se sintetizó al costo del producto",
				})
			}
		}
		out[i].Regional.ProductCode = p.Code
		out[i].Regional.ProductName = p.Name
	}
	for j, reg := range regs {
		if !usedReg[j] {
			notes = append(notes, PairingNote{
				ProductCode: reg.ProductCode,
				Kind:        "regionalizacion",
				Detail:      "regionalización sobrante descartada",
			})
		}
	}

	return out, notes
}

func matchIndicator(p *budget.Product, inds []Indicator, used []bool) int {
	for j, ind := range inds {
		if !used[j] && ind.ProductCode != "" && ind.ProductCode == p.Code {
			return j
		}
	}
	for j, ind := range inds {
		if !used[j] && sameName(ind.ProductName, p.Name) {
			return j
		}
	}
	return -1
}

func matchRegional(p *budget.Product, regs []RegionalAllocation, used []bool) int {
	for j, reg := range regs {
		if !used[j] && reg.ProductCode != "" && reg.ProductCode == p.Code {
			return j
		}
	}
	for j, reg := range regs {
		if !used[j] && sameName(reg.ProductName, p.Name) {
			return j
		}
	}
	return -1
}

func firstUnused(used []bool) int {
	for j, u := range used {
		if !u {
			return j
		}
	}
	return -1
}

func sameName(a, b string) bool {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return a != "" && norm(a) == norm(b)
}

func syntheticIndicator(p *budget.Product, placeholder string) Indicator {
	unit := p.Unit
	if unit == "" {
		unit = "Número"
	}
	goal := p.Quantity
	if goal == "" {
		goal = "1"
	}
	return Indicator{
		Name:         p.Name + " entregado",
		Unit:         unit,
		Goal:         goal,
		Cumulative:   "No",
		Principal:    "Sí",
		SourceType:   "Informe",
		Formula:      placeholder,
		Verification: placeholder,
		Schedule:     []PeriodTarget{{Period: "0", Target: goal}},
	}
}

func syntheticRegional(p *budget.Product) RegionalAllocation {
	name := p.Location
	if name == "" {
		name = "Municipio"
	}
	return RegionalAllocation{
		Location: Location{
			Municipality: name,
			GroupingType: "Municipio",
			GroupingName: name,
		},
		Periods: []PeriodCost{{
			Period:          "0",
			TotalCost:       p.Cost,
			AllocatedCost:   p.Cost,
			TotalTarget:     p.Quantity,
			AllocatedTarget: p.Quantity,
		}},
	}
}
