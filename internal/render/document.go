// Package render turns a completed run's content into the final document: a
// typed page model first, then a PDF serialization of it.
package render

import (
	"fmt"

	"github.com/oagudelo/mgadoc/internal/auxiliary"
	"github.com/oagudelo/mgadoc/internal/budget"
	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/focalization"
	"github.com/oagudelo/mgadoc/internal/skeleton"
)

// BlockKind discriminates document blocks.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockKeyValues
	BlockTable
)

// Block is one unit of page content.
type Block struct {
	Kind  BlockKind
	Level int // heading level, 1-based
	Text  string
	Pairs []KV
	Table *Table
}

// KV is a labeled value line.
type KV struct {
	Key   string
	Value string
}

// Table is a printable grid. Widths partition maroto's 12-column grid and
// must sum to 12.
type Table struct {
	Header []string
	Widths []int
	Rows   [][]Cell
}

// Cell is one table cell. Continuation marks a vertically merged cell: the
// run's first row carries the text, continuations render blank.
type Cell struct {
	Text         string
	Bold         bool
	Continuation bool
}

// Section is a titled group of blocks, one MGA chapter.
type Section struct {
	Title  string
	Blocks []Block
}

// Document is the full page model handed to the PDF writer.
type Document struct {
	Title    string
	Sections []Section
}

// Input is everything a finished run knows.
type Input struct {
	Skeleton    *skeleton.ProjectSkeleton
	Merged      content.Record
	Tree        *budget.Tree
	Auxiliaries []auxiliary.ProductAuxiliary
	Ledger      *focalization.Ledger

	// Placeholder replaces empty labeled values so gaps are visible on the
	// page instead of silent.
	Placeholder string
}

// sectionDef binds a content key to its chapter title and builder. Order is
// the document's chapter order.
type sectionDef struct {
	key   string
	title string
	build func(in Input, page content.Record) []Block
}

var sectionDefs = []sectionDef{
	{"pagina_1_datos_basicos", "Identificación del proyecto", buildIdentification},
	{"pagina_2_plan_desarrollo", "Contribución a la política pública", buildPlanAlignment},
	{"pagina_3_problematica", "Problemática", buildProblem},
	{"pagina_4_causas_efectos", "Árbol de causas y efectos", buildCausesEffects},
	{"pagina_5_participantes", "Identificación y análisis de participantes", buildParticipants},
	{"pagina_6_poblacion", "Población afectada y objetivo", buildPopulation},
	{"pagina_7_objetivos", "Objetivos", buildObjectives},
	{"pagina_8_9_10_11_estudio_necesidades", "Estudio de necesidades", buildNeedsStudy},
	{"pagina_12_analisis_tecnico", "Análisis de la alternativa", buildTechnicalAnalysis},
	{"pagina_13_cadena_valor", "Cadena de valor", nil}, // built from the validated tree
	{"pagina_14_riesgos", "Análisis de riesgos", buildRisks},
	{"pagina_15_ingresos_beneficios", "Ingresos y beneficios", buildSimpleBenefits},
	{"pagina_16_prestamos", "Préstamos", buildLoans},
	{"pagina_17_riesgos_continuacion", "Análisis de riesgos (continuación)", buildRisksContinuation},
	{"pagina_18_19_ingresos_beneficios", "Valoración de beneficios", buildValuedBenefits},
	{"pagina_20_flujo_economico", "Flujo económico", buildEconomicFlow},
	{"pagina_21_indicadores_decision", "Indicadores de decisión", buildDecisionIndicators},
}

// BuildDocument assembles the typed page model. Chapter order is fixed;
// chapters whose content is missing still appear with an availability note so
// the document's structure never varies with generation luck.
func BuildDocument(in Input) *Document {
	doc := &Document{Title: in.Skeleton.ProjectName}

	for _, def := range sectionDefs {
		sec := Section{Title: def.title}
		if def.key == "pagina_13_cadena_valor" {
			sec.Blocks = buildValueChain(in.Tree)
		} else {
			page := in.Merged.Map(def.key)
			if len(page) == 0 {
				sec.Blocks = []Block{{Kind: BlockParagraph, Text: "Información no disponible."}}
			} else {
				sec.Blocks = def.build(in, page)
			}
		}
		doc.Sections = append(doc.Sections, sec)
	}

	doc.Sections = append(doc.Sections, buildIndicatorSections(in.Auxiliaries)...)
	doc.Sections = append(doc.Sections, Section{
		Title:  "Regionalización de productos",
		Blocks: buildRegionalization(in.Auxiliaries),
	})
	doc.Sections = append(doc.Sections, Section{
		Title:  "Focalización de políticas transversales",
		Blocks: buildFocalization(in.Ledger),
	})

	fillPlaceholders(doc, in.Placeholder)
	return doc
}

// fillPlaceholders substitutes empty labeled values. Table cells are left
// alone: an empty cell there is either data or a merge continuation.
func fillPlaceholders(doc *Document, placeholder string) {
	if placeholder == "" {
		placeholder = "No disponible"
	}
	for si := range doc.Sections {
		for bi := range doc.Sections[si].Blocks {
			b := &doc.Sections[si].Blocks[bi]
			if b.Kind != BlockKeyValues {
				continue
			}
			for pi := range b.Pairs {
				if b.Pairs[pi].Value == "" {
					b.Pairs[pi].Value = placeholder
				}
			}
		}
	}
}

func buildIdentification(in Input, page content.Record) []Block {
	sk := in.Skeleton
	pairs := []KV{
		{"Nombre del proyecto", sk.ProjectName},
		{"Tipología", page.Str("tipologia")},
		{"Código BPIN", page.Str("codigo_bpin")},
		{"Sector", page.Str("sector")},
		{"Es proyecto tipo", page.Str("es_proyecto_tipo")},
		{"Municipio", sk.Municipality},
		{"Departamento", sk.Department},
		{"Entidad", sk.Entity},
		{"Valor total", FormatCOP(sk.TotalValue)},
		{"Duración", fmt.Sprintf("%d días", sk.DurationDays)},
		{"Fecha de creación", page.Str("fecha_creacion")},
		{"Identificador", page.Str("identificador")},
		{"Formulador", page.Str("formulador_oficial")},
	}
	return []Block{{Kind: BlockKeyValues, Pairs: pairs}}
}

func buildPlanAlignment(_ Input, page content.Record) []Block {
	var blocks []Block
	plans := []struct {
		key   string
		title string
	}{
		{"plan_nacional", "Plan Nacional de Desarrollo"},
		{"plan_departamental", "Plan Departamental de Desarrollo"},
		{"plan_municipal", "Plan Municipal de Desarrollo"},
	}
	for _, pl := range plans {
		p := page.Map(pl.key)
		if len(p) == 0 {
			continue
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: pl.title})
		pairs := []KV{
			{"Nombre", p.Str("nombre")},
			{"Programa", p.Str("programa")},
		}
		if v := p.Str("estrategia"); v != "" {
			pairs = append(pairs, KV{"Estrategia", v})
		}
		if v := p.Str("transformacion"); v != "" {
			pairs = append(pairs, KV{"Transformación", v})
		}
		if v := p.Str("pilar"); v != "" {
			pairs = append(pairs, KV{"Pilar", v})
		}
		blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: pairs})
	}
	if v := page.Str("instrumentos_grupos_etnicos"); v != "" {
		blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{{"Instrumentos de grupos étnicos", v}}})
	}
	return blocks
}

func buildProblem(_ Input, page content.Record) []Block {
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Problema central"})
	blocks = append(blocks, MarkdownBlocks(page.Str("problema_central"))...)
	if v := page.Str("descripcion_situacion"); v != "" {
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Descripción de la situación"})
		blocks = append(blocks, MarkdownBlocks(v)...)
	}
	if v := page.Str("magnitud_problema"); v != "" {
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Magnitud del problema"})
		blocks = append(blocks, MarkdownBlocks(v)...)
	}
	return blocks
}

func buildCausesEffects(_ Input, page content.Record) []Block {
	var blocks []Block
	groups := []struct {
		key   string
		field string
		title string
	}{
		{"causas_directas", "causa", "Causas directas"},
		{"causas_indirectas", "causa", "Causas indirectas"},
		{"efectos_directos", "efecto", "Efectos directos"},
		{"efectos_indirectos", "efecto", "Efectos indirectos"},
	}
	for _, g := range groups {
		items := page.List(g.key)
		if len(items) == 0 {
			continue
		}
		tbl := &Table{
			Header: []string{"No.", g.title},
			Widths: []int{2, 10},
		}
		for _, item := range items {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: item.Str("numero")},
				{Text: item.Str(g.field)},
			})
		}
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	return blocks
}

func buildParticipants(_ Input, page content.Record) []Block {
	var blocks []Block
	parts := page.List("participantes")
	if len(parts) > 0 {
		tbl := &Table{
			Header: []string{"Actor", "Entidad", "Posición", "Intereses", "Contribución"},
			Widths: []int{2, 3, 2, 2, 3},
		}
		for _, p := range parts {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: p.Str("actor")},
				{Text: p.Str("entidad")},
				{Text: p.Str("posicion")},
				{Text: p.Str("intereses")},
				{Text: p.Str("contribucion")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	if v := page.Str("analisis_participantes"); v != "" {
		blocks = append(blocks, MarkdownBlocks(v)...)
	}
	return blocks
}

func buildPopulation(_ Input, page content.Record) []Block {
	var blocks []Block
	for _, g := range []struct {
		key   string
		title string
	}{
		{"poblacion_afectada", "Población afectada"},
		{"poblacion_objetivo", "Población objetivo"},
	} {
		p := page.Map(g.key)
		if len(p) == 0 {
			continue
		}
		loc := p.Map("localizacion")
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: g.title})
		blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
			{"Tipo", p.Str("tipo")},
			{"Número", p.Str("numero")},
			{"Fuente", p.Str("fuente")},
			{"Localización", fmt.Sprintf("%s, %s", loc.Str("municipio"), loc.Str("departamento"))},
		}})
	}
	return blocks
}

func buildObjectives(_ Input, page content.Record) []Block {
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Objetivo general"})
	blocks = append(blocks, MarkdownBlocks(page.Str("objetivo_general"))...)

	if rels := page.List("relacion_causas_objetivos"); len(rels) > 0 {
		tbl := &Table{
			Header: []string{"Causa relacionada", "Objetivo específico"},
			Widths: []int{6, 6},
		}
		for _, rel := range rels {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: rel.Str("causa")},
				{Text: rel.Str("objetivo")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Relación causas y objetivos"})
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}

	if inds := page.List("indicadores"); len(inds) > 0 {
		tbl := &Table{
			Header: []string{"Indicador", "Medido a través de", "Meta", "Fuente de verificación"},
			Widths: []int{4, 3, 2, 3},
		}
		for _, ind := range inds {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: ind.Str("nombre")},
				{Text: ind.Str("medido")},
				{Text: ind.Str("meta")},
				{Text: ind.Str("fuente_verificacion")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Indicadores de objetivo"})
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	return blocks
}

func buildNeedsStudy(_ Input, page content.Record) []Block {
	sp := page.Map("servicio_principal")
	if len(sp) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "Información no disponible."}}
	}
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
		{"Bien o servicio", sp.Str("bien_servicio")},
		{"Medido a través de", sp.Str("medido")},
	}})
	for _, f := range []struct {
		key   string
		title string
	}{
		{"descripcion", "Descripción"},
		{"descripcion_demanda", "Demanda"},
		{"descripcion_oferta", "Oferta"},
	} {
		if v := sp.Str(f.key); v != "" {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: f.title})
			blocks = append(blocks, MarkdownBlocks(v)...)
		}
	}
	if rows := sp.List("tabla_oferta_demanda"); len(rows) > 0 {
		tbl := &Table{
			Header: []string{"Año", "Oferta", "Demanda", "Déficit"},
			Widths: []int{3, 3, 3, 3},
		}
		for _, r := range rows {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: r.Str("ano")},
				{Text: r.Str("oferta")},
				{Text: r.Str("demanda")},
				{Text: r.Str("deficit")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Oferta y demanda"})
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	return blocks
}

func buildTechnicalAnalysis(_ Input, page content.Record) []Block {
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
		{"Alternativa seleccionada", page.Str("alternativa_seleccionada")},
	}})
	for _, f := range []struct {
		key   string
		title string
	}{
		{"analisis_tecnico", "Análisis técnico"},
		{"analisis_ambiental", "Análisis ambiental"},
		{"analisis_legal", "Análisis legal"},
		{"analisis_riesgos", "Análisis de riesgos"},
	} {
		if v := page.Str(f.key); v != "" {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: f.title})
			blocks = append(blocks, MarkdownBlocks(v)...)
		}
	}
	return blocks
}

// buildValueChain walks the validated tree objective by objective. Costs come
// from the tree, never from the raw content: after validation both agree, and
// when they disagreed the tree is the one that adds up.
func buildValueChain(tree *budget.Tree) []Block {
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
		{"Costo total", FormatCOP(tree.Total())},
	}})
	for _, obj := range tree.Objectives {
		label := FormatCOP(obj.Cost)
		if total := tree.Total(); total > 0 {
			label += fmt.Sprintf(", %s del total", FormatPercent(float64(obj.Cost)/float64(total)))
		}
		blocks = append(blocks, Block{
			Kind:  BlockHeading,
			Level: 2,
			Text:  fmt.Sprintf("Objetivo %s: %s (%s)", obj.Number, obj.Description, label),
		})
		for _, p := range obj.Products {
			tbl := &Table{
				Header: []string{"Actividad", "Nombre", "Etapa", "Costo"},
				Widths: []int{2, 6, 2, 2},
			}
			for _, a := range p.Activities {
				tbl.Rows = append(tbl.Rows, []Cell{
					{Text: a.Code},
					{Text: a.Name},
					{Text: a.Stage},
					{Text: FormatCOP(a.Cost)},
				})
			}
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 3, Text: fmt.Sprintf("Producto %s: %s", p.Code, p.Name)})
			blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
				{"Medido a través de", p.Unit},
				{"Cantidad", p.Quantity},
				{"Costo", FormatCOP(p.Cost)},
				{"Localización", p.Location},
				{"Población beneficiaria", fmt.Sprintf("%d", p.Beneficiaries)},
			}})
			blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
		}
	}
	if len(tree.Adjustments) > 0 {
		tbl := &Table{
			Header: []string{"Nivel", "Código", "Valor original", "Valor ajustado"},
			Widths: []int{3, 3, 3, 3},
		}
		for _, adj := range tree.Adjustments {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: adj.Level},
				{Text: adj.Code},
				{Text: FormatCOP(adj.Original)},
				{Text: FormatCOP(adj.Adjusted)},
			})
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Ajustes de cierre presupuestal"})
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	return blocks
}

func riskTable(risks []content.Record) *Table {
	tbl := &Table{
		Header: []string{"Nivel", "Tipo", "Descripción", "Probabilidad", "Impacto", "Mitigación"},
		Widths: []int{2, 1, 3, 1, 1, 4},
	}
	for _, r := range risks {
		desc := r.StrOr("descripcion", r.Str("descripcion_riesgo"))
		tbl.Rows = append(tbl.Rows, []Cell{
			{Text: r.Str("nivel")},
			{Text: r.Str("tipo")},
			{Text: desc},
			{Text: r.Str("probabilidad")},
			{Text: r.Str("impacto")},
			{Text: r.Str("mitigacion")},
		})
	}
	return tbl
}

func buildRisks(_ Input, page content.Record) []Block {
	risks := page.List("riesgos")
	if len(risks) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "Información no disponible."}}
	}
	return []Block{{Kind: BlockTable, Table: riskTable(risks)}}
}

func buildRisksContinuation(_ Input, page content.Record) []Block {
	risks := page.List("riesgos_adicionales")
	if len(risks) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "Información no disponible."}}
	}
	return []Block{{Kind: BlockTable, Table: riskTable(risks)}}
}

func buildSimpleBenefits(_ Input, page content.Record) []Block {
	var blocks []Block
	if benefits := page.List("beneficios"); len(benefits) > 0 {
		tbl := &Table{
			Header: []string{"Beneficio", "Tipo", "Valor", "Descripción"},
			Widths: []int{3, 2, 2, 5},
		}
		for _, b := range benefits {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: b.Str("nombre")},
				{Text: b.Str("tipo")},
				{Text: b.Str("valor")},
				{Text: b.Str("descripcion")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	if len(page.List("ingresos")) == 0 {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: "El proyecto no genera ingresos directos."})
	}
	return blocks
}

func buildLoans(_ Input, page content.Record) []Block {
	if len(page.List("prestamos")) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "El proyecto no contempla préstamos."}}
	}
	tbl := &Table{
		Header: []string{"Préstamo", "Valor"},
		Widths: []int{8, 4},
	}
	for _, p := range page.List("prestamos") {
		tbl.Rows = append(tbl.Rows, []Cell{
			{Text: p.Str("nombre")},
			{Text: p.Str("valor")},
		})
	}
	return []Block{{Kind: BlockTable, Table: tbl}}
}

func buildValuedBenefits(_ Input, page content.Record) []Block {
	var blocks []Block
	for _, b := range page.List("beneficios") {
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: b.Str("titulo")})
		blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
			{"Tipo", b.Str("tipo")},
			{"Bien producido", b.Str("bien_producido")},
			{"Razón precio cuenta", b.Str("razon_precio_cuenta")},
			{"Cantidad", b.Str("descripcion_cantidad")},
			{"Valor unitario", b.Str("descripcion_valor_unitario")},
		}})
		if periods := b.List("tabla_periodos"); len(periods) > 0 {
			tbl := &Table{
				Header: []string{"Período", "Cantidad", "Valor unitario", "Valor total"},
				Widths: []int{3, 3, 3, 3},
			}
			for _, p := range periods {
				tbl.Rows = append(tbl.Rows, []Cell{
					{Text: p.Str("periodo")},
					{Text: p.Str("cantidad")},
					{Text: p.Str("valor_unitario")},
					{Text: p.Str("valor_total")},
				})
			}
			blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
		}
	}
	return blocks
}

func buildEconomicFlow(_ Input, page content.Record) []Block {
	flow := page.List("flujo")
	if len(flow) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "Información no disponible."}}
	}
	tbl := &Table{
		Header: []string{"P", "Beneficios", "Inversión", "Operación", "Flujo neto"},
		Widths: []int{1, 3, 3, 2, 3},
	}
	for _, r := range flow {
		tbl.Rows = append(tbl.Rows, []Cell{
			{Text: r.Str("p")},
			{Text: r.Str("beneficios")},
			{Text: r.Str("costos_inversion")},
			{Text: r.Str("costos_operacion")},
			{Text: r.Str("flujo_neto")},
		})
	}
	return []Block{{Kind: BlockTable, Table: tbl}}
}

func buildDecisionIndicators(_ Input, page content.Record) []Block {
	var blocks []Block
	if v := page.Str("alternativa_descripcion"); v != "" {
		blocks = append(blocks, MarkdownBlocks(v)...)
	}
	if ev := page.Map("evaluacion_economica"); len(ev) > 0 {
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Evaluación económica"})
		blocks = append(blocks, Block{Kind: BlockKeyValues, Pairs: []KV{
			{"VPN", ev.Str("vpn")},
			{"TIR", ev.Str("tir")},
			{"Relación costo-beneficio", ev.Str("rcb")},
			{"Costo por beneficiario", ev.Str("costo_beneficiario")},
			{"Valor presente de costos", ev.Str("valor_presente_costos")},
			{"CAE", ev.Str("cae")},
		}})
	}
	if prods := page.Map("costo_capacidad").List("productos"); len(prods) > 0 {
		tbl := &Table{
			Header: []string{"Producto", "Costo por capacidad"},
			Widths: []int{9, 3},
		}
		for _, p := range prods {
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: p.Str("nombre")},
				{Text: p.Str("costo")},
			})
		}
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Costo por capacidad"})
		blocks = append(blocks, Block{Kind: BlockTable, Table: tbl})
	}
	if d := page.Map("decision").Str("alternativa"); d != "" {
		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: "Decisión"})
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: d})
	}
	return blocks
}

// buildIndicatorSections emits one chapter per product, in budget traversal
// order, so indicator pages always line up with the value chain. Each chapter
// prints the product box, the indicator detail box and the period programming
// table.
func buildIndicatorSections(aux []auxiliary.ProductAuxiliary) []Section {
	var secs []Section
	for _, a := range aux {
		ind := a.Indicator
		name := ind.Name
		if ind.Code != "" {
			name = ind.Code + " " + ind.Name
		}
		sec := Section{
			Title: fmt.Sprintf("Indicadores de producto %s", a.Product.Code),
			Blocks: []Block{
				{Kind: BlockHeading, Level: 2, Text: "Producto"},
				{Kind: BlockParagraph, Text: fmt.Sprintf("%s %s", a.Product.Code, a.Product.Name)},
				{Kind: BlockHeading, Level: 2, Text: "Indicador"},
				{Kind: BlockKeyValues, Pairs: []KV{
					{"Indicador", name},
					{"Medido a través de", ind.Unit},
					{"Meta total", ind.Goal},
					{"Fórmula", ind.Formula},
					{"Es acumulativo", ind.Cumulative},
					{"Es principal", ind.Principal},
					{"Tipo de fuente", ind.SourceType},
					{"Fuente de verificación", ind.Verification},
				}},
				{Kind: BlockHeading, Level: 2, Text: "Programación de indicadores"},
				{Kind: BlockTable, Table: scheduleTable(ind)},
			},
		}
		secs = append(secs, sec)
	}
	return secs
}

// scheduleTable lays the programming rows out two periods wide. An indicator
// without a schedule gets a single period 0 row carrying the total goal.
func scheduleTable(ind auxiliary.Indicator) *Table {
	sched := ind.Schedule
	if len(sched) == 0 {
		sched = []auxiliary.PeriodTarget{{Period: "0", Target: ind.Goal}}
	}
	tbl := &Table{
		Header: []string{"Periodo", "Meta por periodo", "Periodo", "Meta por periodo"},
		Widths: []int{3, 3, 3, 3},
	}
	for i := 0; i < len(sched); i += 2 {
		row := []Cell{
			{Text: sched[i].Period},
			{Text: sched[i].Target},
			{}, {},
		}
		if i+1 < len(sched) {
			row[2] = Cell{Text: sched[i+1].Period}
			row[3] = Cell{Text: sched[i+1].Target}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// buildRegionalization emits one block per product: the location tuple row
// and the six-column period cost table underneath it.
func buildRegionalization(aux []auxiliary.ProductAuxiliary) []Block {
	var blocks []Block
	for _, a := range aux {
		reg := a.Regional
		locTbl := &Table{
			Header: []string{"Región", "Departamento", "Municipio", "Tipo de agrupación", "Agrupación"},
			Widths: []int{2, 3, 3, 2, 2},
			Rows: [][]Cell{{
				{Text: reg.Location.Region},
				{Text: reg.Location.Department},
				{Text: reg.Location.Municipality},
				{Text: reg.Location.GroupingType},
				{Text: reg.Location.GroupingName},
			}},
		}

		costTbl := &Table{
			Header: []string{"Periodo", "Costo total", "Costo regionalizado", "Meta total", "Meta regionalizada", "Beneficiarios"},
			Widths: []int{1, 3, 3, 2, 2, 1},
		}
		periods := reg.Periods
		if len(periods) == 0 {
			periods = []auxiliary.PeriodCost{{Period: "0"}}
		}
		for _, pc := range periods {
			costTbl.Rows = append(costTbl.Rows, []Cell{
				{Text: pc.Period},
				{Text: FormatCOP(pc.TotalCost)},
				{Text: FormatCOP(pc.AllocatedCost)},
				{Text: pc.TotalTarget},
				{Text: pc.AllocatedTarget},
				{Text: pc.Beneficiaries},
			})
		}

		blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: fmt.Sprintf("Producto %s: %s", a.Product.Code, a.Product.Name)})
		blocks = append(blocks, Block{Kind: BlockTable, Table: locTbl})
		blocks = append(blocks, Block{Kind: BlockTable, Table: costTbl})
	}
	if len(blocks) == 0 {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: "Información no disponible."})
	}
	return blocks
}

// buildFocalization prints the ledger with vertical merges on the policy and
// category columns: a merged run shows its value on the first row and blank
// continuations below. The policy merge covers the policy's own total row,
// whose "TOTAL POLITICA TRANSVERSAL" label sits in the category column; the
// category merge likewise covers the "Total Categoría" row, whose label sits
// in the subcategory column.
func buildFocalization(ledger *focalization.Ledger) []Block {
	if ledger == nil || len(ledger.Rows) == 0 {
		return []Block{{Kind: BlockParagraph, Text: "El proyecto no focaliza políticas transversales."}}
	}

	tbl := &Table{
		Header: []string{"Política", "Categoría", "Subcategoría", "Valor"},
		Widths: []int{3, 3, 3, 3},
	}
	for _, r := range ledger.Rows {
		switch r.Kind {
		case focalization.KindCategoryTotal:
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: r.Policy},
				{Text: r.Category},
				{Text: "Total Categoría", Bold: true},
				{Text: FormatCOP(r.Value), Bold: true},
			})
		case focalization.KindPolicyTotal:
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: r.Policy},
				{Text: "TOTAL POLITICA TRANSVERSAL", Bold: true},
				{},
				{Text: FormatCOP(r.Value), Bold: true},
			})
		default:
			tbl.Rows = append(tbl.Rows, []Cell{
				{Text: r.Policy},
				{Text: r.Category},
				{Text: r.Subcategory},
				{Text: FormatCOP(r.Value)},
			})
		}
	}

	applySpans(tbl, 0, ledger.PolicySpans())
	applySpans(tbl, 1, ledger.CategorySpans())

	return []Block{
		{Kind: BlockTable, Table: tbl},
		{Kind: BlockKeyValues, Pairs: []KV{{"Total focalizado", FormatCOP(ledger.Total)}}},
	}
}

// applySpans blanks the continuation rows of each multi-row span.
func applySpans(tbl *Table, col int, spans []focalization.Span) {
	for _, sp := range spans {
		if sp.Len < 2 {
			continue
		}
		for i := sp.Start + 1; i < sp.Start+sp.Len; i++ {
			tbl.Rows[i][col].Text = ""
			tbl.Rows[i][col].Continuation = true
		}
	}
}
