package llm

import "strings"

// SystemPrompt frames every stage call. The document follows the DNP's MGA
// format for public investment projects.
const SystemPrompt = `Eres un formulador experto de proyectos de inversión pública en Colombia.

Tu tarea es generar contenido estructurado para un documento MGA (Metodología General Ajustada) para proyectos de inversión pública.

FUENTES DE DATOS PRINCIPALES:
1. POAI (Plan Operativo Anual de Inversiones)
2. Plan de Desarrollo
3. Datos básicos proporcionados por el usuario

REGLAS CRÍTICAS:
1. PRIORIDAD: CONTEXTO REAL. Usa los datos del POAI y Plan de Desarrollo siempre que existan. Extrae los códigos de programa exactos del POAI.
2. COMPLETITUD OBLIGATORIA: nunca dejes campos vacíos. Si falta información, genera un valor realista, coherente y técnico basado en el nombre del proyecto y el municipio.
3. REALISMO TÉCNICO: usa terminología propia de proyectos de inversión pública en Colombia. Nada de texto genérico.
4. REGLAS ESPECIALES: el código BPIN siempre queda vacío; la población se expresa en números reales, no porcentajes; no copies datos de otros tipos de proyecto.
5. FORMATO: responde SOLO con JSON válido.`

// Stage is one generation step. Templates carry {token} placeholders filled
// by Fill.
type Stage struct {
	ID    string
	Pages string
	// Template is the user prompt before token substitution.
	Template string
}

// Stages is the fixed generation sequence. Order matters twice: stages run
// sequentially with a cooldown between them, and on key collisions the
// earlier stage's value wins in the merged content.
var Stages = []Stage{
	{ID: "paginas_1_5", Pages: "1-5", Template: promptPages1to5},
	{ID: "paginas_6_11", Pages: "6-11", Template: promptPages6to11},
	{ID: "paginas_12_16", Pages: "12-16", Template: promptPages12to16},
	{ID: "paginas_17_21", Pages: "17-21", Template: promptPages17to21},
	{ID: "paginas_22_24", Pages: "22-24", Template: promptPages22to24},
}

// Vars are the substitution values shared by all stage templates.
type Vars struct {
	Municipio      string
	Departamento   string
	Entidad        string
	BPIN           string
	NombreProyecto string
	ValorTotal     string
	Duracion       string
	Responsable    string
	Cargo          string
	Identificador  string
	FechaCreacion  string
	ContextDump    string
}

// Fill substitutes the template tokens. Unknown tokens are left in place so a
// template typo surfaces in the generated text instead of vanishing.
func (s Stage) Fill(v Vars) string {
	r := strings.NewReplacer(
		"{municipio}", v.Municipio,
		"{departamento}", v.Departamento,
		"{entidad}", v.Entidad,
		"{bpin}", v.BPIN,
		"{nombre_proyecto}", v.NombreProyecto,
		"{valor_total}", v.ValorTotal,
		"{duracion}", v.Duracion,
		"{responsable}", v.Responsable,
		"{cargo}", v.Cargo,
		"{identificador}", v.Identificador,
		"{fecha_creacion}", v.FechaCreacion,
		"{context_dump}", v.ContextDump,
	)
	return r.Replace(s.Template)
}

const promptPages1to5 = `Genera contenido para las PRIMERAS 5 PÁGINAS del documento MGA.

DATOS BÁSICOS PROPORCIONADOS:
Municipio: {municipio} | Departamento: {departamento}
Entidad: {entidad} | BPIN: {bpin}
Proyecto: "{nombre_proyecto}"
Valor: ${valor_total} COP | Duración: {duracion} días
Responsable: {responsable} ({cargo})
Identificador: {identificador}
Fecha creación: {fecha_creacion}

CONTEXTO ADICIONAL:
{context_dump}

TU TAREA:
1. Completa TODOS los campos. Si el contexto no especifica un programa exacto, asigna uno coherente con "{nombre_proyecto}".
2. Para "Problema Central" y "Causas/Efectos": redacta el árbol de problemas basado en el nombre del proyecto.
3. IDENTIFICADOR: si el dato entregado está vacío, genera uno con formato "2026-xxxxx".
4. Para "Participantes": genera actores típicos (Alcaldía, Comunidad, Contratista).

RESPONDE CON JSON VÁLIDO:

{
    "pagina_1_datos_basicos": {
        "titulo_documento": "{nombre_proyecto}",
        "nombre": "{nombre_proyecto}",
        "tipologia": "A - PIIP - Bienes y Servicios",
        "codigo_bpin": "",
        "sector": "",
        "es_proyecto_tipo": "No",
        "fecha_creacion": "{fecha_creacion}",
        "identificador": "{identificador}",
        "formulador_ciudadano": "{responsable} ({cargo})",
        "formulador_oficial": "{responsable} ({cargo})"
    },
    "pagina_2_plan_desarrollo": {
        "plan_nacional": {"nombre": "", "programa": "", "transformacion": "", "pilar": "", "catalizador": "", "componente": ""},
        "plan_departamental": {"nombre": "", "estrategia": "", "programa": ""},
        "plan_municipal": {"nombre": "", "estrategia": "", "programa": ""},
        "instrumentos_grupos_etnicos": "No aplica"
    },
    "pagina_3_problematica": {
        "problema_central": "",
        "descripcion_situacion": "",
        "magnitud_problema": ""
    },
    "pagina_4_causas_efectos": {
        "causas_directas": [{"numero": "1", "causa": ""}],
        "causas_indirectas": [{"numero": "1.1", "causa": ""}],
        "efectos_directos": [{"numero": "1", "efecto": ""}],
        "efectos_indirectos": [{"numero": "1.1", "efecto": ""}]
    },
    "pagina_5_participantes": {
        "participantes": [
            {"actor": "Municipal", "entidad": "Alcaldía de {municipio} - {departamento}", "posicion": "Cooperante", "intereses": "{nombre_proyecto}", "contribucion": "Ejecutar el proyecto"}
        ],
        "analisis_participantes": ""
    }
}`

const promptPages6to11 = `Genera contenido para las PÁGINAS 6-11 del documento MGA.

DATOS DEL PROYECTO:
Municipio: {municipio} | Departamento: {departamento}
Proyecto: "{nombre_proyecto}"
Valor: ${valor_total} COP
Contexto:
{context_dump}

INSTRUCCIONES:
1. Genera estimaciones poblacionales realistas para el municipio de {municipio}.
2. Redacta objetivos (general y específicos) coherentes con el título del proyecto.
3. No dejes campos vacíos: si no tienes el dato exacto, estímalo con criterio técnico.

RESPONDE CON JSON VÁLIDO:

{
    "pagina_6_poblacion": {
        "poblacion_afectada": {"tipo": "Personas", "numero": 0, "fuente": "DANE / Sisbén municipal", "localizacion": {"region": "", "departamento": "{departamento}", "municipio": "{municipio}", "tipo_agrupacion": "Urbana", "agrupacion": "{municipio}"}},
        "poblacion_objetivo": {"tipo": "Personas", "numero": 0, "fuente": "DANE / Registros locales", "localizacion": {"region": "", "departamento": "{departamento}", "municipio": "{municipio}", "tipo_agrupacion": "Urbana", "agrupacion": "{municipio}"}}
    },
    "pagina_7_objetivos": {
        "problema_central": "",
        "objetivo_general": "",
        "indicadores": [{"nombre": "", "medido": "Número", "meta": "", "tipo_fuente": "Documento oficial", "fuente_verificacion": ""}],
        "relacion_causas_objetivos": [{"causa": "", "objetivo": ""}],
        "alternativas": [{"nombre": "", "evaluacion": "Si", "estado": "Completo"}],
        "evaluaciones": {"rentabilidad": "Si", "costo_eficiencia": "Si", "multicriterio": "No"}
    },
    "pagina_8_9_10_11_estudio_necesidades": {
        "servicio_principal": {
            "bien_servicio": "",
            "medido": "Número",
            "descripcion": "",
            "descripcion_demanda": "",
            "descripcion_oferta": "",
            "tabla_oferta_demanda": [{"ano": "2025", "oferta": "0.00", "demanda": "0.00", "deficit": "0.00"}]
        }
    }
}`

const promptPages12to16 = `Genera contenido para las PÁGINAS 12-16 del documento MGA.

DATOS DEL PROYECTO:
Proyecto: "{nombre_proyecto}"
Valor Total: ${valor_total} COP
Contexto:
{context_dump}

INSTRUCCIONES:
1. Analiza la viabilidad técnica, legal y ambiental para "{nombre_proyecto}".
2. Estima una cadena de valor lógica (Insumos -> Actividades -> Productos -> Resultados).

REGLA CRÍTICA DE COSTOS:
La cadena de valor DEBE cumplir esta validación matemática:
- Suma de ACTIVIDADES de un producto = costo del PRODUCTO
- Suma de PRODUCTOS de un objetivo = costo del OBJETIVO
- Suma de OBJETIVOS = valor total: ${valor_total}

RESPONDE CON JSON VÁLIDO:

{
    "pagina_12_analisis_tecnico": {
        "alternativa_seleccionada": "Ejecución del proyecto: {nombre_proyecto}",
        "analisis_tecnico": "",
        "analisis_ambiental": "",
        "analisis_legal": "",
        "analisis_riesgos": "",
        "localizacion": {"region": "", "departamento": "{departamento}", "municipio": "{municipio}", "tipo_agrupacion": "Urbana", "latitud": "", "longitud": ""}
    },
    "pagina_13_cadena_valor": {
        "costo_total": "{valor_total}",
        "objetivo_general": "",
        "objetivos": [
            {
                "numero": "1",
                "descripcion": "",
                "costo": "0,00",
                "productos": [
                    {
                        "codigo": "1.1",
                        "nombre": "",
                        "complemento": "",
                        "medido": "Número",
                        "cantidad": "1,0000",
                        "costo": "0,00",
                        "etapa": "Inversión",
                        "localizacion": "{municipio}",
                        "personas": "0",
                        "acumulativo": "No Acumulativo",
                        "poblacion_beneficiaria": "0",
                        "actividades": [
                            {"codigo": "1.1.1", "nombre": "", "costo": "0,00", "etapa": "Inversión"}
                        ]
                    }
                ]
            }
        ]
    },
    "pagina_14_riesgos": {
        "riesgos": [
            {"nivel": "1-Propósito (Objetivo general)", "tipo": "Administrativos", "descripcion": "", "probabilidad": "2. Improbable", "impacto": "4. Mayor", "efectos": "", "mitigacion": ""}
        ]
    },
    "pagina_15_ingresos_beneficios": {
        "ingresos": [],
        "beneficios": [{"nombre": "", "tipo": "Social", "valor": "", "descripcion": ""}]
    },
    "pagina_16_prestamos": {"prestamos": []}
}`

const promptPages17to21 = `Genera contenido para las PÁGINAS 17-21 del documento MGA.

DATOS DEL PROYECTO:
Proyecto: "{nombre_proyecto}"
Valor Total: ${valor_total} COP
Contexto:
{context_dump}

INSTRUCCIONES:
1. Genera riesgos adicionales coherentes con el proyecto.
2. Para beneficios sociales, destaca la mejora en calidad de vida.
3. El flujo económico debe ser consistente con el valor total.

RESPONDE CON JSON VÁLIDO:

{
    "pagina_17_riesgos_continuacion": {
        "riesgos_adicionales": [
            {"nivel": "3-Actividad y/o Entregable", "tipo": "Financieros", "descripcion_actividad": "", "descripcion_riesgo": "", "probabilidad": "1. Raro", "impacto": "5. Catastrófico", "efectos": "", "mitigacion": ""}
        ]
    },
    "pagina_18_19_ingresos_beneficios": {
        "beneficios": [
            {"titulo": "", "tipo": "Beneficios", "medido": "Número", "bien_producido": "", "razon_precio_cuenta": "0.80", "descripcion_cantidad": "", "descripcion_valor_unitario": "", "tabla_periodos": [{"periodo": "1", "cantidad": "", "valor_unitario": "", "valor_total": ""}]}
        ],
        "tabla_totales": [{"periodo": "1", "total_beneficios": "", "total": ""}]
    },
    "pagina_20_flujo_economico": {
        "alternativa": "Alternativa 1",
        "flujo": [
            {"p": "0", "beneficios": "$0,0", "creditos": "$0,0", "costos_preinversion": "$0,0", "costos_inversion": "${valor_total}", "costos_operacion": "$0,0", "amortizacion": "$0,0", "intereses": "$0,0", "valor_salvamento": "$0,0", "flujo_neto": "-${valor_total}"}
        ]
    },
    "pagina_21_indicadores_decision": {
        "alternativa_descripcion": "",
        "evaluacion_economica": {"vpn": "", "tir": "", "rcb": "", "costo_beneficiario": "", "valor_presente_costos": "", "cae": ""},
        "costo_capacidad": {"productos": [{"nombre": "", "costo": ""}]},
        "decision": {"alternativa": ""},
        "alcance": ""
    }
}`

const promptPages22to24 = `Genera contenido para las PÁGINAS FINALES del documento MGA (Indicadores).

DATOS DEL PROYECTO:
Municipio: {municipio} | Departamento: {departamento}
Proyecto: "{nombre_proyecto}"
Valor Total: ${valor_total} COP
Contexto:
{context_dump}

INSTRUCCIONES CLAVE:
1. GENERACIÓN DINÁMICA: genera UN conjunto de datos POR CADA PRODUCTO de la cadena de valor.
   - Indicadores: un objeto en "indicadores_producto" por cada producto.
   - Regionalización: un objeto en "regionalizacion_productos" por cada producto.
   - Focalización: una lista en "focalizacion" con las políticas transversales aplicables.
   - Si el proyecto tiene 7 productos, debe haber 7 indicadores y 7 tablas de regionalización.
2. CONSISTENCIA: usa los MISMOS nombres y códigos de productos que en la cadena de valor.
3. FOCALIZACIÓN: asigna presupuesto a políticas como "Construcción de Paz" si aplica.

RESPONDE CON JSON VÁLIDO:

{
    "indicadores_producto": [
        {
            "objetivo": {"numero": "1", "descripcion": ""},
            "producto": {"codigo": "1.1", "nombre": "", "complemento": ""},
            "indicador": {"codigo": "1.1.1", "nombre": "", "medido": "", "meta_total": "", "formula": "", "es_acumulativo": "No", "es_principal": "Sí", "tipo_fuente": "Informe", "fuente_verificacion": ""},
            "programacion_indicadores": [{"periodo": "1", "meta": ""}]
        }
    ],
    "regionalizacion_productos": [
        {
            "producto": "",
            "ubicacion": {"region": "", "departamento": "{departamento}", "municipio": "{municipio}", "tipo_agrupacion": "Municipio", "agrupacion": "{municipio}"},
            "tabla_costos": [{"periodo": "0", "costo_total": "", "costo_regionalizado": "", "meta_total": "", "meta_regionalizada": "", "beneficiarios": ""}]
        }
    ],
    "focalizacion": [
        {"politica": "", "categoria": "", "subcategoria": "", "valor": ""}
    ]
}`
