package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/oagudelo/mgadoc/internal/auxiliary"
	"github.com/oagudelo/mgadoc/internal/budget"
	"github.com/oagudelo/mgadoc/internal/config"
	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/focalization"
	"github.com/oagudelo/mgadoc/internal/llm"
	"github.com/oagudelo/mgadoc/internal/money"
	"github.com/oagudelo/mgadoc/internal/render"
	"github.com/oagudelo/mgadoc/internal/skeleton"
)

// Worker executes one run: staged generation, merge, budget closure,
// auxiliary pairing, focalization and rendering.
type Worker struct {
	invoker llm.Invoker
	log     *slog.Logger
	cfg     config.Config
}

func NewWorker(invoker llm.Invoker, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		invoker: invoker,
		log:     log,
		cfg:     cfg,
	}
}

// Process drives a run end to end. Each stage gets a single invocation:
// malformed JSON and transport or timeout failures are both recoverable (an
// empty record takes the stage's place and the pipeline moves on), but
// transport failures also burn a consecutive-stage budget that ends the run
// once too many stages in a row produce nothing. Structural budget failures
// always end the run.
func (w *Worker) Process(ctx context.Context, run *Run) {
	log := w.log.With("run_id", run.ID)
	sk := run.Skeleton()
	vars := stageVars(sk, w.cfg.ContextLimit)

	consecutiveFails := 0
	for i, stage := range llm.Stages {
		run.SetStatus(StatusRunning, stage.ID)

		rec, err := w.runStage(ctx, stage, vars)
		var parseErr *content.ParseError
		switch {
		case err == nil:
			consecutiveFails = 0
			run.StageCompleted(stage.ID, rec)
			log.Info("stage completed", "stage", stage.ID, "keys", len(rec))

		case errors.As(err, &parseErr):
			consecutiveFails = 0
			run.AddAudit(fmt.Sprintf("etapa %s: respuesta no interpretable, se sustituyó contenido vacío", stage.ID))
			run.StageCompleted(stage.ID, content.Record{})
			log.Warn("stage content unusable, substituted empty record", "stage", stage.ID, "error", err)

		default:
			consecutiveFails++
			log.Warn("stage transport failure", "stage", stage.ID, "consecutive", consecutiveFails, "error", err)
			if consecutiveFails >= w.cfg.MaxStageFails {
				run.AddError(fmt.Sprintf("etapa %s: %d etapas consecutivas sin respuesta: %v", stage.ID, consecutiveFails, err))
				run.SetStatus(StatusError, stage.ID)
				return
			}
			run.AddAudit(fmt.Sprintf("etapa %s: fallo de transporte, se sustituyó contenido vacío", stage.ID))
			run.StageCompleted(stage.ID, content.Record{})
		}

		if i < len(llm.Stages)-1 {
			if !w.cooldown(ctx, run, stage.ID) {
				run.AddError("run cancelled")
				run.SetStatus(StatusError, stage.ID)
				return
			}
		}
	}

	run.SetStatus(StatusMerged, "")
	merged := run.Stages().Merged()
	overlayIdentification(merged, sk)

	tree, err := budget.Build(run.Stages(), sk.TotalValue, budget.Options{
		Tolerance: money.Amount(w.cfg.ToleranceMinor),
	})
	if err != nil {
		run.AddError(fmt.Sprintf("cadena de valor: %v", err))
		run.SetStatus(StatusError, "")
		return
	}
	for _, adj := range tree.Adjustments {
		run.AddAudit(fmt.Sprintf("ajuste %s %s: %s -> %s", adj.Level, adj.Code, adj.Original, adj.Adjusted))
	}

	inds := auxiliary.IndicatorsFromContent(merged)
	regs := auxiliary.RegionalFromContent(merged)
	aux, notes := auxiliary.Pair(tree, inds, regs, w.cfg.Placeholder)
	for _, n := range notes {
		run.AddAudit(n.String())
	}

	ledger := focalization.Build(focalization.FromContent(merged))

	doc := render.BuildDocument(render.Input{
		Skeleton:    sk,
		Merged:      merged,
		Tree:        tree,
		Auxiliaries: aux,
		Ledger:      ledger,
		Placeholder: w.cfg.Placeholder,
	})
	path, err := render.WritePDF(doc, w.cfg.OutputDir, sk.Municipality, time.Now())
	if err != nil {
		run.AddError(fmt.Sprintf("render: %v", err))
		run.SetStatus(StatusError, "")
		return
	}

	run.SetArtifact(path)
	run.SetStatus(StatusDone, "")
	log.Info("run completed", "artifact", path, "audit_notes", len(run.Snapshot().Progress.Audit))
}

// runStage performs one generation call under the stage timeout and repairs
// the response into a record.
func (w *Worker) runStage(ctx context.Context, stage llm.Stage, vars llm.Vars) (content.Record, error) {
	stageCtx, cancel := context.WithTimeout(ctx, w.cfg.StageTimeout)
	defer cancel()

	raw, err := w.invoker.Invoke(stageCtx, llm.SystemPrompt, stage.Fill(vars))
	if err != nil {
		return nil, err
	}
	return content.Repair(raw)
}

// cooldown pauses between stages. The wait always runs to completion so the
// external service's rate ceiling is respected even on an aborting run;
// cancellation is observed only at the stage boundary after it. Returns false
// if the run context was cancelled.
func (w *Worker) cooldown(ctx context.Context, run *Run, stageID string) bool {
	if w.cfg.StageCooldown > 0 {
		run.SetStatus(StatusCooldown, stageID)
		time.Sleep(w.cfg.StageCooldown)
	}
	return ctx.Err() == nil
}

func stageVars(sk *skeleton.ProjectSkeleton, contextLimit int) llm.Vars {
	return llm.Vars{
		Municipio:      sk.Municipality,
		Departamento:   sk.Department,
		Entidad:        sk.Entity,
		BPIN:           sk.BPIN,
		NombreProyecto: sk.ProjectName,
		ValorTotal:     sk.TotalValue.Format(),
		Duracion:       strconv.Itoa(sk.DurationDays),
		Responsable:    sk.Responsible,
		Cargo:          sk.Role,
		Identificador:  sk.Identifier,
		FechaCreacion:  sk.CreatedAt.Format("2006-01-02"),
		ContextDump:    sk.ContextExcerpt(contextLimit),
	}
}

// overlayIdentification forces the skeleton's form data over whatever the
// first stage generated for the identification page. Form data always wins.
func overlayIdentification(merged content.Record, sk *skeleton.ProjectSkeleton) {
	page := merged.Map("pagina_1_datos_basicos")
	if page == nil {
		page = content.Record{}
	}
	page["titulo_documento"] = sk.ProjectName
	page["nombre"] = sk.ProjectName
	page["codigo_bpin"] = sk.BPIN
	page["fecha_creacion"] = sk.CreatedAt.Format("2006-01-02")
	if sk.Identifier != "" {
		page["identificador"] = sk.Identifier
	}
	formulator := sk.Responsible
	if sk.Role != "" {
		formulator = fmt.Sprintf("%s (%s)", sk.Responsible, sk.Role)
	}
	page["formulador_ciudadano"] = formulator
	page["formulador_oficial"] = formulator
	merged["pagina_1_datos_basicos"] = map[string]any(page)
}
