package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oagudelo/mgadoc/internal/config"
	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/llm"
	"github.com/oagudelo/mgadoc/internal/money"
	"github.com/oagudelo/mgadoc/internal/skeleton"
)

type step struct {
	out string
	err error
}

// fakeInvoker replays scripted responses in call order.
type fakeInvoker struct {
	mu    sync.Mutex
	calls int
	steps []step
}

func (f *fakeInvoker) Invoke(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.steps) {
		return "", errors.New("unexpected invocation")
	}
	s := f.steps[f.calls]
	f.calls++
	return s.out, s.err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const chainResponse = `{"pagina_13_cadena_valor":{"objetivos":[{"numero":"1","descripcion":"Mejorar la asistencia técnica","costo":"100.000.000,00","productos":[{"nombre":"Servicio de asistencia técnica","medido":"Número","cantidad":"10","costo":"100.000.000,00","localizacion":"El Banco","actividades":[{"nombre":"Contratar técnicos","costo":"100.000.000,00"}]}]}]}}`

func okSteps() []step {
	return []step{
		{out: `{"pagina_1_datos_basicos":{"sector":"Agricultura"}}`},
		{out: `{"pagina_7_objetivos":{"objetivo_general":"Mejorar la productividad"}}`},
		{out: chainResponse},
		{out: `{"pagina_18_19_ingresos_beneficios":{"beneficios":[]}}`},
		{out: `{"indicadores_producto":[],"regionalizacion_productos":[],"focalizacion":[]}`},
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		StageTimeout:   time.Second,
		StageCooldown:  0,
		MaxStageFails:  3,
		ToleranceMinor: 1,
		Placeholder:    "No disponible",
		ContextLimit:   1000,
		OutputDir:      t.TempDir(),
	}
}

func testSkeleton() *skeleton.ProjectSkeleton {
	return &skeleton.ProjectSkeleton{
		Municipality: "El Banco",
		Department:   "Magdalena",
		ProjectName:  "Fortalecimiento agropecuario",
		TotalValue:   money.FromMajor(100_000_000),
		DurationDays: 360,
		CreatedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess_CompletesRun(t *testing.T) {
	inv := &fakeInvoker{steps: okSteps()}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	snap := run.Snapshot()
	if snap.Status != StatusDone {
		t.Fatalf("status %s, errors %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.StagesCompleted != len(llm.Stages) {
		t.Errorf("stages completed %d", snap.Progress.StagesCompleted)
	}
	if snap.ArtifactPath == "" {
		t.Fatal("no artifact recorded")
	}
	if _, err := os.Stat(snap.ArtifactPath); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}
}

func TestProcess_UnparsableStageSubstituted(t *testing.T) {
	steps := okSteps()
	steps[0] = step{out: "lo siento, no puedo responder en JSON"}
	inv := &fakeInvoker{steps: steps}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	snap := run.Snapshot()
	if snap.Status != StatusDone {
		t.Fatalf("status %s, errors %v", snap.Status, snap.Progress.Errors)
	}
	found := false
	for _, note := range snap.Progress.Audit {
		if strings.Contains(note, "paginas_1_5") && strings.Contains(note, "contenido vacío") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected substitution audit note, got %v", snap.Progress.Audit)
	}
	if len(run.Stages().Stage("paginas_1_5")) != 0 {
		t.Error("substituted stage should be empty")
	}
}

func TestProcess_TimeoutSubstitutesStage(t *testing.T) {
	steps := okSteps()
	steps[0] = step{err: context.DeadlineExceeded}
	inv := &fakeInvoker{steps: steps}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	snap := run.Snapshot()
	if snap.Status != StatusDone {
		t.Fatalf("status %s, errors %v", snap.Status, snap.Progress.Errors)
	}
	if len(run.Stages().Stage("paginas_1_5")) != 0 {
		t.Error("timed-out stage should hold an empty record")
	}
	found := false
	for _, note := range snap.Progress.Audit {
		if strings.Contains(note, "paginas_1_5") && strings.Contains(note, "fallo de transporte") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected substitution audit note, got %v", snap.Progress.Audit)
	}
}

func TestProcess_ConsecutiveStageFailuresEndRun(t *testing.T) {
	fail := step{err: &llm.TransportError{StatusCode: 503}}
	inv := &fakeInvoker{steps: []step{fail, fail, fail}}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	snap := run.Snapshot()
	if snap.Status != StatusError {
		t.Fatalf("status %s", snap.Status)
	}
	if inv.callCount() != 3 {
		t.Errorf("expected 3 invocations, got %d", inv.callCount())
	}
	if len(snap.Progress.Errors) == 0 || !strings.Contains(snap.Progress.Errors[0], "etapas consecutivas sin respuesta") {
		t.Errorf("errors %v", snap.Progress.Errors)
	}
	if snap.ArtifactPath != "" {
		t.Error("failed run must not produce an artifact")
	}
}

func TestProcess_StageSuccessResetsFailureBudget(t *testing.T) {
	fail := step{err: &llm.TransportError{StatusCode: 503}}
	steps := []step{fail, fail}
	steps = append(steps, okSteps()...)
	inv := &fakeInvoker{steps: steps}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	// Stages 1 and 2 fail and are substituted; stage 3 succeeds and resets
	// the consecutive counter, so the run finishes on 5 invocations with the
	// value chain arriving in the last stage's slot.
	snap := run.Snapshot()
	if snap.Status != StatusDone {
		t.Fatalf("status %s, errors %v", snap.Status, snap.Progress.Errors)
	}
	if inv.callCount() != len(llm.Stages) {
		t.Errorf("expected %d invocations, got %d", len(llm.Stages), inv.callCount())
	}
}

func TestCooldown_WaitNotCutShortByCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.StageCooldown = 30 * time.Millisecond
	w := NewWorker(&fakeInvoker{}, discardLogger(), cfg)
	run := NewRun(testSkeleton(), len(llm.Stages))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	ok := w.cooldown(ctx, run, "paginas_1_5")
	if elapsed := time.Since(start); elapsed < cfg.StageCooldown {
		t.Errorf("wait cut short: %v", elapsed)
	}
	if ok {
		t.Error("cancelled run should stop at the stage boundary")
	}
}

func TestProcess_MissingChainEndsRun(t *testing.T) {
	steps := okSteps()
	steps[2] = step{out: `{"pagina_12_analisis_tecnico":{"alternativa_seleccionada":"Única"}}`}
	inv := &fakeInvoker{steps: steps}
	w := NewWorker(inv, discardLogger(), testConfig(t))
	run := NewRun(testSkeleton(), len(llm.Stages))

	w.Process(context.Background(), run)

	snap := run.Snapshot()
	if snap.Status != StatusError {
		t.Fatalf("status %s", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 || !strings.Contains(snap.Progress.Errors[0], "cadena de valor") {
		t.Errorf("errors %v", snap.Progress.Errors)
	}
}

func TestOverlayIdentification(t *testing.T) {
	sk := testSkeleton()
	sk.Responsible = "Ana Gómez"
	sk.Role = "Secretaria de Planeación"
	sk.Identifier = "2026-00042"
	merged := content.Record{
		"pagina_1_datos_basicos": map[string]any{
			"nombre":        "nombre inventado",
			"identificador": "otro",
			"sector":        "Agricultura",
		},
	}

	overlayIdentification(merged, sk)

	page := merged.Map("pagina_1_datos_basicos")
	if page.Str("nombre") != sk.ProjectName {
		t.Errorf("nombre %q", page.Str("nombre"))
	}
	if page.Str("identificador") != "2026-00042" {
		t.Errorf("identificador %q", page.Str("identificador"))
	}
	if page.Str("formulador_oficial") != "Ana Gómez (Secretaria de Planeación)" {
		t.Errorf("formulador %q", page.Str("formulador_oficial"))
	}
	if page.Str("sector") != "Agricultura" {
		t.Error("generated fields outside the overlay must survive")
	}
}

func TestOverlayIdentification_EmptyIdentifierKept(t *testing.T) {
	sk := testSkeleton()
	merged := content.Record{
		"pagina_1_datos_basicos": map[string]any{"identificador": "2026-77777"},
	}
	overlayIdentification(merged, sk)
	if got := merged.Map("pagina_1_datos_basicos").Str("identificador"); got != "2026-77777" {
		t.Errorf("generated identifier should survive an empty form value, got %q", got)
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxQueueSize = 1
	cfg.WorkerCount = 1
	orch := NewOrchestrator(cfg, &fakeInvoker{}, discardLogger())
	// Not started: nothing drains the queue.

	first := NewRun(testSkeleton(), len(llm.Stages))
	if err := orch.Submit(first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewRun(testSkeleton(), len(llm.Stages))
	if err := orch.Submit(second); err == nil {
		t.Fatal("expected queue-full error")
	}
	if second.Snapshot().Status != StatusError {
		t.Errorf("rejected run status %s", second.Snapshot().Status)
	}
	if orch.GetRun(first.ID) == nil {
		t.Error("submitted run not retrievable")
	}
}

func TestRunStore_Cleanup(t *testing.T) {
	store := NewRunStore(time.Millisecond)
	run := NewRun(testSkeleton(), 5)
	store.Put(run)
	time.Sleep(5 * time.Millisecond)
	store.Cleanup()
	if store.Get(run.ID) != nil {
		t.Error("expired run should be evicted")
	}
}
