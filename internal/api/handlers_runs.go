package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oagudelo/mgadoc/internal/llm"
	"github.com/oagudelo/mgadoc/internal/money"
	"github.com/oagudelo/mgadoc/internal/pipeline"
	"github.com/oagudelo/mgadoc/internal/skeleton"
)

// handleCreateRun accepts the project form plus optional context documents
// and queues an assembly run.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	sk, err := skeletonFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Optional context documents (POAI, development plan). Extraction
	// failures are reported, not ignored: a run without the promised context
	// would silently produce a much weaker document.
	var contextParts []string
	for _, fh := range r.MultipartForm.File["context"] {
		name := sanitizeFilename(fh.Filename)
		if !skeleton.IsSupportedContext(name) {
			jsonError(w, fmt.Sprintf("unsupported context file type: %s", filepath.Ext(name)), http.StatusBadRequest)
			return
		}
		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open context file "+name, http.StatusBadRequest)
			return
		}
		text, err := skeleton.ExtractContext(f, name)
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("extract context from %s: %v", name, err), http.StatusBadRequest)
			return
		}
		if text != "" {
			contextParts = append(contextParts, fmt.Sprintf("=== %s ===\n%s", name, text))
		}
	}
	sk.Context = strings.Join(contextParts, "\n\n")

	if err := sk.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := pipeline.NewRun(sk, len(llm.Stages))
	if err := s.orchestrator.Submit(run); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":   run.ID,
		"status":   run.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/runs/%s/status", run.ID),
	})
}

func skeletonFromForm(r *http.Request) (*skeleton.ProjectSkeleton, error) {
	sk := &skeleton.ProjectSkeleton{
		Municipality: strings.TrimSpace(r.FormValue("municipio")),
		Department:   strings.TrimSpace(r.FormValue("departamento")),
		Entity:       strings.TrimSpace(r.FormValue("entidad")),
		Responsible:  strings.TrimSpace(r.FormValue("responsable")),
		Role:         strings.TrimSpace(r.FormValue("cargo")),
		BPIN:         strings.TrimSpace(r.FormValue("bpin")),
		Identifier:   strings.TrimSpace(r.FormValue("identificador")),
		ProjectName:  strings.TrimSpace(r.FormValue("nombre_proyecto")),
		CreatedAt:    time.Now(),
	}

	valor := r.FormValue("valor_total")
	if valor == "" {
		return nil, fmt.Errorf("valor_total is required")
	}
	amount, err := money.ParseAmount(valor)
	if err != nil {
		return nil, fmt.Errorf("valor_total: %v", err)
	}
	sk.TotalValue = amount

	if v := r.FormValue("duracion"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("duracion must be a number of days")
		}
		sk.DurationDays = days
	}

	return sk, nil
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	snap := run.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":        snap.ID,
		"status":        snap.Status,
		"current_stage": snap.CurrentStage,
		"progress":      snap.Progress,
		"created_at":    snap.CreatedAt,
		"updated_at":    snap.UpdatedAt,
	})
}

// handleRunAudit exposes the repair and substitution notes accumulated while
// assembling the document.
func (s *Server) handleRunAudit(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	snap := run.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run_id": snap.ID,
		"status": snap.Status,
		"audit":  snap.Progress.Audit,
		"errors": snap.Progress.Errors,
	})
}

func (s *Server) handleRunArtifact(w http.ResponseWriter, r *http.Request) {
	run := s.orchestrator.GetRun(chi.URLParam(r, "runID"))
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	snap := run.Snapshot()
	if snap.Status != pipeline.StatusDone || snap.ArtifactPath == "" {
		jsonError(w, fmt.Sprintf("artifact not ready (status %s)", snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(snap.ArtifactPath)))
	http.ServeFile(w, r, snap.ArtifactPath)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
