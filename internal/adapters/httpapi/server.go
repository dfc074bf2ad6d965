// Package httpapi exposes the pipelines as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bft-labs/filetranslator/internal/domain"
	"github.com/bft-labs/filetranslator/internal/ports"
)

// Pipeline is the set of operations served for one mode.
type Pipeline interface {
	Mode() domain.Mode
	Step(ctx context.Context) (domain.StepOutcome, error)
	ProcessAll(ctx context.Context) (*domain.BatchReport, error)
	StartBatch(ctx context.Context) (int, error)
	StopBatch() error
	Status(ctx context.Context) (domain.Status, error)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Kind    domain.Kind `json:"kind"`
	Details string      `json:"details,omitempty"`
}

type stepResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Input   string `json:"input,omitempty"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type startResponse struct {
	Started bool   `json:"started"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

type stopResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// NewHandler routes /health and, for every pipeline, /{mode}/step,
// /{mode}/process-all, /{mode}/batch/start, /{mode}/batch/stop and
// /{mode}/status.
func NewHandler(logger ports.Logger, pipelines ...Pipeline) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, p := range pipelines {
		h := &handler{pipeline: p, logger: logger}
		prefix := "/" + string(p.Mode())
		mux.HandleFunc("GET "+prefix+"/step", h.step)
		mux.HandleFunc("POST "+prefix+"/process-all", h.processAll)
		mux.HandleFunc("POST "+prefix+"/batch/start", h.startBatch)
		mux.HandleFunc("POST "+prefix+"/batch/stop", h.stopBatch)
		mux.HandleFunc("GET "+prefix+"/status", h.status)
	}
	return mux
}

type handler struct {
	pipeline Pipeline
	logger   ports.Logger
}

func (h *handler) step(w http.ResponseWriter, r *http.Request) {
	o, err := h.pipeline.Step(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := stepResponse{Status: o.Status.String()}
	code := http.StatusOK
	switch o.Status {
	case domain.StepCompleted:
		resp.Message = "No more units to process"
	case domain.StepSkipped:
		resp.Message = "Skipped empty unit"
	case domain.StepSuccess:
		resp.Input = o.Unit.Payload
		resp.Output = o.Translated
	case domain.StepFailed:
		code = http.StatusInternalServerError
		resp.Input = o.Unit.Payload
		resp.Error = o.Message()
		resp.Kind = string(domain.Classify(o.Err))
	}
	writeJSON(w, code, resp)
}

func (h *handler) processAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.ProcessAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) startBatch(w http.ResponseWriter, r *http.Request) {
	count, err := h.pipeline.StartBatch(r.Context())
	switch {
	case errors.Is(err, domain.ErrNothingToProcess):
		writeJSON(w, http.StatusOK, startResponse{Started: false, Message: "No units found to process"})
	case err != nil:
		h.writeError(w, err)
	default:
		writeJSON(w, http.StatusAccepted, startResponse{Started: true, Count: count})
	}
}

func (h *handler) stopBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.StopBatch(); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, stopResponse{
		OK:      true,
		Message: "Stop requested; the batch stops after the current unit",
	})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.pipeline.Status(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	kind := domain.Classify(err)
	code := http.StatusInternalServerError
	details := ""
	switch {
	case errors.Is(err, domain.ErrBatchRunning):
		code = http.StatusConflict
		details = "Wait for the batch to finish or stop it before processing single units."
	case errors.Is(err, domain.ErrAlreadyRunning):
		code = http.StatusConflict
		details = "Wait for the current batch to finish before starting a new one."
	case errors.Is(err, domain.ErrNotRunning):
		code = http.StatusConflict
		details = "There is no active batch to stop."
	default:
		h.logger.Error("request failed",
			ports.String("mode", string(h.pipeline.Mode())),
			ports.String("kind", string(kind)),
			ports.Err(err),
		)
	}
	writeJSON(w, code, errorResponse{Error: err.Error(), Kind: kind, Details: details})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
