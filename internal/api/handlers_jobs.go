package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/harish876/ResLens-Middleware/internal/api/respond"
	"github.com/harish876/ResLens-Middleware/internal/runner"
)

// ServiceName appears in every response envelope.
const ServiceName = "reslens-middleware"

// JobsHandler exposes the load-generation job endpoints.
type JobsHandler struct {
	runner *runner.Runner
}

func NewJobsHandler(r *runner.Runner) *JobsHandler {
	return &JobsHandler{runner: r}
}

// Seed POST /seed
func (h *JobsHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count *float64 `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, ServiceName, "invalid JSON body")
		return
	}
	if req.Count == nil {
		respond.BadRequest(w, ServiceName, "count is required")
		return
	}
	if *req.Count != math.Trunc(*req.Count) {
		respond.BadRequest(w, ServiceName, "count must be an integer")
		return
	}

	err := h.runner.StartSeeding(int(*req.Count))
	switch {
	case errors.Is(err, runner.ErrInvalidCount):
		respond.BadRequest(w, ServiceName, err.Error())
	case errors.Is(err, runner.ErrAlreadyRunning):
		respond.SoftError(w, ServiceName, "a job is already running")
	case err != nil:
		respond.InternalError(w, ServiceName, err.Error())
	default:
		respond.Success(w, ServiceName, "seed job started")
	}
}

// StopSeed POST /stop
func (h *JobsHandler) StopSeed(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Stop(runner.JobSeed); err != nil {
		respond.SoftError(w, ServiceName, "no seed job is running")
		return
	}
	respond.Success(w, ServiceName, "seed job stopped")
}

// SeedStatus GET /status
func (h *JobsHandler) SeedStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, runner.JobSeed)
}

// Get POST /get
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys  []string `json:"keys"`
		Count *float64 `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, ServiceName, "invalid JSON body")
		return
	}
	if len(req.Keys) == 0 {
		respond.BadRequest(w, ServiceName, "keys must be a non-empty list")
		return
	}
	if req.Count == nil {
		respond.BadRequest(w, ServiceName, "count is required")
		return
	}
	if *req.Count != math.Trunc(*req.Count) {
		respond.BadRequest(w, ServiceName, "count must be an integer")
		return
	}

	err := h.runner.StartGetting(req.Keys, int(*req.Count))
	switch {
	case errors.Is(err, runner.ErrMissingKeys), errors.Is(err, runner.ErrInvalidCount):
		respond.BadRequest(w, ServiceName, err.Error())
	case errors.Is(err, runner.ErrAlreadyRunning):
		respond.SoftError(w, ServiceName, "a job is already running")
	case err != nil:
		respond.InternalError(w, ServiceName, err.Error())
	default:
		respond.Success(w, ServiceName, "get job started")
	}
}

// StopGet POST /stop_get
func (h *JobsHandler) StopGet(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Stop(runner.JobGet); err != nil {
		respond.SoftError(w, ServiceName, "no get job is running")
		return
	}
	respond.Success(w, ServiceName, "get job stopped")
}

// GetStatus GET /status_get
func (h *JobsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, runner.JobGet)
}

func (h *JobsHandler) writeStatus(w http.ResponseWriter, kind runner.JobKind) {
	status := "stopped"
	if h.runner.Active(kind) {
		status = "running"
	}
	respond.WriteJSON(w, http.StatusOK, respond.Response{Service: ServiceName, Status: status})
}
