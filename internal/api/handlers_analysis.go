package api

import (
	"encoding/json"
	"net/http"

	"github.com/harish876/ResLens-Middleware/internal/api/respond"
	"github.com/harish876/ResLens-Middleware/internal/gemini"
)

// AnalysisHandler wraps the hosted AI model for profile summaries.
type AnalysisHandler struct {
	client *gemini.Client // nil when no API key is configured
}

func NewAnalysisHandler(client *gemini.Client) *AnalysisHandler {
	return &AnalysisHandler{client: client}
}

type analyzeResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Model   string `json:"model"`
	Summary string `json:"summary"`
}

// Analyze POST /analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respond.InternalError(w, ServiceName, "analysis unavailable: no Gemini API key configured")
		return
	}

	var req struct {
		Profile string `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, ServiceName, "invalid JSON body")
		return
	}
	if req.Profile == "" {
		respond.BadRequest(w, ServiceName, "profile is required")
		return
	}

	model, summary, err := h.client.Summarize(r.Context(), req.Profile)
	if err != nil {
		respond.InternalError(w, ServiceName, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, analyzeResponse{
		Service: ServiceName,
		Status:  "success",
		Model:   model,
		Summary: summary,
	})
}

// Models GET /models
func (h *AnalysisHandler) Models(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respond.InternalError(w, ServiceName, "analysis unavailable: no Gemini API key configured")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"service": ServiceName,
		"status":  "success",
		"model":   h.client.ResolveModel(r.Context()),
	})
}
