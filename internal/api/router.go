package api

import (
	"github.com/gorilla/mux"

	"github.com/harish876/ResLens-Middleware/internal/api/recovery"
	"github.com/harish876/ResLens-Middleware/internal/gemini"
	"github.com/harish876/ResLens-Middleware/internal/runner"
)

// NewRouter wires all endpoints. gem may be nil when no API key is
// configured; components may be nil when health checkers are not running.
func NewRouter(r *runner.Runner, gem *gemini.Client, components func() map[string]bool) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	jobs := NewJobsHandler(r)
	root.HandleFunc("/seed", jobs.Seed).Methods("POST")
	root.HandleFunc("/stop", jobs.StopSeed).Methods("POST")
	root.HandleFunc("/status", jobs.SeedStatus).Methods("GET")
	root.HandleFunc("/get", jobs.Get).Methods("POST")
	root.HandleFunc("/stop_get", jobs.StopGet).Methods("POST")
	root.HandleFunc("/status_get", jobs.GetStatus).Methods("GET")

	analysis := NewAnalysisHandler(gem)
	root.HandleFunc("/analyze", analysis.Analyze).Methods("POST")
	root.HandleFunc("/models", analysis.Models).Methods("GET")

	health := NewHealthHandler(components)
	root.HandleFunc("/health", health.Check).Methods("GET")
	root.HandleFunc("/info", Info).Methods("GET")

	return root
}
