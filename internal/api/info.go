package api

import (
	"net/http"

	"github.com/harish876/ResLens-Middleware/internal/api/respond"
)

// infoDocument is the static description served at GET /info.
var infoDocument = map[string]interface{}{
	"service":     ServiceName,
	"status":      "ok",
	"description": "Operational harness around the ResilientDB key-value tool: background SET/GET load generation plus AI summaries of profiling output.",
	"endpoints": []map[string]string{
		{"method": "GET", "path": "/health", "description": "liveness probe with dependency snapshot"},
		{"method": "POST", "path": "/seed", "description": "start a background job issuing random SET operations; body {count:int>0}"},
		{"method": "POST", "path": "/stop", "description": "stop the running seed job"},
		{"method": "GET", "path": "/status", "description": "seed job status: running or stopped"},
		{"method": "POST", "path": "/get", "description": "start a background job sampling GET operations; body {keys:[]string, count:100|500|1000}"},
		{"method": "POST", "path": "/stop_get", "description": "stop the running get job"},
		{"method": "GET", "path": "/status_get", "description": "get job status: running or stopped"},
		{"method": "POST", "path": "/analyze", "description": "summarize profiling output with the hosted AI model; body {profile:string}"},
		{"method": "GET", "path": "/models", "description": "resolved AI model identifier"},
		{"method": "GET", "path": "/info", "description": "this document"},
	},
}

// Info GET /info
func Info(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, infoDocument)
}
