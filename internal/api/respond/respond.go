// Package respond writes the JSON envelope shared by every endpoint.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response is the envelope returned by every endpoint.
type Response struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Success writes a 200 response with status "success".
func Success(w http.ResponseWriter, service, message string) {
	WriteJSON(w, http.StatusOK, Response{Service: service, Status: "success", Message: message})
}

// SoftError writes a 200 response with status "error". Used for expected
// conflicts such as starting a job while one is already running.
func SoftError(w http.ResponseWriter, service, message string) {
	WriteJSON(w, http.StatusOK, Response{Service: service, Status: "error", Message: message})
}

// BadRequest writes a 400 response for malformed or missing request fields.
func BadRequest(w http.ResponseWriter, service, message string) {
	WriteJSON(w, http.StatusBadRequest, Response{Service: service, Status: "error", Message: message})
}

// InternalError writes a 500 response with the error message echoed.
func InternalError(w http.ResponseWriter, service, message string) {
	WriteJSON(w, http.StatusInternalServerError, Response{Service: service, Status: "error", Message: message})
}
