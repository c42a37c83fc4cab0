package api

import (
	"net/http"
	"time"

	"github.com/harish876/ResLens-Middleware/internal/api/respond"
)

// HealthHandler answers GET /health. The endpoint always reports ok; the
// dependency snapshot is informational only (the middleware stays usable for
// cleanup calls even while the kv tool or the AI endpoint is down).
type HealthHandler struct {
	components func() map[string]bool
}

func NewHealthHandler(components func() map[string]bool) *HealthHandler {
	return &HealthHandler{components: components}
}

// Check GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"service":   ServiceName,
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if h.components != nil {
		body["dependencies"] = h.components()
	}
	respond.WriteJSON(w, http.StatusOK, body)
}
