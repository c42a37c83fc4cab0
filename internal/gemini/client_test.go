package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generating(names ...string) []modelInfo {
	out := make([]modelInfo, 0, len(names))
	for _, n := range names {
		out = append(out, modelInfo{Name: n, SupportedGenerationMethods: []string{"generateContent"}})
	}
	return out
}

func TestPickModel_PrefersFlashLite(t *testing.T) {
	models := generating(
		"models/gemini-2.5-pro",
		"models/gemini-2.0-flash",
		"models/gemini-2.0-flash-lite",
	)
	assert.Equal(t, "gemini-2.0-flash-lite", pickModel(models))
}

func TestPickModel_FlashBeforeOthers(t *testing.T) {
	models := generating(
		"models/gemini-2.5-pro",
		"models/gemini-1.5-flash",
	)
	assert.Equal(t, "gemini-1.5-flash", pickModel(models))
}

func TestPickModel_NewestWithinTier(t *testing.T) {
	models := generating(
		"models/gemini-1.5-flash",
		"models/gemini-2.5-flash",
		"models/gemini-2.0-flash",
	)
	assert.Equal(t, "gemini-2.5-flash", pickModel(models))
}

func TestPickModel_IgnoresNonGenerating(t *testing.T) {
	models := []modelInfo{
		{Name: "models/gemini-2.5-flash-lite", SupportedGenerationMethods: []string{"embedContent"}},
		{Name: "models/gemini-2.0-flash", SupportedGenerationMethods: []string{"generateContent"}},
	}
	assert.Equal(t, "gemini-2.0-flash", pickModel(models))
}

func TestPickModel_NoCandidates(t *testing.T) {
	models := []modelInfo{
		{Name: "models/text-embedding-004", SupportedGenerationMethods: []string{"embedContent"}},
	}
	assert.Equal(t, FallbackModel, pickModel(models))
}

func TestResolveModel_FallbackOnListingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-key", zerolog.Nop())
	assert.Equal(t, FallbackModel, c.ResolveModel(context.Background()))
}

func TestResolveModel_CachesListing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listModelsResponse{Models: generating("models/gemini-2.5-flash")})
	}))
	defer srv.Close()

	c := New(srv.URL, "key", zerolog.Nop())
	assert.Equal(t, "gemini-2.5-flash", c.ResolveModel(context.Background()))
	assert.Equal(t, "gemini-2.5-flash", c.ResolveModel(context.Background()))
	assert.Equal(t, 1, calls, "listing must be fetched once per process")
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/models" && r.Method == http.MethodGet:
			require.Equal(t, "key", r.URL.Query().Get("key"))
			_ = json.NewEncoder(w).Encode(listModelsResponse{Models: generating("models/gemini-2.5-flash-lite")})
		case r.URL.Path == "/models/gemini-2.5-flash-lite:generateContent" && r.Method == http.MethodPost:
			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotEmpty(t, req.Contents)
			assert.Contains(t, req.Contents[0].Parts[0].Text, "cpu: 99% in kv_store::Commit")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": "Commit dominates CPU."}}}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "key", zerolog.Nop())
	model, summary, err := c.Summarize(context.Background(), "cpu: 99% in kv_store::Commit")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-lite", model)
	assert.Equal(t, "Commit dominates CPU.", summary)
}

func TestSummarize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/models" {
			_ = json.NewEncoder(w).Encode(listModelsResponse{Models: generating("models/gemini-2.5-flash")})
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "quota exceeded"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "key", zerolog.Nop())
	_, _, err := c.Summarize(context.Background(), "profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
