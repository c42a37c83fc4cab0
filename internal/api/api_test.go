package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harish876/ResLens-Middleware/internal/gemini"
	"github.com/harish876/ResLens-Middleware/internal/runner"
)

type countingInvoker struct {
	mu   sync.Mutex
	sets int
	gets int
}

func (c *countingInvoker) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	return nil
}

func (c *countingInvoker) Get(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *countingInvoker) {
	t.Helper()
	inv := &countingInvoker{}
	run := runner.New(inv, zerolog.Nop())
	srv := httptest.NewServer(NewRouter(run, nil, nil))
	t.Cleanup(srv.Close)
	return srv, inv
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ServiceName, body["service"])
}

func TestInfo(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := getJSON(t, srv.URL+"/info")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ServiceName, body["service"])
	assert.NotEmpty(t, body["description"])
	assert.NotEmpty(t, body["endpoints"])
}

func TestSeed_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, body := range map[string]interface{}{
		"missing count": map[string]interface{}{},
		"zero count":    map[string]interface{}{"count": 0},
		"negative":      map[string]interface{}{"count": -5},
		"non-integer":   map[string]interface{}{"count": 2.5},
		"wrong type":    map[string]interface{}{"count": "three"},
	} {
		resp, out := postJSON(t, srv.URL+"/seed", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.Equal(t, "error", out["status"], name)
	}

	// state must remain idle after every rejected start
	_, status := getJSON(t, srv.URL+"/status")
	assert.Equal(t, "stopped", status["status"])
}

func TestSeed_RunsToCompletion(t *testing.T) {
	srv, inv := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/seed", map[string]interface{}{"count": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", out["status"])

	assert.Eventually(t, func() bool {
		_, status := getJSON(t, srv.URL+"/status")
		return status["status"] == "stopped"
	}, 5*time.Second, 50*time.Millisecond, "job must reach stopped without an explicit stop")

	inv.mu.Lock()
	defer inv.mu.Unlock()
	assert.Equal(t, 3, inv.sets)
}

func TestSeed_SingleFlight(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/seed", map[string]interface{}{"count": 1000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", out["status"])

	// second seed while seeding
	resp, out = postJSON(t, srv.URL+"/seed", map[string]interface{}{"count": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "conflict is soft, not a client error")
	assert.Equal(t, "error", out["status"])

	// get while seeding
	resp, out = postJSON(t, srv.URL+"/get", map[string]interface{}{"keys": []string{"a"}, "count": 100})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", out["status"])

	// stop_get targets the wrong kind and must leave the seed job running
	_, out = postJSON(t, srv.URL+"/stop_get", nil)
	assert.Equal(t, "error", out["status"])
	_, status := getJSON(t, srv.URL+"/status")
	assert.Equal(t, "running", status["status"])

	_, out = postJSON(t, srv.URL+"/stop", nil)
	assert.Equal(t, "success", out["status"])
}

func TestStop_NoJob(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/stop", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", out["status"])

	resp, out = postJSON(t, srv.URL+"/stop_get", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}

func TestGet_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := map[string]interface{}{
		"missing keys":  map[string]interface{}{"count": 100},
		"empty keys":    map[string]interface{}{"keys": []string{}, "count": 100},
		"missing count": map[string]interface{}{"keys": []string{"k"}},
		"bad count":     map[string]interface{}{"keys": []string{"k"}, "count": 250},
	}
	for name, body := range cases {
		resp, out := postJSON(t, srv.URL+"/get", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.Equal(t, "error", out["status"], name)
	}
}

func TestGet_StartAndStop(t *testing.T) {
	srv, inv := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/get", map[string]interface{}{"keys": []string{"a", "b"}, "count": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", out["status"])

	_, out = postJSON(t, srv.URL+"/stop_get", nil)
	assert.Equal(t, "success", out["status"])

	assert.Eventually(t, func() bool {
		_, status := getJSON(t, srv.URL+"/status_get")
		return status["status"] == "stopped"
	}, 5*time.Second, 50*time.Millisecond)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	assert.Less(t, inv.gets, 100, "cancellation must cut the job short")
}

func TestAnalyze_NoClient(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, out := postJSON(t, srv.URL+"/analyze", map[string]interface{}{"profile": "data"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}

func TestAnalyze(t *testing.T) {
	ai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/models" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"models": []map[string]interface{}{
					{"name": "models/gemini-2.5-flash-lite", "supportedGenerationMethods": []string{"generateContent"}},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "summary text"}}}},
			},
		})
	}))
	defer ai.Close()

	inv := &countingInvoker{}
	run := runner.New(inv, zerolog.Nop())
	gem := gemini.New(ai.URL, "key", zerolog.Nop())
	srv := httptest.NewServer(NewRouter(run, gem, nil))
	defer srv.Close()

	resp, out := postJSON(t, srv.URL+"/analyze", map[string]interface{}{"profile": "cpu profile"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "gemini-2.5-flash-lite", out["model"])
	assert.Equal(t, "summary text", out["summary"])

	resp, out = getJSON(t, srv.URL+"/models")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gemini-2.5-flash-lite", out["model"])

	// empty profile rejected
	resp, out = postJSON(t, srv.URL+"/analyze", map[string]interface{}{"profile": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}
