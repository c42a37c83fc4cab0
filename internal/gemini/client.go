// Package gemini wraps the hosted Gemini REST API for profile analysis.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// FallbackModel is used whenever the model listing cannot be fetched.
const FallbackModel = "gemini-1.5-flash"

// analysisPrompt is the fixed template applied to profiling output.
const analysisPrompt = `You are a performance engineer reviewing profiling output from a distributed key-value store.
Summarize the hottest code paths, the likely bottlenecks, and concrete tuning recommendations.
Keep the summary under 200 words and use plain language.

Profiling data:
%s`

// Client calls the Gemini v1beta REST API.
type Client struct {
	http *resty.Client
	key  string
	log  zerolog.Logger

	mu    sync.Mutex
	model string // resolved once per process
}

// New creates a Client. baseURL is the v1beta API root; key is the API key.
func New(baseURL, key string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)

	return &Client{http: c, key: key, log: log}
}

type modelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type listModelsResponse struct {
	Models []modelInfo `json:"models"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ResolveModel returns the model used for analysis. The listing is consulted
// once; any listing error falls back to gemini-1.5-flash.
func (c *Client) ResolveModel(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != "" {
		return c.model
	}

	models, err := c.listModels(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("fallback", FallbackModel).Msg("model listing failed")
		c.model = FallbackModel
		return c.model
	}
	c.model = pickModel(models)
	c.log.Info().Str("model", c.model).Msg("analysis model resolved")
	return c.model
}

func (c *Client) listModels(ctx context.Context) ([]modelInfo, error) {
	var out listModelsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.key).
		SetQueryParam("pageSize", "200").
		SetResult(&out).
		Get("/models")
	if err != nil {
		return nil, fmt.Errorf("gemini list models: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("gemini list models status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Models) == 0 {
		return nil, fmt.Errorf("gemini list models: empty listing")
	}
	return out.Models, nil
}

// pickModel prefers flash-lite over flash over everything else, newest first
// within a tier. Only models supporting generateContent are considered.
func pickModel(models []modelInfo) string {
	candidates := make([]modelInfo, 0, len(models))
	for _, m := range models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				candidates = append(candidates, m)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return FallbackModel
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := tier(candidates[i].Name), tier(candidates[j].Name)
		if ti != tj {
			return ti < tj
		}
		// Version numbers sort lexicographically within a tier, so a plain
		// descending compare puts the newest release first.
		return candidates[i].Name > candidates[j].Name
	})
	return strings.TrimPrefix(candidates[0].Name, "models/")
}

func tier(name string) int {
	switch {
	case strings.Contains(name, "flash-lite"):
		return 0
	case strings.Contains(name, "flash"):
		return 1
	default:
		return 2
	}
}

// Summarize runs the fixed analysis prompt over the given profiling output
// and returns the model used and the generated summary.
func (c *Client) Summarize(ctx context.Context, profile string) (model, summary string, err error) {
	model = c.ResolveModel(ctx)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(analysisPrompt, profile)}}}},
	}
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.key).
		SetBody(&req).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", model))
	if err != nil {
		return model, "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Error != nil && out.Error.Message != "" {
			return model, "", fmt.Errorf("gemini generate status %d: %s", resp.StatusCode(), out.Error.Message)
		}
		return model, "", fmt.Errorf("gemini generate status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return model, "", fmt.Errorf("gemini generate: no candidates returned")
	}
	return model, out.Candidates[0].Content.Parts[0].Text, nil
}

// HealthPing reports whether the model listing endpoint is reachable.
func (c *Client) HealthPing(ctx context.Context) error {
	_, err := c.listModels(ctx)
	return err
}
