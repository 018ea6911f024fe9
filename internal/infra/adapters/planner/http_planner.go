package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"travel-ai-planner/internal/config"
	"travel-ai-planner/internal/domain/ports/adapter"
)

var _ adapter.PlannerAdapter = (*HTTPPlanner)(nil)

// HTTPPlanner dispatches plan requests to the external AI planner service
// over HTTP. A 2xx acknowledgment means the service accepted the job; the
// actual result arrives later on the callback endpoint.
type HTTPPlanner struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPPlanner(cfg *config.PlannerConfig) *HTTPPlanner {
	return &HTTPPlanner{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *HTTPPlanner) RequestGeneration(ctx context.Context, req adapter.GenerationRequest) error {
	return p.post(ctx, "/v1/plans/generate", req)
}

func (p *HTTPPlanner) RequestModification(ctx context.Context, req adapter.ModificationRequest) error {
	return p.post(ctx, "/v1/plans/modify", req)
}

func (p *HTTPPlanner) post(ctx context.Context, path string, body interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The body usually carries a short reason; cap it so a misbehaving
		// service cannot flood our error messages.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("planner rejected dispatch: status %d, body: %s", resp.StatusCode, string(b))
	}
	return nil
}
