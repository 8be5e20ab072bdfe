package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds one backend round-trip so a slow polish
// call can never block a turn indefinitely.
const DefaultRequestTimeout = 5 * time.Second

// Opts holds configuration options for the HTTP backend.
type Opts struct {
	Endpoint string
	Timeout  time.Duration
}

// Option defines a configuration option for the HTTP backend.
type Option func(*Opts)

// WithEndpoint sets the generative backend's base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *Opts) {
		o.Endpoint = endpoint
	}
}

// WithTimeout overrides the per-call request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = d
	}
}

// HTTPBackend talks to the generative text service over its JSON API.
// Any non-2xx response or schema mismatch is a hard failure; the caller
// falls back to the original text.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
}

// NewHTTPBackend creates a backend for the configured endpoint.
func NewHTTPBackend(opts ...Option) (*HTTPBackend, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("enhancement endpoint not set")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	slog.Debug("NewHTTPBackend: configured", "endpoint", cfg.Endpoint, "timeout", timeout)
	return &HTTPBackend{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type polishRequest struct {
	Text        string            `json:"text"`
	Tone        string            `json:"tone,omitempty"`
	Constraints polishConstraints `json:"constraints"`
}

type polishConstraints struct {
	MaxLengthRatio  float64  `json:"max_length_ratio"`
	MaxLines        int      `json:"max_lines,omitempty"`
	PreservePhrases []string `json:"preserve_phrases,omitempty"`
}

type polishResponse struct {
	PolishedText string `json:"polishedText"`
}

type normalizeRequest struct {
	Task string `json:"task"`
	Text string `json:"text"`
}

type normalizeResponse struct {
	NormalizedText string       `json:"normalizedText"`
	Numbers        []NumberSpan `json:"numbers"`
}

// Polish implements Backend.
func (b *HTTPBackend) Polish(ctx context.Context, text, tone string, c Constraints) (string, error) {
	req := polishRequest{
		Text: text,
		Tone: tone,
		Constraints: polishConstraints{
			MaxLengthRatio:  c.maxLengthRatio(),
			MaxLines:        c.MaxLines,
			PreservePhrases: c.PreservePhrases,
		},
	}
	var resp polishResponse
	if err := b.post(ctx, "/polish", req, &resp); err != nil {
		return "", err
	}
	if resp.PolishedText == "" {
		return "", fmt.Errorf("polish response missing polishedText")
	}
	return resp.PolishedText, nil
}

// Normalize implements Backend.
func (b *HTTPBackend) Normalize(ctx context.Context, text string) (string, []NumberSpan, error) {
	req := normalizeRequest{Task: "NUMBER_NORMALIZATION", Text: text}
	var resp normalizeResponse
	if err := b.post(ctx, "/normalize", req, &resp); err != nil {
		return "", nil, err
	}
	if resp.NormalizedText == "" {
		return "", nil, fmt.Errorf("normalize response missing normalizedText")
	}
	return resp.NormalizedText, resp.Numbers, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		slog.Debug("HTTPBackend request failed", "path", path, "error", err)
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("HTTPBackend non-2xx response", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
