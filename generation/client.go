package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Request describes one generation job. Subjects above one require a
// subscription tier that allows multi-subject scenes.
type Request struct {
	Prompt   string `json:"prompt"`
	Style    string `json:"style,omitempty"`
	Subjects int    `json:"subjects,omitempty"`
}

// Cost returns the credit price of the request: one credit per subject.
func (r Request) Cost() int64 {
	if r.Subjects < 2 {
		return 1
	}
	return int64(r.Subjects)
}

// MultiSubject reports whether the request needs the premium tier feature.
func (r Request) MultiSubject() bool {
	return r.Subjects > 1
}

// Image is the outcome of a successful generation.
type Image struct {
	URL string `json:"url"`
}

// Client is the opaque external image-generation API. Calls may run for
// minutes and are billed by the provider regardless of what the ledger does
// afterwards.
type Client interface {
	Generate(ctx context.Context, req Request) (*Image, error)
}

// ClientConfig configures the HTTP client for the external image API.
type ClientConfig struct {
	BaseURL string        `env:"GENERATION_API_URL,required"`
	APIKey  string        `env:"GENERATION_API_KEY,required"`
	Timeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"5m"` // generation jobs can run for minutes
}

// HTTPClient implements Client against the provider's synchronous endpoint.
type HTTPClient struct {
	cfg  ClientConfig
	http *http.Client
}

// NewHTTPClient creates the external API client.
func NewHTTPClient(cfg ClientConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (*Image, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/generations", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d", ErrGenerationFailed, resp.StatusCode)
	}

	var img Image
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	if img.URL == "" {
		return nil, fmt.Errorf("%w: provider returned no image URL", ErrGenerationFailed)
	}

	return &img, nil
}

var _ Client = (*HTTPClient)(nil)
