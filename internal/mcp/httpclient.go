package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/storage"
)

// HTTPClient implements DataSource by calling the Splits REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

func (c *HTTPClient) ListTrainings(ctx context.Context) ([]models.TrainingSummary, error) {
	body, err := c.get(ctx, "/api/v1/trainings", nil)
	if err != nil {
		return nil, err
	}

	var list []models.TrainingSummary
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode trainings: %w", err)
	}
	return list, nil
}

// GetTraining fetches a training. The server's computed total is ignored;
// callers derive it from the segments.
func (c *HTTPClient) GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	body, err := c.get(ctx, "/api/v1/trainings/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var t models.Training
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("httpclient: decode training: %w", err)
	}
	return &t, nil
}
