package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ImportResult is the subset of the server's import response the uploader reports.
type ImportResult struct {
	SegmentsReceived int      `json:"segments_received"`
	SegmentsAdded    int      `json:"segments_added"`
	SegmentsValid    int      `json:"segments_valid"`
	SegmentsInvalid  int      `json:"segments_invalid"`
	Warnings         []string `json:"warnings"`
}

// Client sends split files to the Splits server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the Splits server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// CreateTraining creates an empty training and returns its ID.
func (c *Client) CreateTraining(name string, date time.Time) (uuid.UUID, error) {
	data, err := json.Marshal(map[string]string{
		"name": name,
		"date": date.Format("2006-01-02"),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling training: %w", err)
	}

	body, err := c.send(http.MethodPost, "/api/v1/trainings", "application/json", data, http.StatusCreated)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating training: %w", err)
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return uuid.Nil, fmt.Errorf("decoding training: %w", err)
	}
	return created.ID, nil
}

// ImportSplits POSTs CSV split data into an existing training.
func (c *Client) ImportSplits(trainingID uuid.UUID, csv []byte) (*ImportResult, error) {
	body, err := c.send(http.MethodPost, "/api/v1/trainings/"+trainingID.String()+"/import", "text/csv", csv, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("importing splits: %w", err)
	}

	var result ImportResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding import result: %w", err)
	}
	return &result, nil
}

// DeleteTraining removes a training, used to roll back a failed import.
func (c *Client) DeleteTraining(trainingID uuid.UUID) error {
	if _, err := c.send(http.MethodDelete, "/api/v1/trainings/"+trainingID.String(), "", nil, http.StatusNoContent); err != nil {
		return fmt.Errorf("deleting training: %w", err)
	}
	return nil
}

// send issues a request to path. Retries up to 3 times with exponential
// backoff on transport errors and 5xx responses.
func (c *Client) send(method, path, contentType string, data []byte, want int) ([]byte, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(c.backoff << uint(attempt-1))
		}

		req, err := http.NewRequest(method, c.serverURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == want {
			return body, nil
		}
		lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
