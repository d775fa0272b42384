// Package brightdata implements the client for the Bright Data dataset
// collection API: batch trigger requests and snapshot retrieval.
package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// defaultSnapshotBase is used when the trigger URL does not contain the
// /trigger path segment to derive the snapshot endpoint from.
const defaultSnapshotBase = "https://api.brightdata.com/datasets/v3"

// DefaultTimeout bounds each API call.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes limits the size of snapshot payloads read into memory.
const maxResponseBytes = 50 * 1024 * 1024 // 50 MB

// ErrNoSnapshotID is returned when a trigger response carries no snapshot
// identifier.
var ErrNoSnapshotID = errors.New("trigger response contains no snapshot_id")

// Config holds client settings.
type Config struct {
	// URL is the dataset trigger endpoint.
	URL string

	// APIKey is the bearer token.
	APIKey string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client calls the Bright Data collection API.
type Client struct {
	triggerURL string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a new Bright Data client.
func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		triggerURL: cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// keywordInput is one entry in the trigger request payload.
type keywordInput struct {
	URL       string `json:"url"`
	Keyword   string `json:"keyword"`
	Language  string `json:"language"`
	UULE      string `json:"uule"`
	BRDMobile string `json:"brd_mobile"`
}

type triggerRequest struct {
	Input []keywordInput `json:"input"`
}

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// Trigger submits a batch of search keywords and returns the snapshot
// identifier assigned by the service.
func (c *Client) Trigger(ctx context.Context, keywords []string) (string, error) {
	input := make([]keywordInput, 0, len(keywords))
	for _, kw := range keywords {
		input = append(input, keywordInput{
			URL:     "https://www.google.com/",
			Keyword: kw,
		})
	}

	body, err := json.Marshal(triggerRequest{Input: input})
	if err != nil {
		return "", fmt.Errorf("marshal trigger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.triggerURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create trigger request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("trigger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("trigger returned status %d", resp.StatusCode)
	}

	var result triggerResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return "", fmt.Errorf("decode trigger response: %w", decodeErr)
	}

	if result.SnapshotID == "" {
		return "", ErrNoSnapshotID
	}

	c.log.Info("Batch submitted",
		logger.String("snapshot_id", result.SnapshotID),
		logger.Int("keywords", len(keywords)),
		logger.Duration("duration", time.Since(start)),
	)

	return result.SnapshotID, nil
}

// Fetch retrieves the raw payload for a snapshot. The payload is returned
// as-is; classifying it (still processing, error envelope, valid) is the
// caller's responsibility.
func (c *Client) Fetch(ctx context.Context, snapshotID string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/snapshot/%s?format=json", c.snapshotBase(), snapshotID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create snapshot request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read snapshot payload: %w", err)
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("snapshot %s: payload is not valid JSON", snapshotID)
	}

	return json.RawMessage(raw), nil
}

// snapshotBase derives the snapshot endpoint base from the trigger URL.
func (c *Client) snapshotBase() string {
	if idx := strings.Index(c.triggerURL, "/trigger"); idx >= 0 {
		return c.triggerURL[:idx]
	}
	return defaultSnapshotBase
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
