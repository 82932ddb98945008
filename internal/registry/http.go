package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// sleepFunc waits between retries (injectable for tests).
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// maxDrainBytes caps how much of an error body is read before closing.
const maxDrainBytes = 64 << 10

// retryBase is the first backoff step; later steps double it.
var retryBase = 500 * time.Millisecond

// HTTPRegistry queries a Verra-style REST API:
//
//	GET {base}/projects/{id}
//	Authorization: Bearer <token>
type HTTPRegistry struct {
	name    string
	baseURL string
	token   string
	retries int
	client  *http.Client
}

// NewHTTPRegistry builds the HTTP registry. A nil client gets one with the
// given per-request timeout.
func NewHTTPRegistry(name string, cfg Config, client *http.Client) *HTTPRegistry {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 1
	}
	return &HTTPRegistry{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		retries: retries,
		client:  client,
	}
}

func (h *HTTPRegistry) Name() string { return h.name }

type projectResponse struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	Methodology      string          `json:"methodology"`
	CreditsAvailable decimal.Decimal `json:"credits_available"`
	VerificationBody string          `json:"verification_body"`
	URL              string          `json:"url"`
}

// verifiedStatuses are the project states that count as confirmed.
var verifiedStatuses = map[string]bool{
	"registered": true,
	"active":     true,
	"verified":   true,
}

// Lookup fetches the project, retrying transient failures with
// exponential backoff.
func (h *HTTPRegistry) Lookup(ctx context.Context, projectID string) Result {
	res := Result{Registry: h.name, ProjectID: projectID}

	var (
		status int
		body   projectResponse
		err    error
	)
	for attempt := 0; attempt < h.retries; attempt++ {
		status, body, err = h.fetch(ctx, projectID)
		if !isRetryable(status, err) {
			break
		}
		if attempt < h.retries-1 {
			if serr := sleepFunc(ctx, retryBase*time.Duration(1<<uint(attempt))); serr != nil {
				err = serr
				break
			}
		}
	}

	switch {
	case err != nil:
		res.Error = err.Error()
	case status == http.StatusNotFound:
		res.Error = "project not found"
	case status != http.StatusOK:
		res.Error = fmt.Sprintf("unexpected status %d", status)
	default:
		res.Status = body.Status
		res.Methodology = body.Methodology
		res.CreditsAvailable = body.CreditsAvailable
		res.VerificationBody = body.VerificationBody
		res.ProjectURL = body.URL
		res.Verified = verifiedStatuses[strings.ToLower(body.Status)]
		if !res.Verified {
			res.Error = fmt.Sprintf("project status %q", body.Status)
		}
	}
	return res
}

func (h *HTTPRegistry) fetch(ctx context.Context, projectID string) (int, projectResponse, error) {
	var out projectResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/projects/"+url.PathEscape(projectID), nil)
	if err != nil {
		return 0, out, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, out, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused by the retry
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return resp.StatusCode, out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, out, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, out, nil
}

// isRetryable reports transient failures: 5xx, 429 and network errors.
func isRetryable(status int, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		var nerr net.Error
		if errors.As(err, &nerr) {
			return true
		}
		s := strings.ToLower(err.Error())
		return strings.Contains(s, "connection refused") || strings.Contains(s, "connection reset")
	}
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}
