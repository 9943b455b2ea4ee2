// Package usaspending implements the client for the USAspending bulk
// download API: it submits export jobs and polls their status until a
// download URL is available.
package usaspending

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/metrics"
)

// Config controls client behavior. The poll delays implement the capped
// doubling backoff: PollInitial, doubling each iteration, never exceeding
// PollMax.
type Config struct {
	BaseURL      string
	DownloadPath string
	StatusPath   string
	UserAgent    string
	Headers      map[string]string

	Keywords  []string
	StartDate string
	EndDate   string
	Fields    []string

	PollInitial time.Duration
	PollMax     time.Duration
}

// Client talks to the USAspending download API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	// sleep is replaced in tests to capture the backoff sequence.
	sleep func(ctx context.Context, d time.Duration) error
}

// JobHandle identifies a submitted export job.
type JobHandle struct {
	JobID string
}

// New builds a Client. A nil httpClient falls back to a 60s-timeout default
// and a nil logger to a no-op one.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInitial <= 0 {
		cfg.PollInitial = time.Second
	}
	if cfg.PollMax <= 0 {
		cfg.PollMax = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
		sleep:  sleepWithContext,
	}
}

// SubmitAndWait submits an export job for the given award type codes and
// blocks until the job finishes, returning the download URL. There is no
// retry ceiling; the wait is bounded only by the job's own lifecycle and
// the caller's context.
func (c *Client) SubmitAndWait(ctx context.Context, codes []string) (string, error) {
	handle, err := c.Submit(ctx, codes)
	if err != nil {
		return "", err
	}
	return c.WaitForDownloadURL(ctx, handle)
}

// Submit posts an export-job request and extracts the job identifier.
func (c *Client) Submit(ctx context.Context, codes []string) (JobHandle, error) {
	body := downloadRequest{
		Filters: Filters{
			Keywords: c.cfg.Keywords,
			TimePeriod: []TimePeriod{
				{StartDate: c.cfg.StartDate, EndDate: c.cfg.EndDate},
			},
			AwardTypeCodes: codes,
		},
		Page:      1,
		Limit:     500,
		Sort:      "total_obligated_amount",
		Order:     "desc",
		Fields:    c.cfg.Fields,
		Subawards: false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return JobHandle{}, fmt.Errorf("encode download request: %w", err)
	}

	endpoint := c.cfg.BaseURL + c.cfg.DownloadPath
	c.logger.Info("submitting download job", zap.Strings("award_type_codes", codes))

	raw, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return JobHandle{}, err
	}

	var resp downloadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return JobHandle{}, fmt.Errorf("decode download response: %w", err)
	}
	if resp.FileName == "" {
		c.logger.Error("download response carries no job id", zap.ByteString("body", raw))
		return JobHandle{}, fmt.Errorf("%w: %s", ErrMissingJobID, raw)
	}

	c.logger.Info("download job accepted", zap.String("job_id", resp.FileName))
	return JobHandle{JobID: resp.FileName}, nil
}

// WaitForDownloadURL polls the status endpoint until the job reports
// finished with a resolvable URL, or failed. Between non-terminal polls it
// sleeps with doubling backoff capped at PollMax.
func (c *Client) WaitForDownloadURL(ctx context.Context, handle JobHandle) (string, error) {
	statusURL := fmt.Sprintf("%s%s?file_name=%s&type=awards",
		c.cfg.BaseURL, c.cfg.StatusPath, url.QueryEscape(handle.JobID))

	delay := c.cfg.PollInitial
	for {
		raw, err := c.do(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return "", err
		}
		var st statusResponse
		if err := json.Unmarshal(raw, &st); err != nil {
			return "", fmt.Errorf("decode status response: %w", err)
		}
		metrics.ObservePoll(st.Status)
		c.logger.Info("job status",
			zap.String("job_id", handle.JobID),
			zap.String("status", st.Status))

		switch st.Status {
		case statusFinished:
			if u := st.downloadURL(); u != "" {
				return u, nil
			}
			// finished without a URL: keep polling until one resolves
		case statusFailed:
			return "", &JobFailedError{JobID: handle.JobID, Message: st.Message}
		}

		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
		if delay > c.cfg.PollMax {
			delay = c.cfg.PollMax
		}
	}
}

// do issues one request and returns the body, converting non-2xx responses
// into StatusError. Transport and status errors are never retried here.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	metrics.ObserveHTTPRequest(method, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	return raw, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
