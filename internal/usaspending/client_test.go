package usaspending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI serves the submit and status endpoints with a scripted sequence
// of status responses.
type fakeAPI struct {
	mu         sync.Mutex
	statuses   []statusResponse
	polls      int
	submits    int
	lastSubmit downloadRequest
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/download/awards/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.submits++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastSubmit))
		require.NoError(t, json.NewEncoder(w).Encode(downloadResponse{FileName: "job-123"}))
	})
	mux.HandleFunc("/api/v2/download/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		require.Equal(t, "job-123", r.URL.Query().Get("file_name"))
		require.Equal(t, "awards", r.URL.Query().Get("type"))
		st := f.statuses[len(f.statuses)-1]
		if f.polls < len(f.statuses) {
			st = f.statuses[f.polls]
		}
		f.polls++
		require.NoError(t, json.NewEncoder(w).Encode(st))
	})
	return mux
}

func newTestClient(t *testing.T, baseURL string) (*Client, *[]time.Duration) {
	t.Helper()
	c := New(Config{
		BaseURL:      baseURL,
		DownloadPath: "/api/v2/download/awards/",
		StatusPath:   "/api/v2/download/status",
		Keywords:     []string{"alpha"},
		StartDate:    "2007-10-01",
		EndDate:      "2025-09-30",
	}, nil, zap.NewNop())

	delays := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func TestSubmitAndWaitReturnsURLOnFinished(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{statuses: []statusResponse{
		{Status: "finished", URL: "https://files.example/awards.zip"},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	url, err := c.SubmitAndWait(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, "https://files.example/awards.zip", url)
	// terminal on the first poll: no waiting at all
	require.Empty(t, *delays)
	require.Equal(t, 1, api.polls)
	require.Equal(t, []string{"A", "B"}, api.lastSubmit.Filters.AwardTypeCodes)
	require.Equal(t, []string{"alpha"}, api.lastSubmit.Filters.Keywords)
	require.Equal(t, "2007-10-01", api.lastSubmit.Filters.TimePeriod[0].StartDate)
}

func TestSubmitAndWaitAcceptsFileURL(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{statuses: []statusResponse{
		{Status: "finished", FileURL: "https://files.example/alt.zip"},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	url, err := c.SubmitAndWait(context.Background(), []string{"02"})
	require.NoError(t, err)
	require.Equal(t, "https://files.example/alt.zip", url)
}

func TestWaitReportsJobFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{statuses: []statusResponse{
		{Status: "running"},
		{Status: "failed", Message: "server exploded"},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.SubmitAndWait(context.Background(), []string{"A"})

	var jobErr *JobFailedError
	require.ErrorAs(t, err, &jobErr)
	require.Equal(t, "job-123", jobErr.JobID)
	require.Contains(t, jobErr.Error(), "server exploded")
}

func TestBackoffSequenceDoublesAndCaps(t *testing.T) {
	t.Parallel()

	statuses := make([]statusResponse, 0, 9)
	for i := 0; i < 8; i++ {
		statuses = append(statuses, statusResponse{Status: "running"})
	}
	statuses = append(statuses, statusResponse{Status: "finished", URL: "https://files.example/a.zip"})

	api := &fakeAPI{statuses: statuses}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	_, err := c.SubmitAndWait(context.Background(), []string{"A"})
	require.NoError(t, err)

	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second, 30 * time.Second,
	}
	require.Equal(t, want, *delays)
}

func TestFinishedWithoutURLKeepsPolling(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{statuses: []statusResponse{
		{Status: "finished"},
		{Status: "finished", URL: "https://files.example/late.zip"},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	url, err := c.SubmitAndWait(context.Background(), []string{"A"})
	require.NoError(t, err)
	require.Equal(t, "https://files.example/late.zip", url)
	require.Len(t, *delays, 1)
}

func TestSubmitMissingJobID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"detail":"unexpected"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Submit(context.Background(), []string{"A"})
	require.ErrorIs(t, err, ErrMissingJobID)
}

func TestSubmitStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Submit(context.Background(), []string{"A"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "rate limited")
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{statuses: []statusResponse{{Status: "running"}}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := c.SubmitAndWait(ctx, []string{"A"})
	require.True(t, errors.Is(err, context.Canceled))
}
