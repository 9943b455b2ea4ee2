package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/pipeline"
	"github.com/spendwatch/awardfeed/internal/tabular"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	result  pipeline.Result
	err     error
	release chan struct{}
}

func (f *fakeRunner) Run(context.Context) (pipeline.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeRunner{}, zap.NewNop())
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGetAwardsBeforeAnyRun(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeRunner{}, zap.NewNop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/awards", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshThenGetAwards(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: pipeline.Result{
		RunID:   "run-9",
		Started: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		Table: tabular.Table{
			Columns: []string{"award_type"},
			Rows:    []tabular.Row{{"award_type": "grant"}},
		},
	}}
	s := NewServer(runner, zap.NewNop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		probe := httptest.NewRecorder()
		s.Handler().ServeHTTP(probe, httptest.NewRequest(http.MethodGet, "/v1/awards", nil))
		return probe.Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/awards", nil))
	var resp awardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "run-9", resp.RunID)
	require.Equal(t, 1, resp.Rows)
	require.Equal(t, "grant", resp.Records[0]["award_type"])
}

func TestRefreshWhileRunningConflicts(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{release: make(chan struct{})}
	s := NewServer(runner, zap.NewNop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool { return runner.callCount() == 1 }, time.Second, 5*time.Millisecond)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
	require.Equal(t, http.StatusConflict, rec.Code)

	close(runner.release)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeRunner{}, zap.NewNop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
