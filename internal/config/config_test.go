package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "awardfeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://api.usaspending.gov", cfg.API.BaseURL)
	require.Equal(t, "/api/v2/download/awards/", cfg.API.DownloadPath)
	require.Equal(t, time.Second, cfg.API.PollInitial())
	require.Equal(t, 30*time.Second, cfg.API.PollMax())
	require.Equal(t, time.Duration(0), cfg.API.GroupDeadline())
	require.Equal(t, "2007-10-01", cfg.Filters.StartDate)
	require.Equal(t, "2025-09-30", cfg.Filters.EndDate)
	require.Empty(t, cfg.Filters.Keywords)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
api:
  base_url: http://localhost:9000
  poll_initial_seconds: 2
  poll_max_seconds: 10
  group_deadline_minutes: 90
filters:
  keywords: ["solar", "wind"]
  start_date: "2015-01-01"
  end_date: "2026-12-31"
output:
  path: /tmp/out.xlsx
logging:
  development: true
server:
  port: 9911
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	require.Equal(t, 2*time.Second, cfg.API.PollInitial())
	require.Equal(t, 90*time.Minute, cfg.API.GroupDeadline())
	require.Equal(t, []string{"solar", "wind"}, cfg.Filters.Keywords)
	require.Equal(t, "/tmp/out.xlsx", cfg.Output.Path)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, 9911, cfg.Server.Port)
}

func TestLoadRejectsBadPollBounds(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
api:
  poll_initial_seconds: 10
  poll_max_seconds: 5
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "poll_max_seconds")
}

func TestLoadRejectsBadDates(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
filters:
  start_date: "10/01/2007"
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "start_date")
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  port: 70000
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "port")
}
