// Package archive downloads finished export archives and extracts their
// tabular payload.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/metrics"
	"github.com/spendwatch/awardfeed/internal/tabular"
	"github.com/spendwatch/awardfeed/internal/usaspending"
)

// Retriever fetches ZIP archives over HTTP and decodes the first CSV member.
type Retriever struct {
	http   *http.Client
	logger *zap.Logger
}

// New builds a Retriever. A nil httpClient falls back to a 5-minute-timeout
// default sized for multi-hundred-megabyte archives.
func New(httpClient *http.Client, logger *zap.Logger) *Retriever {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{http: httpClient, logger: logger}
}

// FetchAndExtract downloads the archive at url and returns the parsed
// contents of the first member whose name ends in .csv (case-insensitive),
// scanning members in listing order. An archive with no CSV member yields
// an empty table and no error.
func (r *Retriever) FetchAndExtract(ctx context.Context, url string) (tabular.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("build archive request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("fetch archive %s: %w", url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("read archive body: %w", err)
	}
	metrics.ObserveHTTPRequest(http.MethodGet, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tabular.Table{}, &usaspending.StatusError{
			Method:     http.MethodGet,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(payload),
		}
	}

	return r.extract(payload)
}

func (r *Retriever) extract(payload []byte) (tabular.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return tabular.Table{}, fmt.Errorf("open archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return tabular.Table{}, fmt.Errorf("open archive member %s: %w", f.Name, err)
		}
		t, err := tabular.ReadCSV(rc)
		rc.Close() //nolint:errcheck // read side already consumed
		if err != nil {
			return tabular.Table{}, fmt.Errorf("parse archive member %s: %w", f.Name, err)
		}
		r.logger.Info("extracted archive member",
			zap.String("member", f.Name),
			zap.Int("rows", t.Len()))
		return t, nil
	}

	r.logger.Warn("archive contains no csv member", zap.Int("members", len(zr.File)))
	return tabular.Table{}, nil
}
