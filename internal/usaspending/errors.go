package usaspending

import (
	"errors"
	"fmt"
)

// ErrMissingJobID indicates a submit response without a file_name field.
var ErrMissingJobID = errors.New("no job id in download response")

// StatusError reports a non-2xx HTTP response. It carries the status code
// and response body so callers can log the API's explanation.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// JobFailedError reports a download job that reached the failed status.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("download job %s failed", e.JobID)
	}
	return fmt.Sprintf("download job %s failed: %s", e.JobID, e.Message)
}
