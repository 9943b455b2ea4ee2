package usaspending

// TimePeriod bounds the award date range submitted with every job.
type TimePeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Filters is the filter block of a download request. Keywords and the time
// period are static per run; the award type codes vary per group.
type Filters struct {
	Keywords       []string     `json:"keywords"`
	TimePeriod     []TimePeriod `json:"time_period"`
	AwardTypeCodes []string     `json:"award_type_codes"`
}

// downloadRequest is the POST body for the export-job endpoint. Everything
// outside Filters is fixed template state.
type downloadRequest struct {
	Filters    Filters  `json:"filters"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	Sort       string   `json:"sort"`
	Order      string   `json:"order"`
	AuditTrail bool     `json:"auditTrail"`
	Fields     []string `json:"fields"`
	Subawards  bool     `json:"subawards"`
}

// downloadResponse is the subset of the submit response we consume. The
// file_name doubles as the job identifier for the status endpoint.
type downloadResponse struct {
	FileName string `json:"file_name"`
}

// statusResponse is the subset of the status response we consume. Depending
// on API version the download link arrives as url or file_url.
type statusResponse struct {
	Status  string `json:"status"`
	URL     string `json:"url"`
	FileURL string `json:"file_url"`
	Message string `json:"message"`
}

// Terminal job status values. Any other status means the job is still
// being prepared and the poll loop keeps waiting.
const (
	statusFinished = "finished"
	statusFailed   = "failed"
)

func (s statusResponse) downloadURL() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FileURL
}
