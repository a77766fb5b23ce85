package models

import "time"

// DocumentSummary is one generated summary, tied one-to-one to a source
// document by content hash.
type DocumentSummary struct {
	DocumentHash string    `json:"document_hash"`
	FileName     string    `json:"file_name"`
	Company      string    `json:"company"`
	Text         string    `json:"text"`
	Model        string    `json:"model"`
	ChunkCount   int       `json:"chunk_count"`
	ExcerptCount int       `json:"excerpt_count"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SummaryFailure records a document that could not be summarized. Failures are
// listed in the collective report but never abort the batch.
type SummaryFailure struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// RunMetadata describes the scrape run a collective report covers.
type RunMetadata struct {
	JobName   string `json:"job_name,omitempty"`
	Company   string `json:"company"`
	DateFrom  string `json:"date_from,omitempty"`
	DateTo    string `json:"date_to,omitempty"`
	Requested int    `json:"requested"`
}

// CollectiveReport aggregates one run: the per-document summaries used as
// input, the synthesized narrative, the rendered markdown document, and
// derived metadata. A report is immutable once rendered; regeneration creates
// a new report with a new ID.
type CollectiveReport struct {
	ID            string            `json:"id"`
	JobName       string            `json:"job_name,omitempty"`
	Company       string            `json:"company"`
	DateFrom      string            `json:"date_from,omitempty"`
	DateTo        string            `json:"date_to,omitempty"`
	Narrative     string            `json:"narrative"`
	Rendered      string            `json:"rendered"`
	Preview       string            `json:"preview"`
	ReportCount   int               `json:"report_count"`
	DocumentCount int               `json:"document_count"`
	Model         string            `json:"model"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Summaries     []DocumentSummary `json:"summaries,omitempty"`
	Failures      []SummaryFailure  `json:"failures,omitempty"`
	Filings       []Filing          `json:"filings,omitempty"`
	FilePath      string            `json:"file_path,omitempty"`
}

// MetaReport is a higher-order synthesis across collective reports of one
// company, following the same rendering conventions as CollectiveReport.
type MetaReport struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Narrative   string    `json:"narrative"`
	Rendered    string    `json:"rendered"`
	Preview     string    `json:"preview"`
	ReportCount int       `json:"report_count"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// JobExecution is one recorded run of a scheduled job.
type JobExecution struct {
	ID                 int64     `json:"id"`
	JobName            string    `json:"job_name"`
	Status             string    `json:"status"`
	ReportsFound       int       `json:"reports_found"`
	DocumentsProcessed int       `json:"documents_processed"`
	ReportID           string    `json:"report_id,omitempty"`
	Error              string    `json:"error,omitempty"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at,omitempty"`
}

// Job execution statuses.
const (
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)
