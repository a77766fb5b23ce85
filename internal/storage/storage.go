// Package storage defines persistence for filings, downloaded files,
// collective reports, and job executions.
package storage

import (
	"context"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// Storage is the persistence surface of the pipeline. Downloaded files are
// deduplicated by content hash; saving a filing that was already scraped for
// the same link is a no-op.
type Storage interface {
	// Filing operations
	SaveFilings(ctx context.Context, filings []models.Filing) (int, error)
	ListFilings(ctx context.Context, company string, limit int) ([]models.Filing, error)

	// Downloaded file registry
	FileExistsByHash(ctx context.Context, hash string) (bool, error)
	SaveDownloadedFile(ctx context.Context, file *models.DownloadedFile) error
	MarkFileSummarized(ctx context.Context, hash, summaryText string) error
	ListDownloadedFiles(ctx context.Context, company string, limit int) ([]models.DownloadedFile, error)

	// Collective reports
	SaveReport(ctx context.Context, report *models.CollectiveReport) error
	GetReport(ctx context.Context, id string) (*models.CollectiveReport, error)
	ListReports(ctx context.Context, company string, limit int) ([]models.CollectiveReport, error)

	// Job executions
	StartJobExecution(ctx context.Context, jobName string) (int64, error)
	FinishJobExecution(ctx context.Context, exec *models.JobExecution) error
	ListJobExecutions(ctx context.Context, jobName string, limit int) ([]models.JobExecution, error)

	// Stats
	CountReports(ctx context.Context) (int64, error)
	CountDownloadedFiles(ctx context.Context) (int64, error)

	Close() error
}
