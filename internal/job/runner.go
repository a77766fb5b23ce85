// Package job orchestrates one scrape-summarize-report run and records its
// execution.
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/config"
	"github.com/xHezuSx/gpwdigest/internal/fileid"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/scrape"
	"github.com/xHezuSx/gpwdigest/internal/storage"
	"github.com/xHezuSx/gpwdigest/internal/summarize"
)

// Scraper fetches filings and their attachments.
type Scraper interface {
	FetchFilings(ctx context.Context, q scrape.Query) ([]models.Filing, error)
	Attachments(ctx context.Context, filingURL string, kinds []models.FileKind) ([]scrape.Attachment, error)
	Download(ctx context.Context, att scrape.Attachment) ([]byte, error)
}

// Summarizer produces per-document summaries for a batch.
type Summarizer interface {
	SummarizeAll(ctx context.Context, docs []models.SourceDocument) ([]summarize.Result, error)
}

// Builder synthesizes the collective report.
type Builder interface {
	Build(ctx context.Context, meta models.RunMetadata, summaries []models.DocumentSummary, failures []models.SummaryFailure, filings []models.Filing) (*models.CollectiveReport, error)
}

// Indexer makes finished reports searchable.
type Indexer interface {
	Index(report *models.CollectiveReport) error
}

// Runner executes jobs end to end: scrape the listing, download new
// attachments, summarize them, synthesize and persist the collective report,
// and record the execution. Attachments whose content hash is already in the
// registry are skipped, so reruns only pay for new documents.
type Runner struct {
	scraper    Scraper
	summarizer Summarizer
	builder    Builder
	store      storage.Storage
	indexer    Indexer

	downloadsDir string
	reportsDir   string
	fileKinds    []models.FileKind
	logger       *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIndexer sets the report index. Without one, reports are persisted but
// not searchable.
func WithIndexer(idx Indexer) Option {
	return func(r *Runner) {
		r.indexer = idx
	}
}

// NewRunner creates a Runner. fileKinds selects which attachment formats are
// downloaded.
func NewRunner(scraper Scraper, summarizer Summarizer, builder Builder, store storage.Storage, downloadsDir, reportsDir string, fileKinds []models.FileKind, opts ...Option) *Runner {
	r := &Runner{
		scraper:      scraper,
		summarizer:   summarizer,
		builder:      builder,
		store:        store,
		downloadsDir: downloadsDir,
		reportsDir:   reportsDir,
		fileKinds:    fileKinds,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one job over the given date range and returns the persisted
// collective report. The execution row is always finished, as success or
// failure, before Run returns.
func (r *Runner) Run(ctx context.Context, jobCfg config.JobConfig, dateFrom, dateTo string) (*models.CollectiveReport, error) {
	jobName := jobCfg.Name
	if jobName == "" {
		jobName = "adhoc-" + jobCfg.Company
	}

	execID, err := r.store.StartJobExecution(ctx, jobName)
	if err != nil {
		return nil, fmt.Errorf("start job execution: %w", err)
	}

	report, runErr := r.run(ctx, jobCfg, jobName, dateFrom, dateTo, execID)
	if runErr != nil {
		finish := &models.JobExecution{ID: execID, Status: models.JobStatusFailed, Error: runErr.Error()}
		if report != nil {
			finish.ReportID = report.ID
		}
		if err := r.store.FinishJobExecution(ctx, finish); err != nil {
			r.logger.Warn("failed to record job failure", zap.Error(err))
		}
		return nil, runErr
	}
	return report, nil
}

func (r *Runner) run(ctx context.Context, jobCfg config.JobConfig, jobName, dateFrom, dateTo string, execID int64) (*models.CollectiveReport, error) {
	filings, err := r.scraper.FetchFilings(ctx, scrape.Query{
		Company:     jobCfg.Company,
		Limit:       jobCfg.Limit,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		ReportTypes: jobCfg.ReportTypes,
		Categories:  jobCfg.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch filings: %w", err)
	}
	if _, err := r.store.SaveFilings(ctx, filings); err != nil {
		return nil, fmt.Errorf("save filings: %w", err)
	}
	r.logger.Info("scraped filings",
		zap.String("job", jobName),
		zap.String("company", jobCfg.Company),
		zap.Int("filings", len(filings)))

	docs, err := r.downloadAttachments(ctx, jobCfg.Company, filings)
	if err != nil {
		return nil, err
	}

	results, err := r.summarizer.SummarizeAll(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("summarize batch: %w", err)
	}

	var summaries []models.DocumentSummary
	var failures []models.SummaryFailure
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, models.SummaryFailure{FileName: res.FileName, Reason: res.Err.Error()})
			continue
		}
		summaries = append(summaries, *res.Summary)
		if res.Summary.DocumentHash != "" {
			if err := r.store.MarkFileSummarized(ctx, res.Summary.DocumentHash, res.Summary.Text); err != nil {
				r.logger.Warn("failed to mark file summarized",
					zap.String("file", res.FileName),
					zap.Error(err))
			}
		}
	}

	meta := models.RunMetadata{
		JobName:   jobCfg.Name,
		Company:   jobCfg.Company,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Requested: len(docs),
	}
	report, err := r.builder.Build(ctx, meta, summaries, failures, filings)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	if r.reportsDir != "" {
		path, err := r.writeReportFile(jobName, report)
		if err != nil {
			return nil, err
		}
		report.FilePath = path
	}
	if err := r.store.SaveReport(ctx, report); err != nil {
		return report, fmt.Errorf("save report: %w", err)
	}
	if r.indexer != nil {
		if err := r.indexer.Index(report); err != nil {
			r.logger.Warn("failed to index report",
				zap.String("report", report.ID),
				zap.Error(err))
		}
	}

	err = r.store.FinishJobExecution(ctx, &models.JobExecution{
		ID:                 execID,
		Status:             models.JobStatusSuccess,
		ReportsFound:       len(filings),
		DocumentsProcessed: len(summaries),
		ReportID:           report.ID,
	})
	if err != nil {
		return report, fmt.Errorf("finish job execution: %w", err)
	}

	r.logger.Info("job finished",
		zap.String("job", jobName),
		zap.String("report", report.ID),
		zap.Int("documents", len(summaries)),
		zap.Int("failures", len(failures)))
	return report, nil
}

// downloadAttachments fetches attachments for every filing, skipping content
// already in the registry, and returns the new documents ready to summarize.
func (r *Runner) downloadAttachments(ctx context.Context, company string, filings []models.Filing) ([]models.SourceDocument, error) {
	if len(r.fileKinds) == 0 {
		return nil, nil
	}
	companyDir := filepath.Join(r.downloadsDir, company)
	if err := os.MkdirAll(companyDir, 0755); err != nil {
		return nil, fmt.Errorf("create downloads directory: %w", err)
	}

	var docs []models.SourceDocument
	for i, filing := range filings {
		attachments, err := r.scraper.Attachments(ctx, filing.Link, r.fileKinds)
		if err != nil {
			r.logger.Warn("failed to list attachments",
				zap.String("filing", filing.Link),
				zap.Error(err))
			continue
		}
		for j, att := range attachments {
			data, err := r.scraper.Download(ctx, att)
			if err != nil {
				r.logger.Warn("failed to download attachment",
					zap.String("attachment", att.Name),
					zap.Error(err))
				continue
			}
			hash := fileid.ContentHash(data)
			exists, err := r.store.FileExistsByHash(ctx, hash)
			if err != nil {
				return nil, fmt.Errorf("check file hash: %w", err)
			}
			if exists {
				r.logger.Debug("skipping known attachment", zap.String("attachment", att.Name))
				continue
			}

			fileName := attachmentFileName(company, i+1, j+1, att.Name)
			path := filepath.Join(companyDir, fileName)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return nil, fmt.Errorf("write attachment: %w", err)
			}
			kind := models.KindForPath(att.Name)
			if err := r.store.SaveDownloadedFile(ctx, &models.DownloadedFile{
				Company:  company,
				FileName: fileName,
				Path:     path,
				Kind:     kind,
				Size:     int64(len(data)),
				Hash:     hash,
			}); err != nil {
				return nil, fmt.Errorf("register downloaded file: %w", err)
			}
			docs = append(docs, models.SourceDocument{
				Path:     path,
				FileName: fileName,
				Company:  company,
				Kind:     kind,
				Hash:     hash,
				Size:     int64(len(data)),
			})
		}
	}
	return docs, nil
}

// writeReportFile writes the rendered markdown next to previous runs of the
// same job.
func (r *Runner) writeReportFile(jobName string, report *models.CollectiveReport) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.md", jobName, report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(r.reportsDir, name)
	if err := os.WriteFile(path, []byte(report.Rendered), 0644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

var spaceRuns = regexp.MustCompile(`\s+`)

// attachmentFileName builds the on-disk name for a downloaded attachment,
// keeping the filing and attachment ordinals so duplicates between filings
// stay distinguishable.
func attachmentFileName(company string, filingNo, fileNo int, title string) string {
	title = strings.TrimSpace(spaceRuns.ReplaceAllString(title, " "))
	return fmt.Sprintf("%s report %d file %d %s", company, filingNo, fileNo, title)
}
