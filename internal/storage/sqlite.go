// SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS filings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		date TEXT NOT NULL,
		title TEXT NOT NULL,
		report_type TEXT,
		category TEXT,
		exchange_rate REAL,
		rate_change REAL,
		link TEXT NOT NULL UNIQUE,
		scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_filings_company ON filings(company);
	CREATE INDEX IF NOT EXISTS idx_filings_date ON filings(date);

	CREATE TABLE IF NOT EXISTS downloaded_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		file_name TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		size INTEGER NOT NULL,
		md5_hash TEXT NOT NULL UNIQUE,
		summarized INTEGER NOT NULL DEFAULT 0,
		summary_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_company ON downloaded_files(company);

	CREATE TABLE IF NOT EXISTS collective_reports (
		id TEXT PRIMARY KEY,
		job_name TEXT,
		company TEXT NOT NULL,
		date_from TEXT,
		date_to TEXT,
		narrative TEXT NOT NULL,
		rendered TEXT NOT NULL,
		preview TEXT NOT NULL,
		report_count INTEGER NOT NULL,
		document_count INTEGER NOT NULL,
		model TEXT NOT NULL,
		summaries TEXT,
		failures TEXT,
		filings TEXT,
		file_path TEXT,
		generated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_company ON collective_reports(company);
	CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON collective_reports(generated_at);

	CREATE TABLE IF NOT EXISTS job_executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_name TEXT NOT NULL,
		status TEXT NOT NULL,
		reports_found INTEGER NOT NULL DEFAULT 0,
		documents_processed INTEGER NOT NULL DEFAULT 0,
		report_id TEXT,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_executions_job ON job_executions(job_name, started_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveFilings inserts filings, skipping links already recorded. Returns the
// number of newly inserted rows.
func (s *SQLiteStorage) SaveFilings(ctx context.Context, filings []models.Filing) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO filings
		 (company, date, title, report_type, category, exchange_rate, rate_change, link, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for _, f := range filings {
		scrapedAt := f.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = now
		}
		res, err := stmt.ExecContext(ctx,
			f.Company, f.Date, f.Title, f.ReportType, f.Category,
			f.ExchangeRate, f.RateChange, f.Link, scrapedAt)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, tx.Commit()
}

// ListFilings returns the most recently scraped filings, optionally filtered
// by company.
func (s *SQLiteStorage) ListFilings(ctx context.Context, company string, limit int) ([]models.Filing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, date, title, report_type, category, exchange_rate, rate_change, link, scraped_at
		 FROM filings
		 WHERE (? = '' OR company = ?)
		 ORDER BY scraped_at DESC, id DESC LIMIT ?`,
		company, company, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var filings []models.Filing
	for rows.Next() {
		var f models.Filing
		if err := rows.Scan(&f.ID, &f.Company, &f.Date, &f.Title, &f.ReportType, &f.Category,
			&f.ExchangeRate, &f.RateChange, &f.Link, &f.ScrapedAt); err != nil {
			return nil, err
		}
		filings = append(filings, f)
	}
	return filings, rows.Err()
}

// FileExistsByHash reports whether a file with the given content hash was
// already downloaded.
func (s *SQLiteStorage) FileExistsByHash(ctx context.Context, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM downloaded_files WHERE md5_hash = ?`, hash).Scan(&count)
	return count > 0, err
}

// SaveDownloadedFile records one downloaded attachment.
func (s *SQLiteStorage) SaveDownloadedFile(ctx context.Context, file *models.DownloadedFile) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO downloaded_files (company, file_name, path, kind, size, md5_hash, summarized, summary_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.Company, file.FileName, file.Path, string(file.Kind), file.Size,
		file.Hash, file.Summarized, file.SummaryText, file.CreatedAt)
	if err != nil {
		return err
	}
	file.ID, _ = res.LastInsertId()
	return nil
}

// MarkFileSummarized stores the summary text for a file and flags it done.
func (s *SQLiteStorage) MarkFileSummarized(ctx context.Context, hash, summaryText string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE downloaded_files SET summarized = 1, summary_text = ? WHERE md5_hash = ?`,
		summaryText, hash)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("downloaded file not found: %s", hash)
	}
	return nil
}

// ListDownloadedFiles returns the most recent downloads, optionally filtered
// by company.
func (s *SQLiteStorage) ListDownloadedFiles(ctx context.Context, company string, limit int) ([]models.DownloadedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, file_name, path, kind, size, md5_hash, summarized, summary_text, created_at
		 FROM downloaded_files
		 WHERE (? = '' OR company = ?)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		company, company, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.DownloadedFile
	for rows.Next() {
		var f models.DownloadedFile
		var kind string
		var summaryText sql.NullString
		if err := rows.Scan(&f.ID, &f.Company, &f.FileName, &f.Path, &kind, &f.Size,
			&f.Hash, &f.Summarized, &summaryText, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Kind = models.FileKind(kind)
		f.SummaryText = summaryText.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// SaveReport persists a collective report. Summaries, failures, and filings
// travel as JSON columns; reports are immutable once written.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report *models.CollectiveReport) error {
	summariesJSON, err := json.Marshal(report.Summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal summaries: %w", err)
	}
	failuresJSON, err := json.Marshal(report.Failures)
	if err != nil {
		return fmt.Errorf("failed to marshal failures: %w", err)
	}
	filingsJSON, err := json.Marshal(report.Filings)
	if err != nil {
		return fmt.Errorf("failed to marshal filings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collective_reports
		 (id, job_name, company, date_from, date_to, narrative, rendered, preview,
		  report_count, document_count, model, summaries, failures, filings, file_path, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.JobName, report.Company, report.DateFrom, report.DateTo,
		report.Narrative, report.Rendered, report.Preview,
		report.ReportCount, report.DocumentCount, report.Model,
		string(summariesJSON), string(failuresJSON), string(filingsJSON),
		report.FilePath, report.GeneratedAt)
	return err
}

// GetReport returns a report by ID, including its summaries and filings.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*models.CollectiveReport, error) {
	var r models.CollectiveReport
	var summariesJSON, failuresJSON, filingsJSON, filePath sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, job_name, company, date_from, date_to, narrative, rendered, preview,
		        report_count, document_count, model, summaries, failures, filings, file_path, generated_at
		 FROM collective_reports WHERE id = ?`, id,
	).Scan(&r.ID, &r.JobName, &r.Company, &r.DateFrom, &r.DateTo, &r.Narrative, &r.Rendered, &r.Preview,
		&r.ReportCount, &r.DocumentCount, &r.Model, &summariesJSON, &failuresJSON, &filingsJSON, &filePath, &r.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	r.FilePath = filePath.String
	if summariesJSON.String != "" {
		if err := json.Unmarshal([]byte(summariesJSON.String), &r.Summaries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summaries: %w", err)
		}
	}
	if failuresJSON.String != "" {
		if err := json.Unmarshal([]byte(failuresJSON.String), &r.Failures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}
	if filingsJSON.String != "" {
		if err := json.Unmarshal([]byte(filingsJSON.String), &r.Filings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal filings: %w", err)
		}
	}
	return &r, nil
}

// ListReports returns report headers newest first, optionally filtered by
// company. The JSON detail columns are not loaded; use GetReport for those.
func (s *SQLiteStorage) ListReports(ctx context.Context, company string, limit int) ([]models.CollectiveReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_name, company, date_from, date_to, preview,
		        report_count, document_count, model, file_path, generated_at
		 FROM collective_reports
		 WHERE (? = '' OR company = ?)
		 ORDER BY generated_at DESC LIMIT ?`,
		company, company, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.CollectiveReport
	for rows.Next() {
		var r models.CollectiveReport
		var filePath sql.NullString
		if err := rows.Scan(&r.ID, &r.JobName, &r.Company, &r.DateFrom, &r.DateTo, &r.Preview,
			&r.ReportCount, &r.DocumentCount, &r.Model, &filePath, &r.GeneratedAt); err != nil {
			return nil, err
		}
		r.FilePath = filePath.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// StartJobExecution records the start of a job run and returns its row ID.
func (s *SQLiteStorage) StartJobExecution(ctx context.Context, jobName string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO job_executions (job_name, status, started_at) VALUES (?, ?, ?)`,
		jobName, models.JobStatusRunning, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishJobExecution records the outcome of a job run.
func (s *SQLiteStorage) FinishJobExecution(ctx context.Context, exec *models.JobExecution) error {
	if exec.FinishedAt.IsZero() {
		exec.FinishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE job_executions
		 SET status = ?, reports_found = ?, documents_processed = ?, report_id = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		exec.Status, exec.ReportsFound, exec.DocumentsProcessed, exec.ReportID, exec.Error, exec.FinishedAt, exec.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("job execution not found: %d", exec.ID)
	}
	return nil
}

// ListJobExecutions returns recent executions newest first, optionally
// filtered by job name.
func (s *SQLiteStorage) ListJobExecutions(ctx context.Context, jobName string, limit int) ([]models.JobExecution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_name, status, reports_found, documents_processed, report_id, error, started_at, finished_at
		 FROM job_executions
		 WHERE (? = '' OR job_name = ?)
		 ORDER BY started_at DESC, id DESC LIMIT ?`,
		jobName, jobName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []models.JobExecution
	for rows.Next() {
		var e models.JobExecution
		var reportID, errMsg sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&e.ID, &e.JobName, &e.Status, &e.ReportsFound, &e.DocumentsProcessed,
			&reportID, &errMsg, &e.StartedAt, &finished); err != nil {
			return nil, err
		}
		e.ReportID = reportID.String
		e.Error = errMsg.String
		e.FinishedAt = finished.Time
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

// CountReports returns the total number of collective reports.
func (s *SQLiteStorage) CountReports(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collective_reports`).Scan(&count)
	return count, err
}

// CountDownloadedFiles returns the total number of downloaded files.
func (s *SQLiteStorage) CountDownloadedFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloaded_files`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
