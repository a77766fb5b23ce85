// Package cli provides output formatting for the gpwdigest command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/pkg/utils"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const previewLen = 200

// WriteReportList writes report summaries to w in the given format.
func WriteReportList(w io.Writer, reports []models.CollectiveReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, reports)
	}
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports.")
		return nil
	}
	fmt.Fprintf(w, "\n%d report(s)\n\n", len(reports))
	for i := range reports {
		writeReportHeader(w, &reports[i])
		fmt.Fprintln(w)
	}
	return nil
}

// WriteReport writes one full report. Text format prints the rendered
// markdown document.
func WriteReport(w io.Writer, report *models.CollectiveReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	if report.Rendered != "" {
		fmt.Fprintln(w, report.Rendered)
		return nil
	}
	writeReportHeader(w, report)
	return nil
}

func writeReportHeader(w io.Writer, report *models.CollectiveReport) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "ID: %s\n", report.ID)
	fmt.Fprintf(w, "Company: %s", report.Company)
	if report.JobName != "" {
		fmt.Fprintf(w, " | Job: %s", report.JobName)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Generated: %s | Filings: %d | Documents: %d | Model: %s\n",
		report.GeneratedAt.Format("2006-01-02 15:04"),
		report.ReportCount, report.DocumentCount, report.Model)
	if report.Preview != "" {
		fmt.Fprintf(w, "\n%s\n", Truncate(report.Preview, previewLen))
	}
}

// SearchResult pairs a matched report with its relevance score.
type SearchResult struct {
	Score  float64                  `json:"score"`
	Report *models.CollectiveReport `json:"report"`
}

// WriteSearchResults writes search hits to w in the given format.
func WriteSearchResults(w io.Writer, query string, results []SearchResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{
			"query":   query,
			"results": results,
			"count":   len(results),
		})
	}
	fmt.Fprintf(w, "\nFound %d report(s) for %q\n\n", len(results), query)
	for _, res := range results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Score: %.4f\n", res.Score)
		writeReportHeader(w, res.Report)
		fmt.Fprintln(w)
	}
	return nil
}

// WriteExecutions writes job execution history to w in the given format.
func WriteExecutions(w io.Writer, execs []models.JobExecution, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, execs)
	}
	if len(execs) == 0 {
		fmt.Fprintln(w, "No executions.")
		return nil
	}
	for _, exec := range execs {
		fmt.Fprintf(w, "[%s] %s  %s  filings=%d documents=%d",
			exec.Status, exec.StartedAt.Format("2006-01-02 15:04:05"),
			exec.JobName, exec.ReportsFound, exec.DocumentsProcessed)
		if exec.ReportID != "" {
			fmt.Fprintf(w, " report=%s", exec.ReportID)
		}
		if exec.Error != "" {
			fmt.Fprintf(w, "\n  error: %s", exec.Error)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteModelList writes available model names to w in the given format.
func WriteModelList(w io.Writer, names []string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"models": names})
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No models available.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate shortens s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Ellipsize(s, maxLen)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
