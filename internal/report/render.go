package report

import (
	"fmt"
	"strings"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// render produces the markdown document for a collective report. Sections
// appear in a fixed order so rendered reports diff cleanly between runs.
func render(rpt *models.CollectiveReport, requested int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Raport GPW - %s\n\n", rpt.Company)

	fmt.Fprintf(&b, "- Wygenerowano: %s\n", rpt.GeneratedAt.Format("2006-01-02 15:04:05"))
	if rpt.DateFrom != "" || rpt.DateTo != "" {
		fmt.Fprintf(&b, "- Zakres: %s - %s\n", rpt.DateFrom, rpt.DateTo)
	}
	if rpt.JobName != "" {
		fmt.Fprintf(&b, "- Zadanie: %s\n", rpt.JobName)
	}
	fmt.Fprintf(&b, "- Model: %s\n", rpt.Model)
	fmt.Fprintf(&b, "- Dokumenty: %d przetworzone z %d pobranych\n", rpt.DocumentCount, requested)
	if len(rpt.Failures) > 0 {
		b.WriteString("- Nieprzetworzone dokumenty:\n")
		for _, f := range rpt.Failures {
			fmt.Fprintf(&b, "  - %s: %s\n", f.FileName, f.Reason)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Podsumowanie zbiorcze\n\n")
	b.WriteString(rpt.Narrative)
	b.WriteString("\n\n")

	if len(rpt.Filings) > 0 {
		b.WriteString("## Raporty giełdowe\n\n")
		b.WriteString("| Data | Tytuł | Typ | Kategoria | Kurs | Zmiana |\n")
		b.WriteString("|------|-------|-----|-----------|------|--------|\n")
		for _, f := range rpt.Filings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f | %.2f%% |\n",
				f.Date, escapeCell(f.Title), f.ReportType, f.Category, f.ExchangeRate, f.RateChange)
		}
		b.WriteString("\n")
	}

	if len(rpt.Summaries) > 0 {
		b.WriteString("## Streszczenia dokumentów\n\n")
		for i, s := range rpt.Summaries {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, s.FileName)
			fmt.Fprintf(&b, "#### Model: %s | Fragmenty: %d/%d ####\n\n", s.Model, s.ExcerptCount, s.ChunkCount)
			b.WriteString(s.Text)
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// renderMeta produces the markdown document for a meta report.
func renderMeta(meta *models.MetaReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Raport długoterminowy - %s\n\n", meta.Company)
	fmt.Fprintf(&b, "- Wygenerowano: %s\n", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Model: %s\n", meta.Model)
	fmt.Fprintf(&b, "- Raporty źródłowe: %d\n\n", meta.ReportCount)
	b.WriteString("## Podsumowanie\n\n")
	b.WriteString(meta.Narrative)
	b.WriteString("\n")
	return b.String()
}

// escapeCell keeps filing titles from breaking the markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
