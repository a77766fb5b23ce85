// Package report synthesizes collective reports from per-document summaries
// and renders them as markdown.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/ollama"
	"github.com/xHezuSx/gpwdigest/pkg/utils"
)

// previewRunes is how much of the narrative the report listing carries.
const previewRunes = 500

// collectiveMaxTokens is the generation budget for the synthesis call.
const collectiveMaxTokens = 1500

// collectivePrompt asks for one synthesis across all individual summaries.
// The wording is kept verbatim from the prompt the reports were tuned on.
const collectivePrompt = `Na podstawie poniższych pojedynczych streszczeń raportów giełdowych dla firmy %s,
stwórz JEDNO ZBIORCZE PODSUMOWANIE (około 300-500 słów) które:

1. Wyciąga najważniejsze informacje ze wszystkich raportów
2. Identyfikuje kluczowe trendy i zmiany
3. Podaje konkretne liczby i fakty
4. Jest napisane profesjonalnym językiem finansowym
5. Odpowiada na pytanie: Jak wiedzie się firmie?

Pojedyncze streszczenia raportów:

%s

ZBIORCZY RAPORT (po polsku):`

// metaPrompt synthesizes across whole collective reports of one company.
const metaPrompt = `Na podstawie poniższych zbiorczych raportów okresowych dla firmy %s,
stwórz JEDNO PODSUMOWANIE DŁUGOTERMINOWE (około 300-500 słów) które opisuje,
jak sytuacja firmy zmieniała się w czasie, wskazuje trendy i podaje konkretne liczby.

Zbiorcze raporty:

%s

PODSUMOWANIE DŁUGOTERMINOWE (po polsku):`

// emptyRunNarrative is used when a run produced no summaries at all.
const emptyRunNarrative = "Nie przetworzono żadnych dokumentów w tym przebiegu."

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ollama.GenerateOptions) (string, error)
}

// Builder assembles collective reports. The synthesis model is only invoked
// when there are at least two summaries; zero summaries yield a fixed
// narrative and a single summary passes through unchanged.
type Builder struct {
	llm    Generator
	model  string
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder using llm with the given model for synthesis.
func NewBuilder(llm Generator, model string, opts ...Option) *Builder {
	b := &Builder{llm: llm, model: model, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build synthesizes a collective report for one run. An empty batch is not an
// error: the report records the run with a fixed narrative and no model call.
func (b *Builder) Build(ctx context.Context, meta models.RunMetadata, summaries []models.DocumentSummary, failures []models.SummaryFailure, filings []models.Filing) (*models.CollectiveReport, error) {
	narrative, err := b.narrative(ctx, meta.Company, summaries)
	if err != nil {
		return nil, err
	}

	rpt := &models.CollectiveReport{
		ID:            uuid.New().String(),
		JobName:       meta.JobName,
		Company:       meta.Company,
		DateFrom:      meta.DateFrom,
		DateTo:        meta.DateTo,
		Narrative:     narrative,
		Preview:       utils.TruncateRunes(narrative, previewRunes),
		ReportCount:   len(filings),
		DocumentCount: len(summaries),
		Model:         b.model,
		GeneratedAt:   time.Now(),
		Summaries:     summaries,
		Failures:      failures,
		Filings:       filings,
	}
	rpt.Rendered = render(rpt, meta.Requested)
	return rpt, nil
}

// BuildMeta synthesizes a long-horizon report across collective reports of
// one company. At least one source report is required.
func (b *Builder) BuildMeta(ctx context.Context, company string, reports []models.CollectiveReport) (*models.MetaReport, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: no reports to synthesize for %s", models.ErrInvalidInput, company)
	}

	var narrative string
	if len(reports) == 1 {
		narrative = reports[0].Narrative
	} else {
		var joined strings.Builder
		for i, r := range reports {
			fmt.Fprintf(&joined, "## Raport %d/%d (%s - %s) ##\n%s\n\n", i+1, len(reports), r.DateFrom, r.DateTo, r.Narrative)
		}
		prompt := fmt.Sprintf(metaPrompt, company, joined.String())
		text, err := b.llm.Generate(ctx, prompt, ollama.GenerateOptions{
			Model:       b.model,
			MaxTokens:   collectiveMaxTokens,
			Temperature: 0,
		})
		if err != nil {
			return nil, fmt.Errorf("generate meta narrative: %w", err)
		}
		narrative = strings.TrimSpace(text)
	}

	meta := &models.MetaReport{
		ID:          uuid.New().String(),
		Company:     company,
		Narrative:   narrative,
		Preview:     utils.TruncateRunes(narrative, previewRunes),
		ReportCount: len(reports),
		Model:       b.model,
		GeneratedAt: time.Now(),
	}
	meta.Rendered = renderMeta(meta)
	return meta, nil
}

func (b *Builder) narrative(ctx context.Context, company string, summaries []models.DocumentSummary) (string, error) {
	switch len(summaries) {
	case 0:
		return emptyRunNarrative, nil
	case 1:
		return summaries[0].Text, nil
	}

	var joined strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&joined, "## File %d/%d: %s ##\n%s\n\n", i+1, len(summaries), s.FileName, s.Text)
	}
	prompt := fmt.Sprintf(collectivePrompt, company, joined.String())

	b.logger.Debug("generating collective narrative",
		zap.String("company", company),
		zap.Int("summaries", len(summaries)))

	text, err := b.llm.Generate(ctx, prompt, ollama.GenerateOptions{
		Model:       b.model,
		MaxTokens:   collectiveMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("generate collective narrative: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty collective narrative for %s", company)
	}
	return text, nil
}
