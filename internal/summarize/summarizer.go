// Package summarize turns downloaded filings into per-document summaries via
// the extract, chunk, cluster, and generate pipeline.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/ollama"
)

// documentPrompt is the per-document summarization instruction. The wording
// is kept verbatim from the prompt the summaries were tuned on.
const documentPrompt = "Summarize this financial text form polish GPW stock in no more than 200 words and use financial language:\n\n%s, answer me in Polish language"

// Length tiers. Short filings get a one-cluster skim with a tight token
// budget, long periodic reports get more excerpts and room to answer.
const (
	shortDocMaxChunks = 2
	longDocMinChunks  = 40

	shortDocClusters = 1
	midDocClusters   = 5
	longDocClusters  = 9

	shortDocMaxTokens = 50
	midDocMaxTokens   = 600
	longDocMaxTokens  = 1200
)

// TextSource extracts plain text from a file on disk.
type TextSource interface {
	Extract(path string) (string, error)
}

// Chunker splits text into position-carrying chunks.
type Chunker interface {
	Chunk(text string) ([]models.Chunk, error)
}

// RepresentativeSelector picks at most k representative chunks.
type RepresentativeSelector interface {
	SelectRepresentatives(ctx context.Context, chunks []models.Chunk, k int) ([]models.Chunk, error)
}

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ollama.GenerateOptions) (string, error)
}

// Result is the outcome for one document in a batch. Exactly one of Summary
// and Err is set.
type Result struct {
	FileName string
	Summary  *models.DocumentSummary
	Err      error
}

// Summarizer runs the per-document pipeline. Per-document failures are
// reported as Result values so one broken PDF never aborts a batch; only an
// unavailable model does.
type Summarizer struct {
	source       TextSource
	chunker      Chunker
	selector     RepresentativeSelector
	llm          Generator
	model        string
	baseClusters int
	logger       *zap.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseClusters overrides the cluster count for the middle length tier.
// The single-cluster short tier and the long-document tier are fixed.
func WithBaseClusters(k int) Option {
	return func(s *Summarizer) {
		if k > 0 {
			s.baseClusters = k
		}
	}
}

// New creates a Summarizer. model names the generation model recorded on
// every summary.
func New(source TextSource, ch Chunker, selector RepresentativeSelector, llm Generator, model string, opts ...Option) *Summarizer {
	s := &Summarizer{
		source:       source,
		chunker:      ch,
		selector:     selector,
		llm:          llm,
		model:        model,
		baseClusters: midDocClusters,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize produces a summary for one document. When doc.Text is already
// populated the extraction step is skipped.
func (s *Summarizer) Summarize(ctx context.Context, doc models.SourceDocument) (*models.DocumentSummary, error) {
	text := doc.Text
	if text == "" {
		extracted, err := s.source.Extract(doc.Path)
		if err != nil {
			return nil, err
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", models.ErrExtraction, doc.FileName)
	}

	chunks, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, err
	}

	clusters, maxTokens := s.tierFor(len(chunks))
	s.logger.Debug("summarizing document",
		zap.String("file", doc.FileName),
		zap.Int("chunks", len(chunks)),
		zap.Int("clusters", clusters))

	reps, err := s.selector.SelectRepresentatives(ctx, chunks, clusters)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(reps))
	for i, r := range reps {
		parts[i] = r.Text
	}
	prompt := fmt.Sprintf(documentPrompt, strings.Join(parts, "\n\n"))

	summary, err := s.llm.Generate(ctx, prompt, ollama.GenerateOptions{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary for %s: %w", doc.FileName, err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("empty summary for %s", doc.FileName)
	}

	return &models.DocumentSummary{
		DocumentHash: doc.Hash,
		FileName:     doc.FileName,
		Company:      doc.Company,
		Text:         summary,
		Model:        s.model,
		ChunkCount:   len(chunks),
		ExcerptCount: len(reps),
		GeneratedAt:  time.Now(),
	}, nil
}

// SummarizeAll processes docs in order, collecting one Result per document.
// It returns a non-nil error only when the model becomes unavailable, in
// which case the results gathered so far accompany the error.
func (s *Summarizer) SummarizeAll(ctx context.Context, docs []models.SourceDocument) ([]Result, error) {
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		summary, err := s.Summarize(ctx, doc)
		if err != nil {
			if errors.Is(err, models.ErrModelUnavailable) {
				return results, fmt.Errorf("model unavailable at %s: %w", doc.FileName, err)
			}
			s.logger.Warn("document failed",
				zap.String("file", doc.FileName),
				zap.Error(err))
			results = append(results, Result{FileName: doc.FileName, Err: err})
			continue
		}
		results = append(results, Result{FileName: doc.FileName, Summary: summary})
	}
	return results, nil
}

// tierFor maps a document's chunk count to its cluster count and generation
// token budget.
func (s *Summarizer) tierFor(chunkCount int) (clusters, maxTokens int) {
	switch {
	case chunkCount <= shortDocMaxChunks:
		return shortDocClusters, shortDocMaxTokens
	case chunkCount >= longDocMinChunks:
		return longDocClusters, longDocMaxTokens
	default:
		return s.baseClusters, midDocMaxTokens
	}
}
