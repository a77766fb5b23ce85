package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xHezuSx/gpwdigest/internal/chunker"
	"github.com/xHezuSx/gpwdigest/internal/cluster"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/ollama"
)

type fakeSource struct {
	texts map[string]string
}

func (f *fakeSource) Extract(path string) (string, error) {
	text, ok := f.texts[path]
	if !ok {
		return "", fmt.Errorf("%w: cannot parse %s", models.ErrExtraction, path)
	}
	return text, nil
}

type fakeGenerator struct {
	calls    []ollama.GenerateOptions
	prompts  []string
	response string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts ollama.GenerateOptions) (string, error) {
	f.calls = append(f.calls, opts)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func text(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString("Spółka odnotowała wzrost przychodów w trzecim kwartale. ")
	}
	return b.String()[:n]
}

func newTestSummarizer(gen *fakeGenerator, src TextSource) *Summarizer {
	if src == nil {
		src = &fakeSource{}
	}
	return New(src,
		chunker.New(1000, 200),
		cluster.NewSelector(cluster.NewMockEmbedder(32)),
		gen,
		"llama3.2:latest")
}

func TestSummarizeShortDocument(t *testing.T) {
	gen := &fakeGenerator{response: "Krótki raport o dywidendzie."}
	s := newTestSummarizer(gen, nil)

	doc := models.SourceDocument{FileName: "rb_12.pdf", Hash: "abc", Company: "CDPROJEKT", Text: text(800)}
	summary, err := s.Summarize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.ChunkCount != 1 || summary.ExcerptCount != 1 {
		t.Errorf("chunks=%d excerpts=%d, want 1/1", summary.ChunkCount, summary.ExcerptCount)
	}
	if len(gen.calls) != 1 || gen.calls[0].MaxTokens != 50 {
		t.Errorf("calls=%+v, want one call with MaxTokens 50", gen.calls)
	}
	if gen.calls[0].Temperature != 0 {
		t.Errorf("temperature=%v, want 0", gen.calls[0].Temperature)
	}
	if summary.Model != "llama3.2:latest" || summary.Company != "CDPROJEKT" || summary.DocumentHash != "abc" {
		t.Errorf("summary metadata wrong: %+v", summary)
	}
}

func TestSummarizeMidDocument(t *testing.T) {
	gen := &fakeGenerator{response: "Podsumowanie raportu okresowego."}
	s := newTestSummarizer(gen, nil)

	doc := models.SourceDocument{FileName: "q3.pdf", Text: text(12000)}
	summary, err := s.Summarize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.ChunkCount != 15 {
		t.Errorf("chunks=%d, want 15", summary.ChunkCount)
	}
	if summary.ExcerptCount < 1 || summary.ExcerptCount > 5 {
		t.Errorf("excerpts=%d, want 1..5", summary.ExcerptCount)
	}
	if gen.calls[0].MaxTokens != 600 {
		t.Errorf("MaxTokens=%d, want 600", gen.calls[0].MaxTokens)
	}
}

func TestSummarizeLongDocument(t *testing.T) {
	gen := &fakeGenerator{response: "Obszerne podsumowanie raportu rocznego."}
	s := newTestSummarizer(gen, nil)

	doc := models.SourceDocument{FileName: "annual.pdf", Text: text(33000)}
	summary, err := s.Summarize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.ChunkCount < 40 {
		t.Fatalf("chunks=%d, want >= 40", summary.ChunkCount)
	}
	if summary.ExcerptCount > 9 {
		t.Errorf("excerpts=%d, want <= 9", summary.ExcerptCount)
	}
	if gen.calls[0].MaxTokens != 1200 {
		t.Errorf("MaxTokens=%d, want 1200", gen.calls[0].MaxTokens)
	}
}

func TestSummarizeBaseClustersOverride(t *testing.T) {
	gen := &fakeGenerator{response: "Podsumowanie raportu."}
	s := New(&fakeSource{},
		chunker.New(1000, 200),
		cluster.NewSelector(cluster.NewMockEmbedder(32)),
		gen,
		"llama3.2:latest",
		WithBaseClusters(3))

	summary, err := s.Summarize(context.Background(), models.SourceDocument{FileName: "q3.pdf", Text: text(12000)})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.ChunkCount != 15 {
		t.Errorf("chunks=%d, want 15", summary.ChunkCount)
	}
	if summary.ExcerptCount < 1 || summary.ExcerptCount > 3 {
		t.Errorf("excerpts=%d, want 1..3 with base 3", summary.ExcerptCount)
	}
	if gen.calls[0].MaxTokens != 600 {
		t.Errorf("MaxTokens=%d, want 600", gen.calls[0].MaxTokens)
	}

	// The short and long tiers keep their fixed counts.
	short, err := s.Summarize(context.Background(), models.SourceDocument{FileName: "rb.txt", Text: text(800)})
	if err != nil {
		t.Fatalf("Summarize short: %v", err)
	}
	if short.ExcerptCount != 1 {
		t.Errorf("short excerpts=%d, want 1", short.ExcerptCount)
	}
}

func TestSummarizePromptWording(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	s := newTestSummarizer(gen, nil)

	if _, err := s.Summarize(context.Background(), models.SourceDocument{FileName: "a.txt", Text: text(500)}); err != nil {
		t.Fatal(err)
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "polish GPW stock") || !strings.Contains(prompt, "answer me in Polish language") {
		t.Errorf("prompt missing instruction: %q", prompt)
	}
	if !strings.Contains(prompt, "Spółka odnotowała") {
		t.Errorf("prompt missing excerpt text: %q", prompt)
	}
}

func TestSummarizeEmptyTextFails(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	src := &fakeSource{texts: map[string]string{"/scan.pdf": "   \n  "}}
	s := newTestSummarizer(gen, src)

	_, err := s.Summarize(context.Background(), models.SourceDocument{Path: "/scan.pdf", FileName: "scan.pdf"})
	if !errors.Is(err, models.ErrExtraction) {
		t.Errorf("err=%v, want ErrExtraction", err)
	}
	if len(gen.calls) != 0 {
		t.Error("model should not be called for empty documents")
	}
}

func TestSummarizeAllIsolatesPerDocumentFailures(t *testing.T) {
	gen := &fakeGenerator{response: "Streszczenie."}
	src := &fakeSource{texts: map[string]string{"/good.pdf": text(900)}}
	s := newTestSummarizer(gen, src)

	docs := []models.SourceDocument{
		{Path: "/good.pdf", FileName: "good.pdf"},
		{Path: "/corrupt.pdf", FileName: "corrupt.pdf"},
		{FileName: "inline.txt", Text: text(700)},
	}
	results, err := s.SummarizeAll(context.Background(), docs)
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Summary == nil {
		t.Errorf("good.pdf should succeed: %+v", results[0])
	}
	if results[1].Err == nil || !errors.Is(results[1].Err, models.ErrExtraction) {
		t.Errorf("corrupt.pdf should fail with ErrExtraction: %v", results[1].Err)
	}
	if results[2].Err != nil {
		t.Errorf("inline.txt should succeed: %v", results[2].Err)
	}
}

func TestSummarizeAllMixedSizes(t *testing.T) {
	gen := &fakeGenerator{response: "Streszczenie."}
	s := newTestSummarizer(gen, nil)

	docs := []models.SourceDocument{
		{FileName: "small.txt", Text: text(800)},
		{FileName: "medium.txt", Text: text(1500)},
		{FileName: "large.txt", Text: text(12000)},
	}
	results, err := s.SummarizeAll(context.Background(), docs)
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	wantChunks := []int{1, 2, 15}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("%s failed: %v", res.FileName, res.Err)
		}
		if res.Summary.ChunkCount != wantChunks[i] {
			t.Errorf("%s: chunks=%d, want %d", res.FileName, res.Summary.ChunkCount, wantChunks[i])
		}
	}
	// 1 and 2 chunks stay below the clustering threshold; the 15-chunk
	// document is reduced to at most 5 excerpts.
	if results[0].Summary.ExcerptCount != 1 || results[1].Summary.ExcerptCount != 2 {
		t.Errorf("small docs should keep all chunks: %d, %d",
			results[0].Summary.ExcerptCount, results[1].Summary.ExcerptCount)
	}
	if results[2].Summary.ExcerptCount > 5 {
		t.Errorf("large doc excerpts=%d, want <= 5", results[2].Summary.ExcerptCount)
	}
}

func TestSummarizeAllAbortsWhenModelUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: connection refused", models.ErrModelUnavailable)}
	s := newTestSummarizer(gen, nil)

	docs := []models.SourceDocument{
		{FileName: "a.txt", Text: text(600)},
		{FileName: "b.txt", Text: text(600)},
	}
	results, err := s.SummarizeAll(context.Background(), docs)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("err=%v, want ErrModelUnavailable", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results before abort, want 0", len(results))
	}
	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times, want 1", len(gen.calls))
	}
}
