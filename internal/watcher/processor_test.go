package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/storage"
)

type fakeSummarizer struct {
	calls []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, doc models.SourceDocument) (*models.DocumentSummary, error) {
	f.calls = append(f.calls, doc.FileName)
	return &models.DocumentSummary{
		DocumentHash: doc.Hash,
		FileName:     doc.FileName,
		Company:      doc.Company,
		Text:         "Streszczenie " + doc.FileName,
		Model:        "llama3.2:latest",
		GeneratedAt:  time.Now(),
	}, nil
}

func testProcessor(t *testing.T, roots []string) (*Processor, *fakeSummarizer, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "gpwdigest.db"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	summarizer := &fakeSummarizer{}
	return NewProcessor(summarizer, store, roots, nil), summarizer, store
}

func TestProcessRegistersAndSummarizes(t *testing.T) {
	root := t.TempDir()
	p, summarizer, store := testProcessor(t, []string{root})

	path := filepath.Join(root, "CDPROJEKT", "raport.txt")
	writeFile(t, path, "Treść raportu bieżącego.")
	if err := p.Process(context.Background(), path); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(summarizer.calls) != 1 {
		t.Fatalf("summarizer calls: %v", summarizer.calls)
	}

	files, err := store.ListDownloadedFiles(context.Background(), "CDPROJEKT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("registered files: %d", len(files))
	}
	if !files[0].Summarized || files[0].SummaryText == "" {
		t.Errorf("file not marked summarized: %+v", files[0])
	}
}

func TestProcessSkipsDuplicateContent(t *testing.T) {
	root := t.TempDir()
	p, summarizer, _ := testProcessor(t, []string{root})

	first := filepath.Join(root, "raport.txt")
	writeFile(t, first, "ta sama treść")
	if err := p.Process(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	copied := filepath.Join(root, "kopia.txt")
	writeFile(t, copied, "ta sama treść")
	if err := p.Process(context.Background(), copied); err != nil {
		t.Fatal(err)
	}
	if len(summarizer.calls) != 1 {
		t.Errorf("duplicate content summarized: %v", summarizer.calls)
	}
}

// outageSummarizer fails the first failures calls with ErrModelUnavailable,
// then succeeds.
type outageSummarizer struct {
	failures int
	calls    int
}

func (f *outageSummarizer) Summarize(ctx context.Context, doc models.SourceDocument) (*models.DocumentSummary, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("%w: connection refused", models.ErrModelUnavailable)
	}
	return &models.DocumentSummary{
		DocumentHash: doc.Hash,
		FileName:     doc.FileName,
		Company:      doc.Company,
		Text:         "Streszczenie po wznowieniu.",
		Model:        "llama3.2:latest",
		GeneratedAt:  time.Now(),
	}, nil
}

func TestProcessRetriesAfterModelOutage(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "gpwdigest.db"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	summarizer := &outageSummarizer{failures: 1}
	p := NewProcessor(summarizer, store, []string{root}, nil)

	path := filepath.Join(root, "CDPROJEKT", "raport.txt")
	writeFile(t, path, "Treść raportu bieżącego.")

	ctx := context.Background()
	if err := p.Process(ctx, path); !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("first attempt err=%v, want ErrModelUnavailable", err)
	}
	files, err := store.ListDownloadedFiles(ctx, "CDPROJEKT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("failed file must stay unregistered, got %+v", files)
	}

	if err := p.Process(ctx, path); err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if summarizer.calls != 2 {
		t.Errorf("summarizer calls=%d, want 2", summarizer.calls)
	}
	files, err = store.ListDownloadedFiles(ctx, "CDPROJEKT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || !files[0].Summarized {
		t.Errorf("file not registered as summarized after retry: %+v", files)
	}
}

func TestProcessMissingFile(t *testing.T) {
	root := t.TempDir()
	p, _, _ := testProcessor(t, []string{root})
	if err := p.Process(context.Background(), filepath.Join(root, "nie-ma.txt")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompanyFor(t *testing.T) {
	root := string(filepath.Separator) + filepath.Join("data", "inbox")
	p := &Processor{roots: []string{root}}

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "CDPROJEKT", "raport.pdf"), "CDPROJEKT"},
		{filepath.Join(root, "KGHM", "q2", "wyniki.pdf"), "KGHM"},
		{filepath.Join(root, "luzem.pdf"), "INBOX"},
		{string(filepath.Separator) + filepath.Join("tmp", "obcy.pdf"), "INBOX"},
	}
	for _, tt := range tests {
		if got := p.companyFor(tt.path); got != tt.want {
			t.Errorf("companyFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
