package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/fileid"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/storage"
)

// inboxCompany labels files dropped directly into a root, outside any
// company subfolder.
const inboxCompany = "INBOX"

// DocumentSummarizer produces a summary for one source document.
type DocumentSummarizer interface {
	Summarize(ctx context.Context, doc models.SourceDocument) (*models.DocumentSummary, error)
}

// Processor summarizes one inbox file and records it in the downloaded file
// registry. Files whose content hash is already registered are skipped.
type Processor struct {
	summarizer DocumentSummarizer
	store      storage.Storage
	roots      []string
	logger     *zap.Logger
}

// NewProcessor creates a Processor. roots are the inbox roots, used to derive
// the company name from a file's subfolder.
func NewProcessor(summarizer DocumentSummarizer, store storage.Storage, roots []string, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		summarizer: summarizer,
		store:      store,
		roots:      roots,
		logger:     logger,
	}
}

// Process summarizes the file at path. Returns nil when the file was skipped
// as a duplicate.
func (p *Processor) Process(ctx context.Context, path string) error {
	hash, err := fileid.FileContentHash(path)
	if err != nil {
		return fmt.Errorf("hash inbox file: %w", err)
	}
	exists, err := p.store.FileExistsByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("check file hash: %w", err)
	}
	if exists {
		p.logger.Debug("skipping known inbox file", zap.String("path", path))
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat inbox file: %w", err)
	}

	company := p.companyFor(path)
	doc := models.SourceDocument{
		Path:     path,
		FileName: filepath.Base(path),
		Company:  company,
		Kind:     models.KindForPath(path),
		Hash:     hash,
		Size:     info.Size(),
	}
	summary, err := p.summarizer.Summarize(ctx, doc)
	if err != nil {
		return fmt.Errorf("summarize inbox file: %w", err)
	}

	// The hash is registered only once a summary exists, so a file that
	// failed (model down, corrupt PDF) is picked up again on the next event.
	if err := p.store.SaveDownloadedFile(ctx, &models.DownloadedFile{
		Company:  company,
		FileName: doc.FileName,
		Path:     path,
		Kind:     doc.Kind,
		Size:     doc.Size,
		Hash:     hash,
	}); err != nil {
		return fmt.Errorf("register inbox file: %w", err)
	}
	if err := p.store.MarkFileSummarized(ctx, hash, summary.Text); err != nil {
		return fmt.Errorf("mark file summarized: %w", err)
	}
	p.logger.Info("inbox file summarized",
		zap.String("file", doc.FileName),
		zap.String("company", company))
	return nil
}

// companyFor derives the company from the first path element under the inbox
// root the file lives in.
func (p *Processor) companyFor(path string) string {
	clean := filepath.Clean(path)
	for _, root := range p.roots {
		rel, err := filepath.Rel(filepath.Clean(root), clean)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) > 1 {
			return parts[0]
		}
		return inboxCompany
	}
	return inboxCompany
}
