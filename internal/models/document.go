// Package models defines core data structures for filings, documents, summaries, and reports.
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileKind identifies the format of a downloaded filing attachment.
type FileKind string

const (
	FileKindPDF   FileKind = "pdf"
	FileKindHTML  FileKind = "html"
	FileKindDOCX  FileKind = "docx"
	FileKindXLSX  FileKind = "xlsx"
	FileKindPlain FileKind = "plain"
)

// KindForPath returns the FileKind for a file name based on its extension.
func KindForPath(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FileKindPDF
	case ".html", ".htm":
		return FileKindHTML
	case ".docx":
		return FileKindDOCX
	case ".xlsx":
		return FileKindXLSX
	default:
		return FileKindPlain
	}
}

// SourceDocument is one downloaded filing attachment. Text is filled in by the
// extraction step and is immutable afterwards.
type SourceDocument struct {
	Path     string   `json:"path"`
	FileName string   `json:"file_name"`
	Company  string   `json:"company"`
	Kind     FileKind `json:"kind"`
	Hash     string   `json:"hash"`
	Size     int64    `json:"size"`
	Text     string   `json:"-"`
}

// Chunk is one segment of a document's extracted text. Start is the rune
// offset into the source text, so positions survive multi-byte characters.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// Filing is one disclosure entry scraped from the exchange listing.
type Filing struct {
	ID           int64     `json:"id,omitempty"`
	Company      string    `json:"company"`
	Date         string    `json:"date"`
	Title        string    `json:"title"`
	ReportType   string    `json:"report_type"`
	Category     string    `json:"category"`
	ExchangeRate float64   `json:"exchange_rate"`
	RateChange   float64   `json:"rate_change"`
	Link         string    `json:"link"`
	ScrapedAt    time.Time `json:"scraped_at,omitempty"`
}

// DownloadedFile is the registry record for one stored attachment,
// deduplicated by content hash.
type DownloadedFile struct {
	ID          int64     `json:"id,omitempty"`
	Company     string    `json:"company"`
	FileName    string    `json:"file_name"`
	Path        string    `json:"path"`
	Kind        FileKind  `json:"kind"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	Summarized  bool      `json:"summarized"`
	SummaryText string    `json:"summary_text,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
