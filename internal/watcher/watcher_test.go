package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestInboxDebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()

	var seen []string
	var mu sync.Mutex
	w := NewInbox([]string{dir}, []string{".pdf", ".html"}, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "raport.pdf"), "pdf bytes")
	writeFile(t, filepath.Join(dir, "notatka.txt"), "ignored")
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !strings.HasSuffix(seen[0], "raport.pdf") {
		t.Errorf("seen = %v", seen)
	}
}

func TestInboxNewCompanyFolder(t *testing.T) {
	dir := t.TempDir()

	var seen []string
	var mu sync.Mutex
	w := NewInbox([]string{dir}, []string{".pdf"}, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	folder := filepath.Join(dir, "CDPROJEKT")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(folder, "raport.pdf"), "pdf bytes")
	time.Sleep(800 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, p := range seen {
		if strings.HasSuffix(p, "raport.pdf") {
			found = true
		}
	}
	if !found {
		t.Errorf("raport.pdf not processed, seen = %v", seen)
	}
}

func TestInboxSyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stary.pdf"), "pdf")
	writeFile(t, filepath.Join(dir, "pomin.xyz"), "x")

	var seen []string
	var mu sync.Mutex
	w := NewInbox([]string{dir}, []string{".pdf"}, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !strings.HasSuffix(seen[0], "stary.pdf") {
		t.Errorf("seen = %v", seen)
	}
}

func TestInboxStartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox", "drop")

	w := NewInbox([]string{root}, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/raport.pdf", []string{".pdf"}, true},
		{"/a/raport.PDF", []string{"pdf"}, true},
		{"/a/raport.docx", []string{".pdf"}, false},
		{"/a/plik", nil, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.pdf", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		if got := inDir(tt.dir, tt.path); got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
