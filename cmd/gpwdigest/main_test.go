package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xHezuSx/gpwdigest/internal/cli"
	"github.com/xHezuSx/gpwdigest/internal/models"
)

func TestFileKinds(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  []models.FileKind
	}{
		{
			name:  "plain names",
			types: []string{"pdf", "html"},
			want:  []models.FileKind{models.FileKindPDF, models.FileKindHTML},
		},
		{
			name:  "dotted and mixed case",
			types: []string{".PDF", " docx "},
			want:  []models.FileKind{models.FileKindPDF, models.FileKindDOCX},
		},
		{
			name:  "unknown falls back to plain",
			types: []string{"txt"},
			want:  []models.FileKind{models.FileKindPlain},
		},
		{
			name:  "blank entries skipped",
			types: []string{"", ".", "xlsx"},
			want:  []models.FileKind{models.FileKindXLSX},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileKinds(tt.types)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fileKinds(%v) = %v, want %v", tt.types, got, tt.want)
			}
		})
	}
}

func TestChronological(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// Stored lists come back newest first.
	reports := []models.CollectiveReport{
		{ID: "c", GeneratedAt: base.AddDate(0, 2, 0)},
		{ID: "b", GeneratedAt: base.AddDate(0, 1, 0)},
		{ID: "a", GeneratedAt: base},
	}
	got := chronological(reports)
	for i := 1; i < len(got); i++ {
		if got[i].GeneratedAt.Before(got[i-1].GeneratedAt) {
			t.Fatalf("reports not oldest first: %s before %s", got[i].ID, got[i-1].ID)
		}
	}
	if got[0].ID != "a" || got[2].ID != "c" {
		t.Errorf("order = %s,%s,%s, want a,b,c", got[0].ID, got[1].ID, got[2].ID)
	}

	if single := chronological([]models.CollectiveReport{{ID: "x"}}); single[0].ID != "x" {
		t.Errorf("single report changed: %+v", single)
	}
}

func TestParseFormat(t *testing.T) {
	if format, ok := parseFormat("json"); !ok || format != cli.OutputJSON {
		t.Errorf("parseFormat(json) = %v, %v", format, ok)
	}
	if format, ok := parseFormat("text"); !ok || format != cli.OutputText {
		t.Errorf("parseFormat(text) = %v, %v", format, ok)
	}
	if _, ok := parseFormat("yaml"); ok {
		t.Error("parseFormat(yaml) should fail")
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}
