// Package config provides configuration loading and structs for GPW Digest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. Model settings are
// explicit values threaded into the gateway, summarizer, and report builder;
// nothing reads ambient state at call time.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Watch     WatchConfig     `yaml:"watch"`
	Jobs      []JobConfig     `yaml:"jobs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, the report search index, and
// the directories that hold downloaded attachments and rendered reports.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
	DownloadsDir string `yaml:"downloads_dir"`
	ReportsDir   string `yaml:"reports_dir"`
}

// OllamaConfig holds inference service settings. Temperature stays 0 so
// repeated runs over the same filings produce reproducible summaries.
type OllamaConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	EmbedModel     string  `yaml:"embed_model"`
	Temperature    float64 `yaml:"temperature"`
	ContextWindow  int     `yaml:"context_window"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (o *OllamaConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// SummarizeConfig holds chunking and excerpt-selection settings.
type SummarizeConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	Clusters     int `yaml:"clusters"`
}

// ScrapeConfig holds the exchange endpoints and default filters.
type ScrapeConfig struct {
	BaseURL     string   `yaml:"base_url"`
	FileTypes   []string `yaml:"file_types"`
	ReportTypes []string `yaml:"report_types"`
	Categories  []string `yaml:"categories"`
	Limit       int      `yaml:"limit"`
}

// WatchConfig holds inbox directory watch settings. Files dropped into these
// directories are summarized individually, outside scrape runs.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// JobConfig is one named recurring run; an external scheduler invokes
// "gpwdigest run --job <name>" with it.
type JobConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Company     string   `yaml:"company"`
	Limit       int      `yaml:"limit"`
	Model       string   `yaml:"model"`
	ReportTypes []string `yaml:"report_types"`
	Categories  []string `yaml:"categories"`
	Enabled     bool     `yaml:"enabled"`
}

// Job returns the job config with the given name, or nil.
func (c *Config) Job(name string) *JobConfig {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.DownloadsDir = expandPath(cfg.Storage.DownloadsDir, configDir)
	cfg.Storage.ReportsDir = expandPath(cfg.Storage.ReportsDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
