package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/gpwdigest/data/gpwdigest.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/gpwdigest/data/indices/reports"
	}
	if cfg.Storage.DownloadsDir == "" {
		cfg.Storage.DownloadsDir = "/usr/local/var/gpwdigest/data/reports"
	}
	if cfg.Storage.ReportsDir == "" {
		cfg.Storage.ReportsDir = "/usr/local/var/gpwdigest/data/summary_reports"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3.2:latest"
	}
	if cfg.Ollama.EmbedModel == "" {
		cfg.Ollama.EmbedModel = "nomic-embed-text"
	}
	if cfg.Ollama.ContextWindow == 0 {
		cfg.Ollama.ContextWindow = 4096
	}
	if cfg.Ollama.TimeoutSeconds == 0 {
		cfg.Ollama.TimeoutSeconds = 300
	}
	if cfg.Summarize.ChunkSize == 0 {
		cfg.Summarize.ChunkSize = 2000
	}
	// Overlap defaults to 0, matching the splitter settings the summaries
	// were tuned with.
	if cfg.Summarize.Clusters == 0 {
		cfg.Summarize.Clusters = 5
	}
	if cfg.Scrape.BaseURL == "" {
		cfg.Scrape.BaseURL = "https://www.gpw.pl"
	}
	if cfg.Scrape.FileTypes == nil {
		cfg.Scrape.FileTypes = []string{"pdf", "html"}
	}
	if cfg.Scrape.ReportTypes == nil {
		cfg.Scrape.ReportTypes = []string{"current", "quarterly", "semi-annual", "annual"}
	}
	if cfg.Scrape.Categories == nil {
		cfg.Scrape.Categories = []string{"ESPI", "EBI"}
	}
	if cfg.Scrape.Limit == 0 {
		cfg.Scrape.Limit = 20
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".html", ".htm", ".docx", ".xlsx", ".txt"}
	}
}
