// Package main is the gpwdigest CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/chunker"
	"github.com/xHezuSx/gpwdigest/internal/cli"
	"github.com/xHezuSx/gpwdigest/internal/cluster"
	"github.com/xHezuSx/gpwdigest/internal/config"
	"github.com/xHezuSx/gpwdigest/internal/extract"
	"github.com/xHezuSx/gpwdigest/internal/fileid"
	"github.com/xHezuSx/gpwdigest/internal/index"
	"github.com/xHezuSx/gpwdigest/internal/job"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/ollama"
	"github.com/xHezuSx/gpwdigest/internal/report"
	"github.com/xHezuSx/gpwdigest/internal/scrape"
	"github.com/xHezuSx/gpwdigest/internal/server"
	"github.com/xHezuSx/gpwdigest/internal/storage"
	"github.com/xHezuSx/gpwdigest/internal/summarize"
	"github.com/xHezuSx/gpwdigest/internal/watcher"
	"github.com/xHezuSx/gpwdigest/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/gpwdigest/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "gpwdigest server" from the project dir picks up the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "run":
		runRun()
	case "summarize":
		runSummarize()
	case "reports":
		runReports()
	case "meta":
		runMeta()
	case "executions":
		runExecutions()
	case "models":
		runModels()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("gpwdigest version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, "")
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	inboxCtx, inboxCancel := context.WithCancel(context.Background())
	defer inboxCancel()
	var inbox *watcher.Inbox
	if len(cfg.Watch.Directories) > 0 {
		processor := watcher.NewProcessor(components.Summarizer, components.Storage, cfg.Watch.Directories, logger)
		inboxOpts := []watcher.Option{}
		if debugMode {
			inboxOpts = append(inboxOpts, watcher.WithLogger(logger))
		}
		inbox = watcher.NewInbox(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			func(path string) {
				if err := processor.Process(context.Background(), path); err != nil {
					logger.Warn("inbox file failed", zap.String("path", path), zap.Error(err))
				}
			},
			inboxOpts...,
		)
		if err := inbox.Start(inboxCtx); err != nil {
			logger.Fatal("Failed to start inbox watcher", zap.Error(err))
		}
		inbox.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Storage,
		components.Index,
		components.Runner,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	inboxCancel()
	if inbox != nil {
		inbox.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	jobName := fs.String("job", "", "named job from the config file")
	company := fs.String("company", "", "company to scrape (ad-hoc run)")
	limit := fs.Int("limit", 0, "max filings to fetch (ad-hoc run)")
	dateFrom := fs.String("date-from", "", "start date DD-MM-YYYY")
	dateTo := fs.String("date-to", "", "end date DD-MM-YYYY")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *jobName == "" && *company == "" {
		fmt.Println("Usage: gpwdigest run --job <name> | --company <name> [flags]")
		os.Exit(1)
	}
	format, ok := parseFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var jobCfg config.JobConfig
	if *jobName != "" {
		found := cfg.Job(*jobName)
		if found == nil {
			fmt.Printf("Job %q not found in config\n", *jobName)
			os.Exit(1)
		}
		jobCfg = *found
	} else {
		jobCfg = config.JobConfig{
			Company:     *company,
			Limit:       *limit,
			ReportTypes: cfg.Scrape.ReportTypes,
			Categories:  cfg.Scrape.Categories,
		}
		if jobCfg.Limit <= 0 {
			jobCfg.Limit = cfg.Scrape.Limit
		}
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, jobCfg.Model)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	reportOut, err := components.Runner.Run(context.Background(), jobCfg, *dateFrom, *dateTo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteReport(os.Stdout, reportOut, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSummarize() {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	company := fs.String("company", "", "company the document belongs to")
	model := fs.String("model", "", "override the generation model")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: gpwdigest summarize [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, *model)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}
	doc := models.SourceDocument{
		Path:     path,
		FileName: filepath.Base(path),
		Company:  *company,
		Kind:     models.KindForPath(path),
		Hash:     fileid.ContentHash(data),
		Size:     int64(len(data)),
	}
	summary, err := components.Summarizer.Summarize(context.Background(), doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Summarization failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n\n%s\n", summary.FileName, summary.Text)
}

func runReports() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: gpwdigest reports <list|show|search> [flags] [args]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("reports", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	company := fs.String("company", "", "filter by company")
	limit := fs.Int("limit", 20, "max results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[3:])

	format, ok := parseFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	switch sub {
	case "list":
		reports, err := store.ListReports(ctx, *company, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteReportList(os.Stdout, reports, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "show":
		if fs.NArg() < 1 {
			fmt.Println("Usage: gpwdigest reports show [flags] <report-id>")
			os.Exit(1)
		}
		rep, err := store.GetReport(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Report not found: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteReport(os.Stdout, rep, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "search":
		if fs.NArg() < 1 {
			fmt.Println("Usage: gpwdigest reports search [flags] <query>")
			os.Exit(1)
		}
		query := strings.TrimSpace(strings.Join(fs.Args(), " "))
		idx, err := index.NewReportIndex(cfg.Storage.IndexPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open report index: %v\n", err)
			os.Exit(1)
		}
		defer idx.Close()
		hits, err := idx.Search(query, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		results := make([]cli.SearchResult, 0, len(hits))
		for _, hit := range hits {
			rep, err := store.GetReport(ctx, hit.ID)
			if err != nil {
				continue
			}
			results = append(results, cli.SearchResult{Score: hit.Score, Report: rep})
		}
		if err := cli.WriteSearchResults(os.Stdout, query, results, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown reports subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runMeta() {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "how many recent reports to synthesize over")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: gpwdigest meta [flags] <company>")
		os.Exit(1)
	}
	company := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, "")
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	reports, err := components.Storage.ListReports(ctx, company, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List reports failed: %v\n", err)
		os.Exit(1)
	}
	if len(reports) == 0 {
		fmt.Printf("No stored reports for %s\n", company)
		os.Exit(1)
	}
	// List rows omit the narrative; fetch the full reports.
	full := make([]models.CollectiveReport, 0, len(reports))
	for i := range reports {
		rep, err := components.Storage.GetReport(ctx, reports[i].ID)
		if err != nil {
			continue
		}
		full = append(full, *rep)
	}
	meta, err := components.Builder.BuildMeta(ctx, company, chronological(full))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Meta report failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(meta.Rendered)
}

// chronological reverses a newest-first report list in place so the meta
// synthesis reads the runs oldest to newest.
func chronological(reports []models.CollectiveReport) []models.CollectiveReport {
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	return reports
}

func runExecutions() {
	fs := flag.NewFlagSet("executions", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	jobName := fs.String("job", "", "filter by job name")
	limit := fs.Int("limit", 20, "max results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, ok := parseFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	execs, err := store.ListJobExecutions(context.Background(), *jobName, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteExecutions(os.Stdout, execs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runModels() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: gpwdigest models <list|pull> [name]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[3:])

	format, ok := parseFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	client := ollama.NewClient(ollama.Config{
		BaseURL:       cfg.Ollama.BaseURL,
		Model:         cfg.Ollama.Model,
		EmbedModel:    cfg.Ollama.EmbedModel,
		ContextWindow: cfg.Ollama.ContextWindow,
		Timeout:       cfg.Ollama.Timeout(),
	})
	ctx := context.Background()

	switch sub {
	case "list":
		infos, err := client.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List models failed: %v\n", err)
			os.Exit(1)
		}
		names := make([]string, len(infos))
		for i, info := range infos {
			names[i] = info.Name
		}
		if err := cli.WriteModelList(os.Stdout, names, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "pull":
		if fs.NArg() < 1 {
			fmt.Println("Usage: gpwdigest models pull <name>")
			os.Exit(1)
		}
		name := fs.Arg(0)
		fmt.Printf("Pulling %s...\n", name)
		if err := client.Pull(ctx, name); err != nil {
			fmt.Fprintf(os.Stderr, "Pull failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Model pulled: %s\n", name)
	default:
		fmt.Printf("Unknown models subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	reportCount, err := store.CountReports(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count reports failed: %v\n", err)
		os.Exit(1)
	}
	fileCount, err := store.CountDownloadedFiles(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count files failed: %v\n", err)
		os.Exit(1)
	}
	diskBytes, diskErr := storage.DiskUsageBytes(
		cfg.Storage.DatabasePath,
		cfg.Storage.IndexPath,
		cfg.Storage.DownloadsDir,
		cfg.Storage.ReportsDir,
	)

	ollamaStatus := "unreachable"
	client := ollama.NewClient(ollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Timeout: 5 * time.Second,
	})
	if err := client.Ping(ctx); err == nil {
		ollamaStatus = "ok"
	}

	switch *outputFormat {
	case "json":
		out := map[string]interface{}{
			"reports":          reportCount,
			"downloaded_files": fileCount,
			"ollama":           ollamaStatus,
			"config": map[string]interface{}{
				"model":         cfg.Ollama.Model,
				"embed_model":   cfg.Ollama.EmbedModel,
				"database_path": cfg.Storage.DatabasePath,
				"index_path":    cfg.Storage.IndexPath,
				"downloads_dir": cfg.Storage.DownloadsDir,
				"reports_dir":   cfg.Storage.ReportsDir,
			},
		}
		if diskErr == nil {
			out["disk_usage_bytes"] = diskBytes
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("reports:            %d   # stored collective reports\n", reportCount)
		fmt.Printf("downloaded_files:   %d   # registered attachments\n", fileCount)
		if diskErr == nil {
			fmt.Printf("disk_usage_bytes:   %d   # database + index + files on disk\n", diskBytes)
		}
		fmt.Printf("ollama:             %s\n", ollamaStatus)
		fmt.Println()
		fmt.Println("# configuration")
		fmt.Printf("model:              %s\n", cfg.Ollama.Model)
		fmt.Printf("embed_model:        %s\n", cfg.Ollama.EmbedModel)
		fmt.Printf("database_path:      %s\n", cfg.Storage.DatabasePath)
		fmt.Printf("index_path:         %s\n", cfg.Storage.IndexPath)
		fmt.Printf("downloads_dir:      %s\n", cfg.Storage.DownloadsDir)
		fmt.Printf("reports_dir:        %s\n", cfg.Storage.ReportsDir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage    storage.Storage
	Index      *index.ReportIndex
	Ollama     *ollama.Client
	Summarizer *summarize.Summarizer
	Builder    *report.Builder
	Runner     *job.Runner
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

// initializeComponents wires storage, the report index, the Ollama client,
// and the scrape-summarize-report pipeline. model overrides the configured
// generation model when non-empty.
func initializeComponents(cfg *config.Config, logger *zap.Logger, model string) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	idx, err := index.NewReportIndex(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize report index: %w", err)
	}

	if model == "" {
		model = cfg.Ollama.Model
	}
	client := ollama.NewClient(ollama.Config{
		BaseURL:       cfg.Ollama.BaseURL,
		Model:         model,
		EmbedModel:    cfg.Ollama.EmbedModel,
		ContextWindow: cfg.Ollama.ContextWindow,
		Timeout:       cfg.Ollama.Timeout(),
	})

	summarizer := summarize.New(
		extract.NewExtractor(),
		chunker.New(cfg.Summarize.ChunkSize, cfg.Summarize.ChunkOverlap),
		cluster.NewSelector(client),
		client,
		model,
		summarize.WithBaseClusters(cfg.Summarize.Clusters),
		summarize.WithLogger(logger),
	)
	builder := report.NewBuilder(client, model, report.WithLogger(logger))

	scraper := scrape.NewClient(cfg.Scrape.BaseURL, scrape.WithLogger(logger))
	runner := job.NewRunner(
		scraper,
		summarizer,
		builder,
		store,
		cfg.Storage.DownloadsDir,
		cfg.Storage.ReportsDir,
		fileKinds(cfg.Scrape.FileTypes),
		job.WithLogger(logger),
		job.WithIndexer(idx),
	)

	return &Components{
		Storage:    store,
		Index:      idx,
		Ollama:     client,
		Summarizer: summarizer,
		Builder:    builder,
		Runner:     runner,
	}, nil
}

// fileKinds maps configured attachment types ("pdf", ".html") to FileKinds.
func fileKinds(types []string) []models.FileKind {
	kinds := make([]models.FileKind, 0, len(types))
	for _, t := range types {
		t = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(t)), ".")
		if t == "" {
			continue
		}
		kinds = append(kinds, models.KindForPath("f."+t))
	}
	return kinds
}

func parseFormat(s string) (cli.OutputFormat, bool) {
	switch s {
	case "text":
		return cli.OutputText, true
	case "json":
		return cli.OutputJSON, true
	default:
		return cli.OutputText, false
	}
}

func printUsage() {
	fmt.Println(`gpwdigest - GPW disclosure scraper and AI summarizer

Usage:
  gpwdigest server [flags]                Start the HTTP server
  gpwdigest run [flags]                   Scrape, summarize, and build a report
  gpwdigest summarize [flags] <file>      Summarize a single document
  gpwdigest reports <list|show|search>    Browse stored reports
  gpwdigest meta [flags] <company>        Synthesize a meta report across runs
  gpwdigest executions [flags]            Show job execution history
  gpwdigest models <list|pull>            Manage Ollama models
  gpwdigest status [flags]                Show storage and model status
  gpwdigest version                       Show version
  gpwdigest help                          Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/gpwdigest/config.yaml)
  --debug            Enable debug logging

Run Flags:
  --config string     Config file path
  --job string        Named job from the config file
  --company string    Company to scrape (ad-hoc run)
  --limit int         Max filings to fetch (ad-hoc run)
  --date-from string  Start date DD-MM-YYYY
  --date-to string    End date DD-MM-YYYY
  --output string     Output format: text or json (default: text)

Reports Flags:
  --config string     Config file path
  --company string    Filter by company (list)
  --limit int         Max results (default: 20)
  --output string     Output format: text or json (default: text)

Examples:
  gpwdigest server
  gpwdigest run --job daily-cdp
  gpwdigest run --company CDPROJEKT --date-from 01-08-2026 --date-to 24-08-2026
  gpwdigest summarize --company KGHM raport.pdf
  gpwdigest reports list --company CDPROJEKT
  gpwdigest reports search "przychody"
  gpwdigest meta CDPROJEKT
  gpwdigest executions --job daily-cdp
  gpwdigest models pull llama3.2:latest
  gpwdigest status --output json`)
}
