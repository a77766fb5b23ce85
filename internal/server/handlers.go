package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/config"
	"github.com/xHezuSx/gpwdigest/internal/models"
	"github.com/xHezuSx/gpwdigest/internal/storage"
)

const defaultListLimit = 20

type runRequest struct {
	Job         string   `json:"job,omitempty"`
	Company     string   `json:"company,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	DateFrom    string   `json:"date_from,omitempty"`
	DateTo      string   `json:"date_to,omitempty"`
	ReportTypes []string `json:"report_types,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.respondError(w, http.StatusNotImplemented, "runs not enabled")
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var jobCfg config.JobConfig
	if req.Job != "" {
		found := s.config.Job(req.Job)
		if found == nil {
			s.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		jobCfg = *found
	} else {
		if req.Company == "" {
			s.respondError(w, http.StatusBadRequest, "company is required")
			return
		}
		jobCfg = config.JobConfig{
			Company:     req.Company,
			Limit:       req.Limit,
			ReportTypes: req.ReportTypes,
			Categories:  req.Categories,
		}
		if jobCfg.Limit <= 0 {
			jobCfg.Limit = s.config.Scrape.Limit
		}
		if len(jobCfg.ReportTypes) == 0 {
			jobCfg.ReportTypes = s.config.Scrape.ReportTypes
		}
		if len(jobCfg.Categories) == 0 {
			jobCfg.Categories = s.config.Scrape.Categories
		}
	}

	s.logger.Debug("run request",
		zap.String("job", jobCfg.Name),
		zap.String("company", jobCfg.Company))
	report, err := s.runner.Run(r.Context(), jobCfg, req.DateFrom, req.DateTo)
	if err != nil {
		s.logger.Error("run failed", zap.Error(err))
		if errors.Is(err, models.ErrModelUnavailable) {
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	limit := queryInt(r, "limit", defaultListLimit)
	reports, err := s.storage.ListReports(r.Context(), company, limit)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.storage.GetReport(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

type searchHit struct {
	Score  float64                  `json:"score"`
	Report *models.CollectiveReport `json:"report"`
}

func (s *Server) handleSearchReports(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := queryInt(r, "limit", defaultListLimit)

	hits, err := s.index.Search(query, limit)
	if err != nil {
		s.logger.Error("report search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	results := make([]searchHit, 0, len(hits))
	for _, hit := range hits {
		report, err := s.storage.GetReport(r.Context(), hit.ID)
		if err != nil {
			// Index entries can outlive their reports; skip stale hits.
			s.logger.Warn("indexed report missing from storage", zap.String("id", hit.ID))
			continue
		}
		results = append(results, searchHit{Score: hit.Score, Report: report})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	jobName := r.URL.Query().Get("job")
	limit := queryInt(r, "limit", defaultListLimit)
	execs, err := s.storage.ListJobExecutions(r.Context(), jobName, limit)
	if err != nil {
		s.logger.Error("list executions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"executions": execs,
		"count":      len(execs),
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.config.Jobs
	if jobs == nil {
		jobs = []config.JobConfig{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportCount, err := s.storage.CountReports(ctx)
	if err != nil {
		s.logger.Error("status: count reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fileCount, err := s.storage.CountDownloadedFiles(ctx)
	if err != nil {
		s.logger.Error("status: count files failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"reports":          reportCount,
		"downloaded_files": fileCount,
	}

	configInfo := map[string]interface{}{
		"model":         s.config.Ollama.Model,
		"embed_model":   s.config.Ollama.EmbedModel,
		"chunk_size":    s.config.Summarize.ChunkSize,
		"chunk_overlap": s.config.Summarize.ChunkOverlap,
		"database_path": s.config.Storage.DatabasePath,
		"index_path":    s.config.Storage.IndexPath,
		"downloads_dir": s.config.Storage.DownloadsDir,
		"reports_dir":   s.config.Storage.ReportsDir,
	}

	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.IndexPath,
		s.config.Storage.DownloadsDir,
		s.config.Storage.ReportsDir,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
