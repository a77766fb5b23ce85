// Package index provides full-text search over collective reports using Bleve.
package index

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// reportDoc is the indexed shape of a collective report. The full rendered
// document lives in SQLite; the index carries only what search matches on.
type reportDoc struct {
	ID        string `json:"id"`
	Company   string `json:"company"`
	JobName   string `json:"job_name"`
	Narrative string `json:"narrative"`
}

// Hit is one search result.
type Hit struct {
	ID    string
	Score float64
}

// ReportIndex indexes collective report narratives for keyword search.
type ReportIndex struct {
	index bleve.Index
}

// NewReportIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after a mapping change.
func NewReportIndex(path string) (*ReportIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase and tokenize without stemming. Polish
	// narratives stem badly under the English analyzer.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("narrative", textFieldMapping)
	docMapping.AddFieldMappingsAt("company", textFieldMapping)
	docMapping.AddFieldMappingsAt("job_name", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.AddDocumentMapping("report", docMapping)
	im.DefaultType = "report"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open report index: %w", openErr)
		}
		return &ReportIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create report index: %w", err)
	}
	return &ReportIndex{index: index}, nil
}

// Index adds or replaces a report in the index.
func (r *ReportIndex) Index(report *models.CollectiveReport) error {
	return r.index.Index(report.ID, reportDoc{
		ID:        report.ID,
		Company:   report.Company,
		JobName:   report.JobName,
		Narrative: report.Narrative,
	})
}

// Search runs a match query over narratives and returns up to limit hits,
// best first.
func (r *ReportIndex) Search(query string, limit int) ([]Hit, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := r.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("report search failed: %w", err)
	}
	hits := make([]Hit, len(results.Hits))
	for i, hit := range results.Hits {
		hits[i] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return hits, nil
}

// Delete removes a report from the index.
func (r *ReportIndex) Delete(id string) error {
	return r.index.Delete(id)
}

// Close releases the index.
func (r *ReportIndex) Close() error {
	return r.index.Close()
}
