// Package scrape fetches disclosure filings from the GPW listing endpoint and
// downloads their attachments.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// Endpoint defaults.
const (
	DefaultBaseURL       = "https://www.gpw.pl"
	attachmentViewPrefix = "https://espiebi.pap.pl/espi/pl/reports/view/"
	listingPath          = "/ajaxindex.php"
	dateLayout           = "02-01-2006"
)

// reportTypeCodes maps canonical report type names to the codes the listing
// endpoint filters on.
var reportTypeCodes = map[string]string{
	"current":     "RB",
	"semi-annual": "P",
	"quarterly":   "Q",
	"interim":     "O",
	"annual":      "R",
}

// Query filters one listing request. DateFrom alone selects a single day,
// DateFrom plus DateTo a range; both use DD-MM-YYYY.
type Query struct {
	Company     string
	Limit       int
	DateFrom    string
	DateTo      string
	ReportTypes []string
	Categories  []string
}

// Attachment is one downloadable file attached to a filing.
type Attachment struct {
	Name string
	URL  string
}

// Client scrapes the GPW listing. The listing endpoint returns an HTML
// fragment rather than JSON, so responses are parsed structurally.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a scraper for the listing at baseURL. An empty baseURL
// uses the public GPW site.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchFilings posts the listing query and parses the returned fragment into
// filings. An empty listing is not an error.
func (c *Client) FetchFilings(ctx context.Context, q Query) ([]models.Filing, error) {
	date, err := dateParam(q.DateFrom, q.DateTo)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.Company) == "" {
		return nil, fmt.Errorf("%w: company is required", models.ErrInvalidInput)
	}

	form := url.Values{
		"action":     {"GPWEspiReportUnion"},
		"start":      {"ajaxSearch"},
		"page":       {"komunikaty"},
		"format":     {"html"},
		"lang":       {"PL"},
		"letter":     {""},
		"offset":     {"0"},
		"limit":      {fmt.Sprintf("%d", q.Limit)},
		"search-xs":  {q.Company},
		"searchText": {q.Company},
		"date":       {date},
	}
	for _, cat := range q.Categories {
		form.Add("categoryRaports[]", strings.ToUpper(cat))
	}
	for _, rt := range q.ReportTypes {
		code, ok := reportTypeCodes[strings.ToLower(rt)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown report type %q", models.ErrInvalidInput, rt)
		}
		form.Add("typeRaports[]", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+listingPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	filings, err := parseFilingList(resp.Body, c.baseURL, q.Company)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	c.logger.Debug("fetched filings",
		zap.String("company", q.Company),
		zap.Int("count", len(filings)))
	return filings, nil
}

// Attachments fetches the filing page and returns attachments matching the
// wanted kinds (by file extension). An empty kinds slice returns nothing.
func (c *Client) Attachments(ctx context.Context, filingURL string, kinds []models.FileKind) ([]Attachment, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, filingURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch filing page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("filing page returned status %d", resp.StatusCode)
	}

	all, err := parseAttachmentRows(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse filing page: %w", err)
	}

	wanted := make(map[models.FileKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	var out []Attachment
	for _, att := range all {
		if wanted[models.KindForPath(att.Name)] {
			out = append(out, att)
		}
	}
	return out, nil
}

// Download fetches one attachment and returns its content.
func (c *Client) Download(ctx context.Context, att Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", att.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", att.Name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", att.Name, err)
	}
	return data, nil
}

// dateParam validates and formats the date filter.
func dateParam(from, to string) (string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" && to == "" {
		return "", nil
	}
	if from != "" {
		if _, err := time.Parse(dateLayout, from); err != nil {
			return "", fmt.Errorf("%w: date %q (expected DD-MM-YYYY)", models.ErrInvalidInput, from)
		}
	}
	if to == "" || to == from {
		return from, nil
	}
	if _, err := time.Parse(dateLayout, to); err != nil {
		return "", fmt.Errorf("%w: date %q (expected DD-MM-YYYY)", models.ErrInvalidInput, to)
	}
	if from == "" {
		return to, nil
	}
	return from + " - " + to, nil
}

// NormalizeReportType maps a scraped Polish type label or a listing code to
// its canonical name. Unknown labels map to empty.
func NormalizeReportType(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bieżący", "current", "rb":
		return "current"
	case "półroczny", "semi-annual", "p":
		return "semi-annual"
	case "kwartalny", "quarterly", "q":
		return "quarterly"
	case "śródroczny", "interim", "o":
		return "interim"
	case "roczny", "annual", "r":
		return "annual"
	default:
		return ""
	}
}

// NormalizeCategory validates a scraped category label. Only ESPI and EBI are
// recognized.
func NormalizeCategory(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "ESPI" || upper == "EBI" {
		return upper
	}
	return ""
}
