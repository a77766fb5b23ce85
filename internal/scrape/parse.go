package scrape

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// parseFilingList extracts filings from the listing fragment. Each filing is
// one <li> carrying a link, a header span with date, type and category, a
// title paragraph, and the quote spans.
func parseFilingList(r io.Reader, baseURL, company string) ([]models.Filing, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var filings []models.Filing
	for _, li := range findAll(root, "li") {
		link := findFirst(li, "a")
		header := findWithClass(li, "span", "date")
		if link == nil || header == nil {
			continue
		}

		date, rawType, rawCategory := splitHeader(textContent(header))

		reportType := NormalizeReportType(rawType)
		if reportType == "" {
			reportType = rawType
		}
		category := NormalizeCategory(rawCategory)
		if category == "" {
			category = rawCategory
		}

		title := ""
		if p := findFirst(li, "p"); p != nil {
			title = strings.TrimSpace(textContent(p))
		}
		if title == "" {
			title = "UNTITLED " + strings.ToUpper(rawType) + " REPORT"
		}

		// The quote spans carry the closing rate ("Kurs 151,30") and the
		// day change ("Zmiana 1,25%"), the latter styled as profit or loss.
		var rateChange float64
		if profit := findWithClass(li, "span", "profit"); profit != nil {
			rateChange, _ = parseQuote(textContent(profit), "Zmiana")
		} else if loss := findWithClass(li, "span", "loss"); loss != nil {
			v, _ := parseQuote(textContent(loss), "Zmiana")
			rateChange = -v
		}
		var exchangeRate float64
		if summary := findWithClass(li, "span", "summary"); summary != nil {
			exchangeRate, _ = parseQuote(textContent(summary), "Kurs")
		}

		filings = append(filings, models.Filing{
			Company:      company,
			Date:         date,
			Title:        title,
			ReportType:   reportType,
			Category:     category,
			ExchangeRate: exchangeRate,
			RateChange:   rateChange,
			Link:         baseURL + "/" + strings.TrimPrefix(attrVal(link, "href"), "/"),
			ScrapedAt:    time.Now(),
		})
	}
	return filings, nil
}

// parseAttachmentRows extracts attachments from a filing page. Attachments
// are listed as <tr class="dane"> rows whose link href is relative to the
// PAP report viewer.
func parseAttachmentRows(r io.Reader) ([]Attachment, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var attachments []Attachment
	for _, tr := range findAll(root, "tr") {
		if !hasClass(tr, "dane") {
			continue
		}
		link := findFirst(tr, "a")
		if link == nil {
			continue
		}
		name := strings.TrimSpace(textContent(link))
		href := attrVal(link, "href")
		if name == "" || href == "" {
			continue
		}
		attachments = append(attachments, Attachment{
			Name: name,
			URL:  attachmentViewPrefix + href,
		})
	}
	return attachments, nil
}

// splitHeader splits a listing header like
// "19-09-2024 15:41:53 | Bieżący | ESPI | 22/2024" into its date, type, and
// category parts. The trailing report number is dropped, the time part of the
// date is dropped, and a missing category becomes "unknown".
func splitHeader(header string) (date, reportType, category string) {
	parts := strings.Split(header, "|")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 0 {
		date = parts[0]
		if fields := strings.Fields(date); len(fields) > 0 {
			date = fields[0]
		}
	}
	if len(parts) > 1 {
		reportType = parts[1]
	}
	category = "unknown"
	if len(parts) > 2 {
		category = parts[2]
	}
	return date, reportType, category
}

// parseQuote parses a quote span like "Kurs 151,30" or "Zmiana 1,25%".
func parseQuote(text, label string) (float64, error) {
	text = strings.ReplaceAll(text, label, "")
	text = strings.ReplaceAll(text, "%", "")
	text = strings.ReplaceAll(text, ",", ".")
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, tag string) *html.Node {
	for _, node := range findAll(n, tag) {
		return node
	}
	return nil
}

// findWithClass returns the first tag element under n carrying class.
func findWithClass(n *html.Node, tag, class string) *html.Node {
	for _, node := range findAll(n, tag) {
		if hasClass(node, class) {
			return node
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
