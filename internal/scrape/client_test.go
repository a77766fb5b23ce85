package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

func TestFetchFilingsSendsListingQuery(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ajaxindex.php" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Write([]byte(listingFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	filings, err := c.FetchFilings(context.Background(), Query{
		Company:     "CDPROJEKT",
		Limit:       20,
		DateFrom:    "01-08-2026",
		DateTo:      "24-08-2026",
		ReportTypes: []string{"current", "quarterly"},
		Categories:  []string{"ESPI"},
	})
	if err != nil {
		t.Fatalf("FetchFilings: %v", err)
	}
	if len(filings) != 2 {
		t.Errorf("got %d filings", len(filings))
	}

	expect := map[string]string{
		"action":     "GPWEspiReportUnion",
		"start":      "ajaxSearch",
		"page":       "komunikaty",
		"format":     "html",
		"lang":       "PL",
		"limit":      "20",
		"search-xs":  "CDPROJEKT",
		"searchText": "CDPROJEKT",
		"date":       "01-08-2026 - 24-08-2026",
	}
	for key, want := range expect {
		if got := gotForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("form[%s]=%v, want %q", key, got, want)
		}
	}
	if got := gotForm["typeRaports[]"]; len(got) != 2 || got[0] != "RB" || got[1] != "Q" {
		t.Errorf("typeRaports=%v", got)
	}
	if got := gotForm["categoryRaports[]"]; len(got) != 1 || got[0] != "ESPI" {
		t.Errorf("categoryRaports=%v", got)
	}
}

func TestFetchFilingsValidation(t *testing.T) {
	c := NewClient("http://unused.invalid")
	if _, err := c.FetchFilings(context.Background(), Query{Company: "X", DateFrom: "2026-08-01"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("bad date: err=%v", err)
	}
	if _, err := c.FetchFilings(context.Background(), Query{Company: " "}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("missing company: err=%v", err)
	}
	if _, err := c.FetchFilings(context.Background(), Query{Company: "X", ReportTypes: []string{"weekly"}}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("unknown type: err=%v", err)
	}
}

func TestAttachmentsFiltersByKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table>
<tr class="dane"><td><a href="1/r.pdf">raport.pdf</a></td></tr>
<tr class="dane"><td><a href="2/r.html">raport.html</a></td></tr>
<tr class="dane"><td><a href="3/r.xml">raport.xml</a></td></tr>
</table>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	atts, err := c.Attachments(context.Background(), srv.URL+"/komunikat", []models.FileKind{models.FileKindPDF})
	if err != nil {
		t.Fatalf("Attachments: %v", err)
	}
	if len(atts) != 1 || atts[0].Name != "raport.pdf" {
		t.Errorf("got %+v", atts)
	}

	atts, err = c.Attachments(context.Background(), srv.URL+"/komunikat", []models.FileKind{models.FileKindPDF, models.FileKindHTML})
	if err != nil {
		t.Fatalf("Attachments: %v", err)
	}
	if len(atts) != 2 {
		t.Errorf("got %d attachments, want 2", len(atts))
	}

	atts, err = c.Attachments(context.Background(), srv.URL+"/komunikat", nil)
	if err != nil || atts != nil {
		t.Errorf("no kinds should return nothing: %v %v", atts, err)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 content"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.Download(context.Background(), Attachment{Name: "r.pdf", URL: srv.URL + "/file"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "%PDF-1.4 content" {
		t.Errorf("got %q", data)
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Download(context.Background(), Attachment{Name: "r.pdf", URL: srv.URL + "/file"}); err == nil {
		t.Error("expected error for 404")
	}
}

func TestDateParam(t *testing.T) {
	cases := []struct {
		from, to, want string
		wantErr        bool
	}{
		{"", "", "", false},
		{"24-08-2026", "", "24-08-2026", false},
		{"24-08-2026", "24-08-2026", "24-08-2026", false},
		{"01-08-2026", "24-08-2026", "01-08-2026 - 24-08-2026", false},
		{"", "24-08-2026", "24-08-2026", false},
		{"2026-08-24", "", "", true},
	}
	for _, tc := range cases {
		got, err := dateParam(tc.from, tc.to)
		if tc.wantErr {
			if err == nil {
				t.Errorf("dateParam(%q,%q): expected error", tc.from, tc.to)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("dateParam(%q,%q)=%q,%v want %q", tc.from, tc.to, got, err, tc.want)
		}
	}
}
