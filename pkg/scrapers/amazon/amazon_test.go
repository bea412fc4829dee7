package amazon

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func listing(title, price, href string) string {
	return fmt.Sprintf(`
<div class="s-result-item s-search-result">
  <h2><a class="a-link-normal" href="%s"><span>%s</span></a></h2>
  <span class="a-price"><span class="a-offscreen">%s</span><span aria-hidden="true">x</span></span>
  <img class="s-image" src="https://m.media-amazon.com/images/I/%s.jpg">
</div>`, href, title, price, title[:4])
}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Logf("Received request for: %s?%s", r.URL.Path, r.URL.RawQuery)
		if r.URL.Path != "/s" || r.URL.Query().Get("k") == "" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestScraper_Scrape(t *testing.T) {
	page := "<html><body>" +
		listing("Sony Bravia 55 inch", "₹57,990", "/Sony-Bravia/dp/B0C1") +
		listing("Sony Bravia 43 inch", "", "/Sony-Bravia-43/dp/B0C2") +
		`<div class="s-search-result"><h2><a href="/no-title"></a></h2><span class="a-price"><span class="a-offscreen">₹999</span></span></div>` +
		listing("Sony Bravia 65 inch", "₹1,14,990", "/Sony-Bravia-65/dp/B0C3") +
		"</body></html>"

	ts := newServer(t, http.StatusOK, page)
	defer ts.Close()

	s := NewScraper("INR", zaptest.NewLogger(t))
	s.BaseURL = ts.URL

	records, err := s.Scrape("Sony Bravia TV")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Marketplace != "Amazon" {
		t.Errorf("marketplace = %q", first.Marketplace)
	}
	if first.Price != 57990 {
		t.Errorf("price = %v, want 57990", first.Price)
	}
	if first.URL != ts.URL+"/Sony-Bravia/dp/B0C1" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Currency != "INR" || !first.InStock || first.LastUpdated.IsZero() {
		t.Errorf("defaults not applied: %+v", first)
	}
	if len(first.Images) != 1 || !strings.HasSuffix(first.Images[0], "/Sony.jpg") {
		t.Errorf("images = %v", first.Images)
	}
	if first.OriginalPrice != nil || first.DiscountPercentage != nil {
		t.Errorf("discount fields should be nil")
	}
	if records[1].Price != 114990 {
		t.Errorf("second price = %v, want 114990", records[1].Price)
	}
}

func TestScraper_ScrapeCapsListings(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 7; i++ {
		b.WriteString(listing(fmt.Sprintf("Item %d listing", i), "₹1,000", fmt.Sprintf("/dp/%d", i)))
	}
	b.WriteString("</body></html>")

	ts := newServer(t, http.StatusOK, b.String())
	defer ts.Close()

	s := NewScraper("INR", zaptest.NewLogger(t))
	s.BaseURL = ts.URL

	records, _ := s.Scrape("item")
	if got := len(records); got != MaxListings {
		t.Errorf("expected %d records, got %d", MaxListings, got)
	}
}

func TestScraper_ScrapeNeverFails(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"Empty body", http.StatusOK, "", false},
		{"Malformed markup", http.StatusOK, "<html><div class='s-search-result'><h2><span>Broken", false},
		{"Blocked", http.StatusServiceUnavailable, "<html><body>Robot check</body></html>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newServer(t, tt.status, tt.body)
			defer ts.Close()

			s := NewScraper("INR", zaptest.NewLogger(t))
			s.BaseURL = ts.URL

			records, err := s.Scrape("tv")
			if len(records) != 0 {
				t.Errorf("expected no records, got %+v", records)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScraper_ScrapeUnreachable(t *testing.T) {
	s := NewScraper("INR", zaptest.NewLogger(t))
	s.BaseURL = "http://127.0.0.1:1"

	records, err := s.Scrape("tv")
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
	if err == nil {
		t.Error("expected the connection error to be returned")
	}
}
