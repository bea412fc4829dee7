package duckduckgo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func result(href, title, snippet string) string {
	return fmt.Sprintf(`
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="%s">%s</a></h2>
  <a class="result__snippet" href="%s">%s</a>
</div>`, href, title, href, snippet)
}

func redirect(dest string) string {
	return "//duckduckgo.com/l/?uddg=" + url.QueryEscape(dest) + "&rut=abc"
}

func newServer(t *testing.T, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if gotQuery != nil {
			*gotQuery = r.PostForm.Get("q")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
}

func TestAggregator_Scrape(t *testing.T) {
	page := "<html><body>" +
		result(redirect("https://www.amazon.in/Sony-Bravia/dp/B0C1"), "Sony Bravia 55 - Amazon.in", "Buy Sony Bravia at ₹57,990 with free delivery") +
		result(redirect("https://www.flipkart.com/sony-bravia/p/itm1"), "Sony Bravia on Flipkart", "Great offers on TVs") +
		result("https://www.smartprix.com/tv/sony-bravia", "Sony Bravia price list", "Lowest price Rs. 54,499 as of today") +
		result("https://www.sony.co.in/support", "Sony support", "Manuals and downloads") +
		`<div class="result"><span>sponsored</span></div>` +
		"</body></html>"

	var q string
	ts := newServer(t, page, &q)
	defer ts.Close()

	a := NewAggregator("INR", zaptest.NewLogger(t))
	a.Endpoint = ts.URL

	records, err := a.Scrape("Sony Bravia TV")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if q != "Sony Bravia TV price india buy online" {
		t.Errorf("query = %q", q)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}

	want := []struct {
		marketplace string
		price       float64
		url         string
	}{
		{"Amazon", 57990, "https://www.amazon.in/Sony-Bravia/dp/B0C1"},
		{"Flipkart", 0, "https://www.flipkart.com/sony-bravia/p/itm1"},
		{"Online Store", 54499, "https://www.smartprix.com/tv/sony-bravia"},
	}
	for i, w := range want {
		got := records[i]
		if got.Marketplace != w.marketplace || got.Price != w.price || got.URL != w.url {
			t.Errorf("record %d = %+v, want %+v", i, got, w)
		}
		if got.Currency != "INR" || !got.InStock || got.LastUpdated.IsZero() {
			t.Errorf("record %d missing defaults: %+v", i, got)
		}
	}
}

func TestAggregator_ScrapeCapsResults(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		b.WriteString(result(fmt.Sprintf("https://www.amazon.in/dp/%d", i), "Item", "₹1,000"))
	}
	b.WriteString("</body></html>")

	ts := newServer(t, b.String(), nil)
	defer ts.Close()

	a := NewAggregator("INR", zaptest.NewLogger(t))
	a.Endpoint = ts.URL

	records, _ := a.Scrape("item")
	if got := len(records); got != MaxResults {
		t.Errorf("expected %d records, got %d", MaxResults, got)
	}
}

func TestAggregator_ScrapeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	a := NewAggregator("INR", zaptest.NewLogger(t))
	a.Endpoint = ts.URL

	records, err := a.Scrape("tv")
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
	if err == nil {
		t.Error("expected the 429 to be reported")
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{redirect("https://www.croma.com/p/1?x=1"), "https://www.croma.com/p/1?x=1"},
		{"https://www.amazon.in/dp/B0C1", "https://www.amazon.in/dp/B0C1"},
		{"//www.jiomart.com/p/2", "https://www.jiomart.com/p/2"},
		{"https://example.com/?uddg=https://evil.example", "https://example.com/?uddg=https://evil.example"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
