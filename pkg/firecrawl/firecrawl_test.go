package firecrawl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

type apiStub struct {
	t          *testing.T
	status     int
	searchBody string
	scrapeBody string
	calls      int
	lastQuery  map[string]any
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls++
	if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
		s.t.Errorf("Authorization = %q", got)
	}
	if err := json.NewDecoder(r.Body).Decode(&s.lastQuery); err != nil {
		s.t.Errorf("bad request body: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if s.status != 0 {
		w.WriteHeader(s.status)
	}
	switch r.URL.Path {
	case "/v1/search":
		fmt.Fprint(w, s.searchBody)
	case "/v1/scrape":
		fmt.Fprint(w, s.scrapeBody)
	default:
		s.t.Errorf("unexpected path %s", r.URL.Path)
	}
}

func newAdapter(t *testing.T, stub *apiStub) (*Adapter, func()) {
	stub.t = t
	ts := httptest.NewServer(stub)
	a := NewAdapter(Config{APIKey: "test-key", BaseURL: ts.URL + "/"}, "INR", zaptest.NewLogger(t))
	return a, ts.Close
}

const hits = `[
  {"url": "https://www.amazon.in/dp/B0C1", "title": "Sony Bravia 55 | ₹57,990", "description": "4K TV", "metadata": {"og:image": "https://m.media-amazon.com/1.jpg"}},
  {"url": "https://www.reviews.example/sony", "title": "Sony Bravia review", "description": ""},
  {"title": "no url"}
]`

func TestAdapter_SearchShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Bare array", hits},
		{"Wrapped in data", `{"success": true, "data": ` + hits + `}`},
		{"Grouped by source", `{"success": true, "data": {"web": ` + hits + `}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &apiStub{searchBody: tt.body}
			a, done := newAdapter(t, stub)
			defer done()

			records := a.Search("Sony Bravia TV")
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
			}

			amz := records[0]
			if amz.Marketplace != "Amazon" || amz.Price != 57990 || !amz.InStock {
				t.Errorf("amazon record = %+v", amz)
			}
			if len(amz.Images) != 1 || amz.Images[0] != "https://m.media-amazon.com/1.jpg" {
				t.Errorf("images = %v", amz.Images)
			}
			if amz.Description != "4K TV" {
				t.Errorf("description = %q", amz.Description)
			}

			other := records[1]
			if other.Marketplace != "Online Store" || other.Price != 0 || other.InStock {
				t.Errorf("unknown record = %+v", other)
			}
			if other.Description != "Sony Bravia review" {
				t.Errorf("description should fall back to title, got %q", other.Description)
			}

			if q, _ := stub.lastQuery["query"].(string); !strings.HasPrefix(q, "Sony Bravia TV price buy online") {
				t.Errorf("query = %q", q)
			}
			if limit, _ := stub.lastQuery["limit"].(float64); limit != SearchLimit {
				t.Errorf("limit = %v", limit)
			}
		})
	}
}

func TestAdapter_SearchFailuresAreEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"Unauthorized", http.StatusUnauthorized, `{"success": false, "error": "Unauthorized"}`},
		{"Unsuccessful", 0, `{"success": false, "error": "quota"}`},
		{"Malformed", 0, `{"data": [`},
		{"Unexpected shape", 0, `"hello"`},
		{"Empty data", 0, `{"success": true, "data": []}`},
		{"Null data", 0, `{"success": true, "data": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, done := newAdapter(t, &apiStub{status: tt.status, searchBody: tt.body})
			defer done()

			if records := a.Search("tv"); len(records) != 0 {
				t.Errorf("expected no records, got %+v", records)
			}
		})
	}
}

func TestAdapter_InertWithoutKey(t *testing.T) {
	stub := &apiStub{t: t}
	ts := httptest.NewServer(stub)
	defer ts.Close()

	a := NewAdapter(Config{BaseURL: ts.URL}, "INR", zaptest.NewLogger(t))
	if a.Enabled() {
		t.Fatal("adapter should be disabled without a key")
	}
	if records := a.Search("tv"); records != nil {
		t.Errorf("expected nil, got %+v", records)
	}
	if details := a.ScrapePage("https://www.amazon.in/dp/1"); details != nil {
		t.Errorf("expected nil, got %+v", details)
	}
	if stub.calls != 0 {
		t.Errorf("inert adapter made %d API calls", stub.calls)
	}
}

func TestAdapter_ScrapePage(t *testing.T) {
	body := `{"success": true, "data": {
		"markdown": "# Sony Bravia\n© 2025 Sony. Deal price ₹57,990 today.",
		"metadata": {"title": "Sony Bravia 55", "description": "4K HDR TV"}
	}}`
	stub := &apiStub{scrapeBody: body}
	a, done := newAdapter(t, stub)
	defer done()

	details := a.ScrapePage("https://www.amazon.in/dp/B0C1")
	if details == nil {
		t.Fatal("expected details")
	}
	if details.Price != 57990 || details.Title != "Sony Bravia 55" || details.Description != "4K HDR TV" {
		t.Errorf("details = %+v", details)
	}
	if details.URL != "https://www.amazon.in/dp/B0C1" || details.Currency != "INR" {
		t.Errorf("details = %+v", details)
	}
	if only, _ := stub.lastQuery["onlyMainContent"].(bool); !only {
		t.Errorf("expected main-content-only request, got %v", stub.lastQuery)
	}
}

func TestAdapter_ScrapePageFlatDocument(t *testing.T) {
	content := "Intro text. " + strings.Repeat("filler ", 400) + "Rs. 1,999"
	body := fmt.Sprintf(`{"content": %q, "metadata": {}}`, content)
	a, done := newAdapter(t, &apiStub{scrapeBody: body})
	defer done()

	details := a.ScrapePage("https://shop.example/p")
	if details == nil {
		t.Fatal("expected details")
	}
	if details.Price != 0 {
		t.Errorf("price beyond the scan limit should be ignored, got %v", details.Price)
	}
	if len([]rune(details.Description)) != DescriptionLimit || !strings.HasPrefix(details.Description, "Intro text.") {
		t.Errorf("description should fall back to leading content, got %q", details.Description)
	}
}

func TestAdapter_ScrapePageFailures(t *testing.T) {
	for _, body := range []string{`{"success": false, "error": "blocked"}`, `{"success": true, "data": {}}`, `[]`} {
		a, done := newAdapter(t, &apiStub{scrapeBody: body})
		if details := a.ScrapePage("https://x.example"); details != nil {
			t.Errorf("body %s: expected nil, got %+v", body, details)
		}
		done()
	}
}
