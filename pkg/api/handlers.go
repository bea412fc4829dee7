package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"pricescout/pkg/marketplace"
	"pricescout/pkg/models"

	"go.uber.org/zap"
)

const minProductNameLength = 2

// SearchRequest is the body of POST /api/search. Marketplaces must name known
// marketplaces; they and Country are logged but do not narrow the search.
type SearchRequest struct {
	ProductName  string   `json:"product_name"`
	Marketplaces []string `json:"marketplaces,omitempty"`
	Country      string   `json:"country,omitempty"`
}

type InspectRequest struct {
	URL string `json:"url"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Firecrawl bool   `json:"firecrawl"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body. Expected {\"product_name\": string}.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	name := strings.TrimSpace(req.ProductName)
	if utf8.RuneCountInString(name) < minProductNameLength {
		WriteBadRequest(w, fmt.Sprintf("product_name must be at least %d characters", minProductNameLength), r.URL.Path)
		return
	}
	if len(req.Marketplaces) == 0 {
		req.Marketplaces = []string{marketplace.Amazon, marketplace.Flipkart}
	}
	marketplaces, err := canonicalMarketplaces(req.Marketplaces)
	if err != nil {
		WriteBadRequest(w, err.Error(), r.URL.Path)
		return
	}
	req.Marketplaces = marketplaces
	if req.Country == "" {
		req.Country = s.opts.Country
	}

	pid := models.NewProductQuery(name).FlashPID()
	if s.cache != nil {
		if cached, ok := s.cache.Get(pid); ok {
			s.dedup.Infof("Cache hit for %s", pid)
			s.respond(w, r, cached)
			return
		}
	}

	var resp *models.SearchResponse
	if !s.withSlot(w, r, func() { resp = s.engine.Search(name) }) {
		return
	}

	s.log.Info("search finished",
		zap.String("product", name),
		zap.Strings("marketplaces", req.Marketplaces),
		zap.String("country", req.Country),
		zap.Int("prices", len(resp.Prices)),
		zap.Any("tier", resp.Metadata["tier"]),
	)

	if s.cache != nil && len(resp.Prices) > 0 {
		s.cache.Set(resp)
	}
	s.respond(w, r, resp)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body. Expected {\"url\": string}.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	target := strings.TrimSpace(req.URL)
	u, err := url.ParseRequestURI(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		WriteBadRequest(w, "url must be an absolute http or https URL", r.URL.Path)
		return
	}

	var details *models.PageDetails
	if !s.withSlot(w, r, func() { details = s.engine.ScrapePage(target) }) {
		return
	}

	if details == nil {
		s.log.Warn("page inspection failed", zap.String("url", target))
		WriteBadGateway(w, "Could not scrape URL", r.URL.Path)
		return
	}
	s.respond(w, r, details)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, HealthResponse{
		Status:    "ok",
		Firecrawl: s.opts.PrimaryEnabled,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// canonicalMarketplaces maps requested names, in any case, to the known
// marketplace names.
func canonicalMarketplaces(requested []string) ([]string, error) {
	known := marketplace.Names()
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		match := ""
		for _, k := range known {
			if strings.EqualFold(strings.TrimSpace(name), k) {
				match = k
				break
			}
		}
		if match == "" {
			return nil, fmt.Errorf("unknown marketplace %q. Available: %s", name, strings.Join(known, ", "))
		}
		out = append(out, match)
	}
	return out, nil
}

// withSlot runs fn once one of the MaxConcurrent pipeline slots is free. It
// writes a 503 and returns false if the request gives up waiting.
func (s *Server) withSlot(w http.ResponseWriter, r *http.Request, fn func()) bool {
	select {
	case s.searches <- struct{}{}:
	case <-r.Context().Done():
		WriteServiceUnavailable(w, "Timed out waiting for a free search slot", r.URL.Path)
		return false
	}
	defer func() { <-s.searches }()
	fn()
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, payload any) {
	if err := writeJSON(w, http.StatusOK, payload); err != nil {
		s.log.Error("error encoding response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
