// Package service is the top-level price engine: the extraction API first,
// the scraping fallback when the API produces nothing.
package service

import (
	"math"
	"time"

	"pricescout/pkg/metrics"
	"pricescout/pkg/models"

	"go.uber.org/zap"
)

const (
	TierPrimary  = "primary"
	TierFallback = "fallback"
	TierNone     = "none"
)

// Primary is the hosted extraction tier.
type Primary interface {
	Search(productName string) []models.PriceRecord
	ScrapePage(rawURL string) *models.PageDetails
}

// Fallback is the scraping tier.
type Fallback interface {
	Search(productName string) []models.PriceRecord
	ParsePage(rawURL string) *models.PageDetails
}

type Service struct {
	primary  Primary
	fallback Fallback
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func New(primary Primary, fallback Fallback, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		metrics:  m,
		log:      log,
	}
}

// SearchProducts returns the output of exactly one tier: the primary's when
// it found anything, otherwise the fallback's.
func (s *Service) SearchProducts(productName string) ([]models.PriceRecord, string) {
	if results := s.primary.Search(productName); len(results) > 0 {
		s.metrics.TierAnswered(TierPrimary)
		return results, TierPrimary
	}

	s.log.Info("switching to fallback scrapers", zap.String("product", productName))
	results := s.fallback.Search(productName)
	if len(results) == 0 {
		s.log.Info("fallback returned 0 results", zap.String("product", productName))
		s.metrics.TierAnswered(TierNone)
		return results, TierNone
	}
	s.log.Info("fallback found results", zap.Int("results", len(results)))
	s.metrics.TierAnswered(TierFallback)
	return results, TierFallback
}

// ScrapePage inspects one URL with the same two-tier shape. Nil means every
// tier failed.
func (s *Service) ScrapePage(rawURL string) *models.PageDetails {
	if details := s.primary.ScrapePage(rawURL); details != nil {
		s.metrics.Inspected(TierPrimary)
		return details
	}
	details := s.fallback.ParsePage(rawURL)
	if details == nil {
		s.metrics.Inspected(TierNone)
		return nil
	}
	s.metrics.Inspected(TierFallback)
	return details
}

// Search runs SearchProducts and assembles the caller-facing response.
func (s *Service) Search(productName string) *models.SearchResponse {
	records, tier := s.SearchProducts(productName)
	return BuildResponse(models.NewProductQuery(productName), records, tier, time.Now().UTC())
}

// BuildResponse drops zero-price records, picks the cheapest as best price and
// attaches the placeholder confidence score.
func BuildResponse(q models.ProductQuery, records []models.PriceRecord, tier string, now time.Time) *models.SearchResponse {
	prices := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		if r.Price > 0 {
			prices = append(prices, r)
		}
	}

	var best *models.PriceRecord
	lowest := math.Inf(1)
	for i := range prices {
		if prices[i].Price < lowest {
			lowest = prices[i].Price
			best = &prices[i]
		}
	}

	confidence, note := 0.1, "No results found or scraper inactive"
	if len(prices) > 0 {
		confidence = 0.8
		note = "Live scraping via " + tier + " tier"
	}

	category := models.DefaultCategory
	return &models.SearchResponse{
		Product: models.ProductInfo{
			FlashPID:        q.FlashPID(),
			Brand:           q.Brand,
			ProductName:     q.Name,
			NormalizedTitle: q.Name,
			Category:        &category,
			ConfidenceScore: confidence,
		},
		Prices:    prices,
		BestPrice: best,
		Metadata: map[string]any{
			"stage":     "2",
			"tier":      tier,
			"note":      note,
			"timestamp": now.Format(time.RFC3339),
		},
	}
}
