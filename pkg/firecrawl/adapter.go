package firecrawl

import (
	"time"

	"pricescout/pkg/marketplace"
	"pricescout/pkg/models"
	"pricescout/pkg/price"

	"go.uber.org/zap"
)

const (
	SearchLimit = 8
	// ScanLimit bounds how much scraped content is searched for a price.
	ScanLimit        = 2000
	DescriptionLimit = 500

	queryKeywords = "price buy online amazon.in flipkart.com"
)

type Config struct {
	APIKey  string
	BaseURL string
}

// Adapter is the primary extraction tier. Without an API key it is inert and
// behaves exactly like an API that found nothing. Errors are logged and
// reported as empty results.
type Adapter struct {
	client   *Client
	currency string
	pages    *price.Extractor
	log      *zap.Logger
}

func NewAdapter(cfg Config, currency string, log *zap.Logger) *Adapter {
	a := &Adapter{
		currency: currency,
		pages:    price.NewPageExtractor(time.Now),
		log:      log,
	}
	if cfg.APIKey != "" {
		a.client = NewClient(cfg.BaseURL, cfg.APIKey)
	}
	return a
}

// Enabled reports whether an API key is configured.
func (a *Adapter) Enabled() bool {
	return a.client != nil
}

// Search returns one record per search hit.
func (a *Adapter) Search(productName string) []models.PriceRecord {
	if !a.Enabled() {
		return nil
	}

	query := productName + " " + queryKeywords
	a.log.Info("trying extraction API", zap.String("query", query))

	results, err := a.client.Search(query, SearchLimit)
	if err != nil {
		a.log.Warn("extraction API search failed", zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		a.log.Info("extraction API returned 0 results")
		return nil
	}

	a.log.Info("extraction API found results", zap.Int("results", len(results)))
	return a.normalize(results)
}

func (a *Adapter) normalize(results []Result) []models.PriceRecord {
	records := make([]models.PriceRecord, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		p := price.Extract(r.Title + " " + r.Description)

		rec := models.NewPriceRecord(marketplace.Resolve(r.URL), p, a.currency, r.URL)
		rec.Description = r.Description
		if rec.Description == "" {
			rec.Description = r.Title
		}
		if img := metaString(r.Metadata, "og:image", "ogImage"); img != "" {
			rec.Images = []string{img}
		}
		rec.InStock = p > 0
		records = append(records, rec)
	}
	return records
}

// ScrapePage inspects one URL through the API. It returns nil when the API is
// disabled, fails, or returns an empty document.
func (a *Adapter) ScrapePage(rawURL string) *models.PageDetails {
	if !a.Enabled() {
		return nil
	}

	a.log.Info("extraction API scraping page", zap.String("url", rawURL))
	doc, err := a.client.Scrape(rawURL)
	if err != nil {
		a.log.Warn("extraction API scrape failed", zap.String("url", rawURL), zap.Error(err))
		return nil
	}

	content := doc.Text()
	if content == "" && len(doc.Metadata) == 0 {
		return nil
	}

	desc := metaString(doc.Metadata, "description", "og:description")
	if desc == "" {
		desc = price.Leading(content, DescriptionLimit)
	}
	return &models.PageDetails{
		Price:       a.pages.Extract(price.Leading(content, ScanLimit)),
		Title:       metaString(doc.Metadata, "title", "og:title"),
		Description: desc,
		URL:         rawURL,
		Currency:    a.currency,
	}
}
