// Package fallback runs the scraping strategies used when the extraction API
// yields nothing: web-search aggregation first, then direct marketplace
// scraping if the search engine found too little.
package fallback

import (
	"math/rand"
	"time"

	"pricescout/pkg/metrics"
	"pricescout/pkg/models"
	"pricescout/pkg/scrapers/fetch"

	"go.uber.org/zap"
)

// MinAggregatorResults is the aggregator result count below which direct
// marketplace scrapers are also run.
const MinAggregatorResults = 2

// Source is one scraping strategy. A non-nil error reports a transport
// failure; any records returned with it are still used.
type Source interface {
	Name() string
	Scrape(query string) ([]models.PriceRecord, error)
}

// PageParser inspects a single URL.
type PageParser interface {
	Parse(rawURL string) *models.PageDetails
}

type Orchestrator struct {
	aggregator Source
	direct     []Source
	pages      PageParser
	metrics    *metrics.Metrics
	log        *zap.Logger

	// Delay runs before each direct scraper.
	Delay func()
}

func New(aggregator Source, direct []Source, pages PageParser, m *metrics.Metrics, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		direct:     direct,
		pages:      pages,
		metrics:    m,
		log:        log,
		Delay:      RandomDelay,
	}
}

// RandomDelay sleeps between one and two seconds.
func RandomDelay() {
	time.Sleep(time.Second + time.Duration(rand.Int63n(int64(time.Second))))
}

// Search returns deduplicated, priced records for productName. An empty
// result means nothing was found.
func (o *Orchestrator) Search(productName string) []models.PriceRecord {
	o.log.Info("fallback search", zap.String("product", productName))

	found := o.run(o.aggregator, productName)
	results := append([]models.PriceRecord(nil), found...)

	if len(found) < MinAggregatorResults {
		o.log.Info("search engine results low, scraping marketplaces directly", zap.Int("results", len(found)))
		for _, src := range o.direct {
			o.Delay()
			results = append(results, o.run(src, productName)...)
		}
	}

	return Dedupe(Priced(results))
}

// ParsePage inspects a single URL directly.
func (o *Orchestrator) ParsePage(rawURL string) *models.PageDetails {
	return o.pages.Parse(rawURL)
}

func (o *Orchestrator) run(src Source, query string) []models.PriceRecord {
	var records []models.PriceRecord
	var err error
	ok := fetch.Safely(o.log, src.Name(), func() {
		records, err = src.Scrape(query)
	})
	if !ok {
		o.metrics.SourceFailed(src.Name())
		return nil
	}
	if err != nil {
		o.log.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
		o.metrics.SourceFailed(src.Name())
	}
	o.metrics.SourceRecords(src.Name(), len(records))
	o.log.Info("source finished", zap.String("source", src.Name()), zap.Int("records", len(records)))
	return records
}

// Priced drops records whose price is zero.
func Priced(records []models.PriceRecord) []models.PriceRecord {
	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		if r.Price > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Dedupe keeps the first record seen for each URL, preserving order.
func Dedupe(records []models.PriceRecord) []models.PriceRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
