package amazon

import (
	"net/url"

	"pricescout/pkg/marketplace"
	"pricescout/pkg/models"
	"pricescout/pkg/price"
	"pricescout/pkg/scrapers/fetch"
	"pricescout/pkg/scrapers/selector"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	Source      = marketplace.Amazon
	BaseURL     = "https://www.amazon.in"
	MaxListings = 4

	listings = "div.s-search-result"
)

var (
	titles = selector.Texts("h2 span", "h2 a span", "[data-cy='title-recipe'] span")
	prices = selector.Texts(".a-price .a-offscreen", "span.a-color-price", ".a-row .a-color-base")
	links  = selector.Attrs("href", "h2 a", "a.a-link-normal.s-no-outline", "[data-cy='title-recipe'] a")
	images = selector.Attrs("src", "img.s-image", ".s-product-image-container img")
)

type Scraper struct {
	BaseURL  string
	Currency string
	Log      *zap.Logger
}

func NewScraper(currency string, log *zap.Logger) *Scraper {
	return &Scraper{
		BaseURL:  BaseURL,
		Currency: currency,
		Log:      log,
	}
}

func (s *Scraper) Name() string { return Source }

// Scrape searches amazon.in for query. Blocked pages, bad status codes and
// unexpected markup yield fewer (or zero) records; transport errors are
// returned alongside whatever was collected so the caller can count them.
func (s *Scraper) Scrape(query string) ([]models.PriceRecord, error) {
	searchURL := s.BaseURL + "/s?" + url.Values{"k": {query}}.Encode()

	var records []models.PriceRecord
	c := fetch.NewCollector(fetch.ListingTimeout)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		records = s.parse(e.DOM)
	})

	s.Log.Info("scraping marketplace", zap.String("source", Source), zap.String("url", searchURL))
	var err error
	fetch.Safely(s.Log, Source, func() {
		err = c.Visit(searchURL)
	})
	return records, err
}

func (s *Scraper) parse(root *goquery.Selection) []models.PriceRecord {
	var records []models.PriceRecord
	root.Find(listings).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		fetch.Safely(s.Log, Source+" listing", func() {
			if rec, ok := s.listing(item); ok {
				records = append(records, rec)
			}
		})
		return len(records) < MaxListings
	})
	return records
}

func (s *Scraper) listing(item *goquery.Selection) (models.PriceRecord, bool) {
	title := titles.From(item)
	if title == "" {
		return models.PriceRecord{}, false
	}
	p := price.Extract(prices.From(item))
	if p == 0 {
		return models.PriceRecord{}, false
	}
	link := selector.Absolute(s.BaseURL, links.From(item))
	if link == "" {
		return models.PriceRecord{}, false
	}

	rec := models.NewPriceRecord(Source, p, s.Currency, link)
	rec.Description = title
	if img := selector.Absolute(s.BaseURL, images.From(item)); img != "" {
		rec.Images = []string{img}
	}
	return rec, true
}
