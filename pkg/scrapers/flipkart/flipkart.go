package flipkart

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
	Source      = marketplace.Flipkart
	BaseURL     = "https://www.flipkart.com"
	MaxListings = 4
)

// Flipkart ships several grid and list layouts with obfuscated class names.
var (
	cards = []string{"div._1AtVbE", "div[data-id]"}

	titles = selector.Chain{
		selector.Text("div._4rR01T"),
		selector.Text("div.KzDlHZ"),
		selector.Attr("a.s1Q9rs", "title"),
		selector.Attr("a.wjcEIp", "title"),
		selector.Text("a.s1Q9rs"),
	}
	prices = selector.Texts("div._30jeq3", "div.Nx9bqj", "div._1_WHN1")
	links  = selector.Attrs("href", "a._1fQZEK", "a.s1Q9rs", "a.wjcEIp", "a.CGtC98", "a.rPDeLR")
	images = selector.Attrs("src", "img._396cs4", "img._2r_T1I", "img.DByuf4")
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

// Scrape searches flipkart.com for query and returns at most MaxListings
// priced listings. A failed fetch yields no records and the fetch error.
func (s *Scraper) Scrape(query string) ([]models.PriceRecord, error) {
	searchURL := s.BaseURL + "/search?" + url.Values{"q": {query}}.Encode()

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
	var found *goquery.Selection
	for _, css := range cards {
		if found = root.Find(css); found.Length() > 0 {
			break
		}
	}

	var records []models.PriceRecord
	found.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		fetch.Safely(s.Log, Source+" listing", func() {
			if rec, ok := s.listing(card); ok {
				records = append(records, rec)
			}
		})
		return len(records) < MaxListings
	})
	return records
}

func (s *Scraper) listing(card *goquery.Selection) (models.PriceRecord, bool) {
	priceText := prices.From(card)
	if priceText == "" {
		return models.PriceRecord{}, false
	}
	link := selector.Absolute(s.BaseURL, links.From(card))
	if link == "" {
		return models.PriceRecord{}, false
	}
	p := price.Extract(priceText)
	if p == 0 {
		return models.PriceRecord{}, false
	}

	rec := models.NewPriceRecord(Source, p, s.Currency, link)
	rec.Description = titles.From(card)
	if img := selector.Absolute(s.BaseURL, images.From(card)); img != "" {
		rec.Images = []string{img}
	}
	return rec, true
}
