// Package duckduckgo aggregates prices from the snippets of a general web
// search. One search request stands in for several marketplace requests.
package duckduckgo

import (
	"net/url"
	"strings"

	"pricescout/pkg/marketplace"
	"pricescout/pkg/models"
	"pricescout/pkg/price"
	"pricescout/pkg/scrapers/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	Source          = "DuckDuckGo"
	Endpoint        = "https://html.duckduckgo.com/html/"
	MaxResults      = 12
	DefaultKeywords = "price india buy online"
)

type Aggregator struct {
	Endpoint string
	Keywords string
	Currency string
	Log      *zap.Logger
}

func NewAggregator(currency string, log *zap.Logger) *Aggregator {
	return &Aggregator{
		Endpoint: Endpoint,
		Keywords: DefaultKeywords,
		Currency: currency,
		Log:      log,
	}
}

func (a *Aggregator) Name() string { return Source }

// Scrape posts query plus purchase-intent keywords to the HTML endpoint and
// keeps results that point at a known marketplace or mention a price.
func (a *Aggregator) Scrape(query string) ([]models.PriceRecord, error) {
	q := strings.TrimSpace(query + " " + a.Keywords)

	var records []models.PriceRecord
	c := fetch.NewCollector(fetch.SearchTimeout)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		records = a.parse(e.DOM)
	})

	a.Log.Info("searching web for prices", zap.String("source", Source), zap.String("query", q))
	var err error
	fetch.Safely(a.Log, Source, func() {
		err = c.Post(a.Endpoint, map[string]string{"q": q})
	})
	return records, err
}

func (a *Aggregator) parse(root *goquery.Selection) []models.PriceRecord {
	results := root.Find(".result")
	if results.Length() > MaxResults {
		results = results.Slice(0, MaxResults)
	}

	var records []models.PriceRecord
	results.Each(func(_ int, res *goquery.Selection) {
		fetch.Safely(a.Log, Source+" result", func() {
			if rec, ok := a.result(res); ok {
				records = append(records, rec)
			}
		})
	})
	return records
}

func (a *Aggregator) result(res *goquery.Selection) (models.PriceRecord, bool) {
	titleTag := res.Find(".result__a").First()
	if titleTag.Length() == 0 {
		return models.PriceRecord{}, false
	}
	href, _ := titleTag.Attr("href")
	link := Canonical(href)
	if link == "" {
		return models.PriceRecord{}, false
	}

	title := strings.TrimSpace(titleTag.Text())
	snippet := strings.TrimSpace(res.Find(".result__snippet").First().Text())

	name, known := marketplace.Identify(link)
	p := price.Extract(title + " " + snippet)
	if !known && p == 0 {
		return models.PriceRecord{}, false
	}

	rec := models.NewPriceRecord(name, p, a.Currency, link)
	rec.Description = snippet
	return rec, true
}

// Canonical unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...)
// to the destination URL. Other links are returned unchanged.
func Canonical(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" && strings.HasSuffix(u.Host, "duckduckgo.com") {
		return dest
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
