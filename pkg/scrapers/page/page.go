// Package page inspects a single product URL using generic selectors that
// cover the common marketplaces plus schema.org markup.
package page

import (
	"strings"
	"time"

	"pricescout/pkg/models"
	"pricescout/pkg/price"
	"pricescout/pkg/scrapers/fetch"
	"pricescout/pkg/scrapers/selector"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// BodyScanLimit bounds the whole-page text scan used when no price element matches.
const BodyScanLimit = 5000

var (
	titles = selector.Chain{
		selector.Text("h1"),
		selector.Text("title"),
		selector.Attr(`meta[property="og:title"]`, "content"),
	}
	descriptions = selector.Chain{
		selector.Attr(`meta[name="description"]`, "content"),
		selector.Attr(`meta[property="og:description"]`, "content"),
	}
	prices = selector.Texts(
		".a-price .a-offscreen",
		"div._30jeq3._16Jk6d",
		"div.Nx9bqj.CxhGGd",
		".price",
		`[itemprop="price"]`,
	)
)

// Parser is the last-resort inspector used when the extraction API is unavailable.
type Parser struct {
	Currency  string
	Extractor *price.Extractor
	// Renderer, when set, loads the page in a headless browser first.
	Renderer func(rawURL string) (string, error)
	Log      *zap.Logger
}

func NewParser(currency string, render bool, log *zap.Logger) *Parser {
	p := &Parser{
		Currency:  currency,
		Extractor: price.NewPageExtractor(time.Now),
		Log:       log,
	}
	if render {
		p.Renderer = Render
	}
	return p
}

// Parse fetches rawURL and extracts title, description and price. It returns
// nil when the page could not be fetched.
func (p *Parser) Parse(rawURL string) *models.PageDetails {
	p.Log.Info("parsing page", zap.String("url", rawURL))

	body, ok := p.load(rawURL)
	if !ok {
		return nil
	}

	var details *models.PageDetails
	fetch.Safely(p.Log, "page parse", func() {
		details = p.parseHTML(rawURL, body)
	})
	return details
}

func (p *Parser) load(rawURL string) (string, bool) {
	if p.Renderer != nil {
		body, err := p.Renderer(rawURL)
		if err == nil && body != "" {
			return body, true
		}
		p.Log.Warn("rendering failed, fetching directly", zap.String("url", rawURL), zap.Error(err))
	}

	var body string
	c := fetch.NewCollector(fetch.ListingTimeout)
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	ok := fetch.Safely(p.Log, "page fetch", func() {
		if err := c.Visit(rawURL); err != nil {
			p.Log.Warn("page fetch failed", zap.String("url", rawURL), zap.Error(err))
			body = ""
		}
	})
	return body, ok && body != ""
}

func (p *Parser) parseHTML(rawURL, body string) *models.PageDetails {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		p.Log.Warn("invalid page markup", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	root := doc.Selection

	v := p.Extractor.Extract(prices.From(root))
	if v == 0 {
		v = p.Extractor.Extract(price.Leading(body, BodyScanLimit))
	}

	return &models.PageDetails{
		Price:       v,
		Title:       strings.Join(strings.Fields(titles.From(root)), " "),
		Description: descriptions.From(root),
		URL:         rawURL,
		Currency:    p.Currency,
	}
}
