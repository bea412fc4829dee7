// Package fetch builds the per-call colly collectors shared by every scraper.
package fetch

import (
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"go.uber.org/zap"
)

const (
	ListingTimeout = 10 * time.Second
	SearchTimeout  = 15 * time.Second

	Referer = "https://www.google.com/"
)

// NewCollector returns a collector that looks like a browser: a random user
// agent per request, a search-engine referer and the usual Accept headers.
// Collectors are not reused across calls.
func NewCollector(timeout time.Duration) *colly.Collector {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(timeout)
	extensions.RandomUserAgent(c)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
		r.Headers.Set("Referer", Referer)
	})
	return c
}

// Safely runs fn and logs instead of crashing if it panics. It reports
// whether fn completed.
func Safely(log *zap.Logger, what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("recovered from panic", zap.String("in", what), zap.Any("panic", r))
			ok = false
		}
	}()
	fn()
	return true
}
