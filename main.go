package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricescout/pkg/api"
	"pricescout/pkg/cache"
	"pricescout/pkg/config"
	"pricescout/pkg/fallback"
	"pricescout/pkg/firecrawl"
	"pricescout/pkg/logger"
	"pricescout/pkg/metrics"
	"pricescout/pkg/scrapers/amazon"
	"pricescout/pkg/scrapers/duckduckgo"
	"pricescout/pkg/scrapers/flipkart"
	"pricescout/pkg/scrapers/page"
	"pricescout/pkg/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	m := metrics.New()
	engine, primary := newEngine(cfg, m, log)

	// The engine is stateless; caching is an opt-in concern of the HTTP layer.
	var responses api.ResponseCache
	if cfg.CacheEnabled() {
		c, err := cache.New(cfg.CacheDBPath, time.Duration(cfg.CacheTTLMinutes)*time.Minute, log)
		if err != nil {
			log.Fatal("failed to initialize cache", zap.Error(err))
		}
		defer c.Close()
		responses = c
		log.Info("cache initialized", zap.String("path", cfg.CacheDBPath), zap.Int("ttl_minutes", cfg.CacheTTLMinutes))
	}

	server := api.NewServer(api.Options{
		Port:           cfg.Port,
		DocsDir:        cfg.DocsDir,
		MaxConcurrent:  cfg.MaxConcurrentSearches,
		Country:        cfg.Country,
		PrimaryEnabled: primary.Enabled(),
	}, engine, responses, m, log)

	if ip := GetOutboundIP(); ip != nil {
		log.Info("local network URL", zap.String("url", fmt.Sprintf("http://%s:%s", ip, cfg.Port)))
	} else {
		log.Warn("could not determine local IP address")
	}
	log.Info("starting server",
		zap.String("url", "http://localhost:"+cfg.Port),
		zap.Bool("firecrawl", primary.Enabled()),
		zap.Bool("render_pages", cfg.RenderPages),
	)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

// newEngine assembles both tiers: the Firecrawl adapter as primary and the
// scraping orchestrator (DuckDuckGo first, then Amazon and Flipkart) as fallback.
func newEngine(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (*service.Service, *firecrawl.Adapter) {
	primary := firecrawl.NewAdapter(firecrawl.Config{
		APIKey:  cfg.FirecrawlAPIKey,
		BaseURL: cfg.FirecrawlAPIURL,
	}, cfg.Currency, log.Named("firecrawl"))

	scrapers := log.Named("fallback")
	orchestrator := fallback.New(
		duckduckgo.NewAggregator(cfg.Currency, scrapers),
		[]fallback.Source{
			amazon.NewScraper(cfg.Currency, scrapers),
			flipkart.NewScraper(cfg.Currency, scrapers),
		},
		page.NewParser(cfg.Currency, cfg.RenderPages, scrapers),
		m,
		scrapers,
	)

	return service.New(primary, orchestrator, m, log.Named("service")), primary
}

func GetOutboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		addrs, _ := net.InterfaceAddrs()
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return ipnet.IP
				}
			}
		}
		return nil
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP
}
