package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scipunch/finfeed/aggregator"
	"github.com/scipunch/finfeed/cache"
	"github.com/scipunch/finfeed/config"
	"github.com/scipunch/finfeed/feed"
	"github.com/scipunch/finfeed/fetcher"
	"github.com/scipunch/finfeed/filter"
	"github.com/scipunch/finfeed/logging"
	"github.com/scipunch/finfeed/render"
	"github.com/scipunch/finfeed/scheduler"
	"github.com/scipunch/finfeed/server"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.Parse()

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}

	logger, err := logging.New(logging.Config{Level: conf.Log.Level, File: conf.Log.File})
	if err != nil {
		log.Fatalf("failed to initialize logger with %s", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := conf.FeedSources()
	filters := filter.NewPipeline(conf.Filter, logger)
	rss := fetcher.NewRSSFetcher(time.Duration(conf.FetchTimeout), logger)
	agg := aggregator.New(sources, rss, filters, logger)

	feedCache := cache.New(buildXML(agg, sources), time.Duration(conf.CacheDuration), logger)

	// Immediate first run warms the cache before traffic arrives; requests
	// that beat it fall back to the on-demand refresh in GetOrRefresh.
	scheduler.Every(ctx, time.Duration(conf.RefreshInterval), func(ctx context.Context) {
		if err := feedCache.ForceRefresh(ctx); err != nil {
			logger.Warnw("scheduled refresh failed", "error", err)
		}
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Port),
		Handler: server.New(feedCache, agg, logger).Handler(),
	}

	go func() {
		logger.Infow("serving aggregated feed", "addr", srv.Addr, "sources", len(sources))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("shutdown was not clean", "error", err)
	}
	logger.Info("stopped")
}

// buildXML is the cache's build function: one aggregation run rendered as the
// RSS document.
func buildXML(agg *aggregator.Aggregator, sources []feed.Source) cache.BuildFunc {
	return func(ctx context.Context) (string, error) {
		return render.XML(agg.Aggregate(ctx), sources)
	}
}
