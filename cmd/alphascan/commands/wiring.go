package commands

import (
	"github.com/jshaw/alphascan/internal/factors"
	"github.com/jshaw/alphascan/internal/marketdata"
	"github.com/jshaw/alphascan/internal/marketdata/yahoo"
	"github.com/jshaw/alphascan/internal/scan"
	"github.com/jshaw/alphascan/internal/sentiment"
	"github.com/jshaw/alphascan/internal/targets"
	"github.com/jshaw/alphascan/internal/universe"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/httputil"
	"github.com/jshaw/alphascan/pkg/logger"
	"github.com/jshaw/alphascan/pkg/redis"
)

// newProvider builds the market data provider. When the redis cache is
// enabled in config, daily bars are cached; otherwise every fetch goes to
// the network. The returned closer is safe to call with a disabled cache.
func newProvider(cfg *config.Config, log *logger.Logger) (marketdata.Provider, func(), error) {
	client := yahoo.New(cfg, log)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() { redisClient.Close() }

	if !redisClient.Enabled() {
		return client, closer, nil
	}

	cache := redis.NewCache(redisClient, "bars")
	return marketdata.NewCachedProvider(client, cache, cfg.MarketData.CacheTTL, log), closer, nil
}

// newScanner wires the full scoring pipeline on top of a provider
func newScanner(provider marketdata.Provider, cfg *config.Config, log *logger.Logger) *scan.Scanner {
	factorEngine := factors.NewEngine(log)
	targetEngine := targets.NewEngine(log)
	sentScorer := sentiment.NewStatic(sentiment.DefaultPlaceholder)

	return scan.NewScanner(provider, factorEngine, targetEngine, sentScorer, cfg, log)
}

// newResolver wires the constituent-universe resolver
func newResolver(cfg *config.Config, log *logger.Logger) *universe.Resolver {
	httpClient := httputil.New(log)
	return universe.NewResolver(cfg, httpClient, log)
}
