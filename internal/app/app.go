package app

import (
	"fmt"
	"net/http"

	"github.com/g4biGTJS/vsport-elo/external/sportradar"
	"github.com/g4biGTJS/vsport-elo/internal/config"
	"github.com/g4biGTJS/vsport-elo/internal/interfaces/httpapi"
	"github.com/g4biGTJS/vsport-elo/internal/platform/cache"
	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
	"github.com/g4biGTJS/vsport-elo/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	client := sportradar.NewClient(sportradar.ClientConfig{
		Timeout:           cfg.UpstreamTimeout,
		Referer:           cfg.UpstreamReferer,
		RequestsPerSecond: cfg.UpstreamRequestsPerSecond,
		Logger:            logger,
		CircuitEnabled:    cfg.UpstreamCircuitEnabled,
		CircuitFailures:   cfg.UpstreamCircuitFailures,
		CircuitOpenFor:    cfg.UpstreamCircuitOpenFor,
	})

	resolver := sportradar.NewSeasonResolver(sportradar.SeasonResolverConfig{
		Client:      client,
		CategoryURL: cfg.UpstreamCategoryURL,
		LeagueName:  cfg.UpstreamLeagueName,
		SeedID:      cfg.UpstreamSeasonSeedID,
		TTL:         cfg.SeasonTTL,
		Logger:      logger,
	})

	gateway := sportradar.NewGateway(sportradar.GatewayConfig{
		Client:             client,
		Resolver:           resolver,
		SeasonPageTemplate: cfg.UpstreamSeasonPageTemplate,
		MatchMinYield:      cfg.MatchMinYield,
		StandingsMinYield:  cfg.StandingsMinYield,
	})

	var matchesCache, standingsCache *cache.Store
	if cfg.CacheEnabled {
		matchesCache = cache.NewStore(cfg.MatchesCacheTTL)
		standingsCache = cache.NewStore(cfg.StandingsCacheTTL)
	}

	fallback := usecase.NewFallbackPolicy(usecase.DefaultStandingsSnapshot())

	matchesSvc := usecase.NewMatchesService(usecase.MatchesServiceConfig{
		Source:       gateway,
		Cache:        matchesCache,
		Fallback:     fallback,
		Logger:       logger,
		RecentRounds: cfg.RecentRounds,
		FetchWorkers: cfg.FetchWorkers,
	})
	standingsSvc := usecase.NewStandingsService(usecase.StandingsServiceConfig{
		Source:         gateway,
		Cache:          standingsCache,
		LeaguePages:    cfg.LeaguePages,
		Fallback:       fallback,
		Logger:         logger,
		StaticFallback: cfg.StandingsStaticFallback,
	})

	var proxy *httpapi.ReverseProxy
	if cfg.ProxyEnabled {
		proxy = httpapi.NewReverseProxy(httpapi.ProxyConfig{
			AllowedHosts:  cfg.ProxyAllowedHosts,
			DefaultHost:   cfg.ProxyDefaultHost,
			RewriteDomain: cfg.ProxyRewriteDomain,
			Timeout:       cfg.ProxyTimeout,
			Logger:        logger,
		})
	}

	handler := httpapi.NewHandler(matchesSvc, standingsSvc, logger)
	router := httpapi.NewRouter(handler, proxy, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
