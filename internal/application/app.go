// Package application assembles the domain services from configuration.
// Hosts embed App and call the services directly; no transport layer is
// provided here.
package application

import (
	"github.com/dawadex/backend/internal/adapters/cache"
	"github.com/dawadex/backend/internal/adapters/database"
	"github.com/dawadex/backend/internal/adapters/providers/knowledge"
	"github.com/dawadex/backend/internal/adapters/providers/terminology"
	"github.com/dawadex/backend/internal/application/services"
	"github.com/dawadex/backend/internal/domain/providers"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	redisclient "github.com/dawadex/backend/internal/infrastructure/clients/redis"
	"github.com/dawadex/backend/internal/infrastructure/httpclient"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	"github.com/dawadex/backend/internal/infrastructure/ratelimit"
	"github.com/dawadex/backend/pkg/config"
)

// App holds the wired service graph
type App struct {
	Terminology  *services.TerminologyService
	Signature    *services.SignatureService
	Monograph    *services.MonographService
	Alternatives *services.AlternativesService
}

// New wires adapters and services. redisClient may be nil; the knowledge
// caches then degrade to their in-process layer alone. metrics may be nil.
func New(cfg *config.Config, pgClient *postgres.Client, redisClient *redisclient.Client, metrics *observability.Metrics) *App {
	transport := httpclient.New(&cfg.HTTP)

	var store providers.CacheProvider
	if redisClient != nil {
		store = cache.NewRedisAdapter(redisClient)
	}
	sourceOptions := func(src *config.SourceConfig, name string) knowledge.Options {
		return knowledge.Options{
			Cache:    cache.NewDualCache(name, store, src.TTL(), metrics),
			Limiter:  ratelimit.NewWindow(src.RateLimitPerMin),
			Metrics:  metrics,
			Disabled: cfg.DisableExternal,
		}
	}

	medlineplus := knowledge.NewMedlinePlusClient(cfg.MedlinePlus.BaseURL, transport,
		sourceOptions(&cfg.MedlinePlus, knowledge.SourceMedlinePlus))
	dailymed := knowledge.NewDailyMedClient(cfg.DailyMed.BaseURL, transport,
		sourceOptions(&cfg.DailyMed, knowledge.SourceDailyMed))
	openfda := knowledge.NewOpenFDAClient(cfg.OpenFDA.BaseURL, cfg.OpenFDA.APIKey, transport,
		sourceOptions(&cfg.OpenFDA, knowledge.SourceOpenFDA))

	rxnav := terminology.NewRxNavAdapter(
		cfg.RxNav.BaseURL,
		transport,
		ratelimit.NewWindow(cfg.RxNav.RateLimitPerMin),
		metrics,
	)

	products := database.NewProductAdapter(pgClient)
	terminologySvc := services.NewTerminologyService(
		rxnav,
		database.NewConceptCacheAdapter(pgClient),
		database.NewUnresolvedTermAdapter(pgClient),
	)

	return &App{
		Terminology: terminologySvc,
		Signature:   services.NewSignatureService(terminologySvc, products),
		Monograph:   services.NewMonographService(medlineplus, dailymed, openfda),
		Alternatives: services.NewAlternativesService(
			products,
			database.NewGenericListingAdapter(pgClient),
			database.NewPriceCeilingAdapter(pgClient),
		),
	}
}
