package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts cache and external-call activity per source. All methods
// are nil-safe so components can run without metrics wired.
type Metrics struct {
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	externalCalls  metric.Int64Counter
	externalErrors metric.Int64Counter
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/dawadex/backend")

	cacheHits, err := meter.Int64Counter(
		"aggregator.cache.hit.count",
		metric.WithDescription("Cache hits by source and layer"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"aggregator.cache.miss.count",
		metric.WithDescription("Cache misses by source"),
	)
	if err != nil {
		return nil, err
	}

	externalCalls, err := meter.Int64Counter(
		"aggregator.external.call.count",
		metric.WithDescription("External API calls by source"),
	)
	if err != nil {
		return nil, err
	}

	externalErrors, err := meter.Int64Counter(
		"aggregator.external.error.count",
		metric.WithDescription("External API failures by source"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		externalCalls:  externalCalls,
		externalErrors: externalErrors,
	}, nil
}

// CacheHit records a cache hit for a source at a layer ("memory" or "store")
func (m *Metrics) CacheHit(ctx context.Context, source, layer string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("layer", layer),
	))
}

// CacheMiss records a cache miss for a source
func (m *Metrics) CacheMiss(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// ExternalCall records an outbound call to a source
func (m *Metrics) ExternalCall(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.externalCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// ExternalError records a failed outbound call to a source
func (m *Metrics) ExternalError(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.externalErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
