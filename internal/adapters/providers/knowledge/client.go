// Package knowledge implements the uniform fetch-by-term contract for the
// consumer-health sources. One generic client owns the shared protocol
// (dual cache, cache-only mode, rate limiting, no-data collapsing); each
// source contributes a fetch function and a section classifier.
package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dawadex/backend/internal/adapters/cache"
	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/providers"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	"github.com/dawadex/backend/internal/infrastructure/ratelimit"
	"github.com/dawadex/backend/pkg/utils"
)

// Transport is the retrying GET transport sources call out through
type Transport interface {
	Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*http.Response, error)
}

// FetchFunc performs the source-specific external call(s) and returns the
// classified document, or nil when the source has nothing for the term
type FetchFunc func(ctx context.Context, term string) (*entities.KnowledgeDocument, error)

// Options carries the shared machinery every source client needs
type Options struct {
	Cache    *cache.DualCache
	Limiter  *ratelimit.Window
	Metrics  *observability.Metrics
	Disabled bool
}

// Client implements KnowledgeProvider generically
type Client struct {
	source string
	opts   Options
	fetch  FetchFunc
}

func newClient(source string, opts Options, fetch FetchFunc) *Client {
	return &Client{source: source, opts: opts, fetch: fetch}
}

// Name identifies the source
func (c *Client) Name() string {
	return c.source
}

// FetchSections returns the classified document for a term, or nil for
// "no data". Transport failures and empty classifications are logged and
// collapsed into the nil outcome; they are never surfaced as errors.
func (c *Client) FetchSections(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
	key := "knowledge:" + c.source + ":" + utils.NormalizeTerm(term)

	if c.opts.Cache != nil {
		if payload, ok := c.opts.Cache.Get(ctx, key); ok {
			var doc entities.KnowledgeDocument
			if err := json.Unmarshal(payload, &doc); err == nil {
				return &doc, nil
			}
			// Corrupt payload: fall through and refetch
		}
	}

	if c.opts.Disabled {
		return nil, nil
	}

	if c.opts.Limiter != nil {
		c.opts.Limiter.Acquire()
	}
	c.opts.Metrics.ExternalCall(ctx, c.source)

	doc, err := c.fetch(ctx, term)
	if err != nil {
		c.opts.Metrics.ExternalError(ctx, c.source)
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Str("source", c.source).Str("term", term).
			Msg("knowledge fetch failed, treating as no data")
		return nil, nil
	}
	if doc == nil || doc.Sections.Empty() {
		return nil, nil
	}

	if c.opts.Cache != nil {
		if payload, err := json.Marshal(doc); err == nil {
			c.opts.Cache.Put(ctx, key, payload)
		}
	}
	return doc, nil
}

var _ providers.KnowledgeProvider = (*Client)(nil)
