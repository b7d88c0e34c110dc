// Package terminology adapts the RxNav terminology service to the
// TerminologyProvider contract.
package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dawadex/backend/internal/domain/providers"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	"github.com/dawadex/backend/internal/infrastructure/ratelimit"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

const maxCandidates = 5

// Transport is the retrying GET transport the adapter calls out through
type Transport interface {
	Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*http.Response, error)
}

// RxNavAdapter implements TerminologyProvider against the RxNav REST API
type RxNavAdapter struct {
	baseURL   string
	transport Transport
	limiter   *ratelimit.Window
	metrics   *observability.Metrics
}

// NewRxNavAdapter creates a new RxNav adapter
func NewRxNavAdapter(baseURL string, transport Transport, limiter *ratelimit.Window, metrics *observability.Metrics) providers.TerminologyProvider {
	return &RxNavAdapter{
		baseURL:   baseURL,
		transport: transport,
		limiter:   limiter,
		metrics:   metrics,
	}
}

type approximateTermResponse struct {
	ApproximateGroup struct {
		Candidate []struct {
			RxCUI string `json:"rxcui"`
		} `json:"candidate"`
	} `json:"approximateGroup"`
}

// ApproximateMatch looks up candidate concept codes for a term. Codes keep
// response order, deduplicated by first occurrence; an empty slice with a
// nil error means the term matched nothing.
func (a *RxNavAdapter) ApproximateMatch(ctx context.Context, term string) ([]string, []byte, error) {
	if a.limiter != nil {
		a.limiter.Acquire()
	}
	a.metrics.ExternalCall(ctx, "rxnav")

	params := url.Values{
		"term":       {term},
		"maxEntries": {fmt.Sprintf("%d", maxCandidates)},
	}
	resp, err := a.transport.Get(ctx, a.baseURL+"/approximateTerm.json", params, nil)
	if err != nil {
		a.metrics.ExternalError(ctx, "rxnav")
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.metrics.ExternalError(ctx, "rxnav")
		return nil, nil, apperrors.NewExternalError(
			fmt.Sprintf("terminology service returned status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		a.metrics.ExternalError(ctx, "rxnav")
		return nil, nil, apperrors.NewExternalError("failed to read terminology response", err)
	}

	var parsed approximateTermResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		a.metrics.ExternalError(ctx, "rxnav")
		return nil, nil, apperrors.NewExternalError("failed to parse terminology response", err)
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, c := range parsed.ApproximateGroup.Candidate {
		if c.RxCUI == "" {
			continue
		}
		if _, dup := seen[c.RxCUI]; dup {
			continue
		}
		seen[c.RxCUI] = struct{}{}
		codes = append(codes, c.RxCUI)
	}

	return codes, raw, nil
}
