package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dawadex/backend/internal/domain/entities"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// SourceOpenFDA names the drug-label API fallback source
const SourceOpenFDA = "openfda"

// openFDA label fields mapped to the bucket they describe. OTC labels
// scatter warning text across several patient-facing fields, so the
// precaution list is wide.
var openFDAFieldBuckets = []struct {
	Field  string
	Bucket string
}{
	{"indications_and_usage", entities.BucketUses},
	{"purpose", entities.BucketUses},
	{"warnings", entities.BucketPrecautions},
	{"warnings_and_cautions", entities.BucketPrecautions},
	{"information_for_patients", entities.BucketPrecautions},
	{"patient_information", entities.BucketPrecautions},
	{"ask_doctor", entities.BucketPrecautions},
	{"do_not_use", entities.BucketPrecautions},
	{"stop_use", entities.BucketPrecautions},
	{"adverse_reactions", entities.BucketSideEffects},
	{"adverse_reactions_table", entities.BucketSideEffects},
}

type openFDAResult struct {
	Results []map[string]json.RawMessage `json:"results"`
}

// fieldValues decodes a label field, which openFDA serves as either an
// array of strings or a single string
func fieldValues(raw json.RawMessage) []string {
	var values []string
	if err := json.Unmarshal(raw, &values); err == nil {
		return values
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	return nil
}

// NewOpenFDAClient creates the openFDA label client. A single search call
// covers both substance and active-ingredient names; an API key, when
// configured, is sent as a header rather than a query parameter so it never
// lands in cache keys or logs.
func NewOpenFDAClient(baseURL, apiKey string, transport Transport, opts Options) *Client {
	fetch := func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		searchURL := strings.TrimRight(baseURL, "/") + "/drug/label.json"
		params := url.Values{
			"search": {fmt.Sprintf(`openfda.substance_name:"%s" OR active_ingredient:"%s"`, term, term)},
			"limit":  {"5"},
		}
		var headers map[string]string
		if apiKey != "" {
			headers = map[string]string{"X-API-Key": apiKey}
		}

		resp, err := transport.Get(ctx, searchURL, params, headers)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, apperrors.NewExternalError(
				fmt.Sprintf("label search returned status %d", resp.StatusCode), nil)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to read label response", err)
		}

		var result openFDAResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, apperrors.NewExternalError("failed to parse label response", err)
		}
		if len(result.Results) == 0 {
			return nil, nil
		}

		sections := entities.Sections{}
		seen := map[string]map[string]bool{}
		for _, record := range result.Results {
			for _, fb := range openFDAFieldBuckets {
				raw, ok := record[fb.Field]
				if !ok {
					continue
				}
				for _, v := range fieldValues(raw) {
					v = strings.TrimSpace(v)
					if v == "" {
						continue
					}
					if seen[fb.Bucket] == nil {
						seen[fb.Bucket] = map[string]bool{}
					}
					if seen[fb.Bucket][v] {
						continue
					}
					seen[fb.Bucket][v] = true
					sections[fb.Bucket] = append(sections[fb.Bucket], v)
				}
			}
		}

		return &entities.KnowledgeDocument{
			Title:     fmt.Sprintf("%s (openFDA)", term),
			SourceURL: "https://open.fda.gov/apis/drug/label/",
			Sections:  sections,
		}, nil
	}

	return newClient(SourceOpenFDA, opts, fetch)
}
