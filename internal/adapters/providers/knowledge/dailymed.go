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

// SourceDailyMed names the label-derived fallback source
const SourceDailyMed = "dailymed"

var dailyMedClassifier = Classifier{
	{Bucket: entities.BucketUses, Keywords: []string{"indication", "uses"}},
	{Bucket: entities.BucketPrecautions, Keywords: []string{"warning", "precaution"}},
	{Bucket: entities.BucketSideEffects, Keywords: []string{"adverse", "side effect"}},
}

type splSearchResult struct {
	Data []struct {
		SetID string `json:"setid"`
	} `json:"data"`
}

type splDetail struct {
	Data struct {
		Title    string `json:"title"`
		Sections []struct {
			Title string `json:"title"`
			Text  string `json:"text"`
		} `json:"sections"`
	} `json:"data"`
}

// NewDailyMedClient creates the structured-product-label client. Resolution
// is two calls: a label search for the most recent set id, then the label
// body whose section titles are classified into buckets.
func NewDailyMedClient(baseURL string, transport Transport, opts Options) *Client {
	fetch := func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		setID, err := dailyMedSetID(ctx, transport, baseURL, term)
		if err != nil {
			return nil, err
		}
		if setID == "" {
			return nil, nil
		}

		detailURL := fmt.Sprintf("%s/spls/%s.json", strings.TrimRight(baseURL, "/"), setID)
		resp, err := transport.Get(ctx, detailURL, nil, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, apperrors.NewExternalError(
				fmt.Sprintf("label fetch returned status %d", resp.StatusCode), nil)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to read label response", err)
		}

		var detail splDetail
		if err := json.Unmarshal(body, &detail); err != nil {
			return nil, apperrors.NewExternalError("failed to parse label response", err)
		}

		sections := entities.Sections{}
		for _, sec := range detail.Data.Sections {
			bucket, ok := dailyMedClassifier.Classify(sec.Title)
			if !ok {
				continue
			}
			text := strings.TrimSpace(sec.Text)
			if text == "" {
				continue
			}
			sections[bucket] = append(sections[bucket], text)
		}

		return &entities.KnowledgeDocument{
			Title:     fmt.Sprintf("%s (DailyMed)", term),
			SourceURL: fmt.Sprintf("https://dailymed.nlm.nih.gov/dailymed/drugInfo.cfm?setid=%s", setID),
			Sections:  sections,
		}, nil
	}

	return newClient(SourceDailyMed, opts, fetch)
}

func dailyMedSetID(ctx context.Context, transport Transport, baseURL, term string) (string, error) {
	searchURL := strings.TrimRight(baseURL, "/") + "/spls.json"
	params := url.Values{"drug_name": {term}, "pagesize": {"1"}}
	resp, err := transport.Get(ctx, searchURL, params, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError(
			fmt.Sprintf("label search returned status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewExternalError("failed to read label search response", err)
	}

	var result splSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.NewExternalError("failed to parse label search response", err)
	}
	if len(result.Data) == 0 {
		return "", nil
	}
	return result.Data[0].SetID, nil
}
