package knowledge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawadex/backend/internal/adapters/cache"
	"github.com/dawadex/backend/internal/domain/entities"
)

// stubTransport returns canned responses keyed by a matcher over the
// request URL and params, recording every call it serves
type stubCall struct {
	RawURL  string
	Params  url.Values
	Headers map[string]string
}

type stubTransport struct {
	calls   []stubCall
	respond func(rawURL string, params url.Values) (*http.Response, error)
}

func (s *stubTransport) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*http.Response, error) {
	s.calls = append(s.calls, stubCall{RawURL: rawURL, Params: params, Headers: headers})
	return s.respond(rawURL, params)
}

func textResponse(status int, body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func testOptions() Options {
	return Options{Cache: cache.NewDualCache("test", nil, time.Hour, nil)}
}

func TestClientCachesSuccessfulFetch(t *testing.T) {
	fetches := 0
	client := newClient("test", testOptions(), func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		fetches++
		return &entities.KnowledgeDocument{
			Title:    "Ibuprofen",
			Sections: entities.Sections{entities.BucketUses: {"pain relief"}},
		}, nil
	})

	doc, err := client.FetchSections(context.Background(), "Ibuprofen")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Ibuprofen", doc.Title)

	// Second call is served from cache without touching the source
	doc, err = client.FetchSections(context.Background(), "ibuprofen  ")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"pain relief"}, doc.Sections[entities.BucketUses])
	assert.Equal(t, 1, fetches)
}

func TestClientDisabledReturnsCacheOnly(t *testing.T) {
	fetches := 0
	opts := testOptions()
	opts.Disabled = true
	client := newClient("test", opts, func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		fetches++
		return &entities.KnowledgeDocument{Title: "x"}, nil
	})

	doc, err := client.FetchSections(context.Background(), "ibuprofen")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Zero(t, fetches)
}

func TestClientFetchErrorCollapsesToNoData(t *testing.T) {
	client := newClient("test", testOptions(), func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		return nil, errors.New("upstream down")
	})

	doc, err := client.FetchSections(context.Background(), "ibuprofen")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestClientEmptySectionsNotCached(t *testing.T) {
	fetches := 0
	client := newClient("test", testOptions(), func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		fetches++
		return &entities.KnowledgeDocument{Title: "empty", Sections: entities.Sections{}}, nil
	})

	doc, err := client.FetchSections(context.Background(), "ibuprofen")
	require.NoError(t, err)
	assert.Nil(t, doc)

	// Nothing cached, so a repeat call fetches again
	_, err = client.FetchSections(context.Background(), "ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestClientWorksWithoutCache(t *testing.T) {
	client := newClient("test", Options{}, func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		return &entities.KnowledgeDocument{
			Title:    "Ibuprofen",
			Sections: entities.Sections{entities.BucketUses: {"pain relief"}},
		}, nil
	})

	doc, err := client.FetchSections(context.Background(), "ibuprofen")
	require.NoError(t, err)
	require.NotNil(t, doc)
}
