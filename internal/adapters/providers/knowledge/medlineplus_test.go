package knowledge

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawadex/backend/internal/domain/entities"
)

const searchXMLWithMatch = `<?xml version="1.0" encoding="UTF-8"?>
<nlmSearchResult>
  <list>
    <document url="https://medlineplus.gov/druginfo/meds/a682159.html">
      <content name="title">Acetaminophen<span class="qt0"></span></content>
    </document>
    <document url="https://medlineplus.gov/painrelievers.html">
      <content name="title">Pain Relievers</content>
    </document>
  </list>
</nlmSearchResult>`

const searchXMLEmpty = `<?xml version="1.0" encoding="UTF-8"?>
<nlmSearchResult><list></list></nlmSearchResult>`

const topicHTML = `<html><body>
<h2>Why is this medication prescribed?</h2>
<p>Acetaminophen is used to relieve mild to moderate pain.</p>
<p>It also reduces fever.</p>
<h2>How should this medicine be used?</h2>
<ul><li>Take exactly as directed.</li></ul>
<h2>What side effects can this medication cause?</h2>
<p>Nausea may occur.</p>
<h2>Brand names</h2>
<p>Tylenol</p>
</body></html>`

func TestMedlinePlusFetchesTopicSections(t *testing.T) {
	transport := &stubTransport{respond: func(rawURL string, params url.Values) (*http.Response, error) {
		if strings.Contains(rawURL, "wsearch") {
			return textResponse(http.StatusOK, searchXMLWithMatch)
		}
		return textResponse(http.StatusOK, topicHTML)
	}}

	client := NewMedlinePlusClient("https://wsearch.nlm.nih.gov/ws/query", transport, Options{})
	doc, err := client.FetchSections(context.Background(), "acetaminophen")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Acetaminophen", doc.Title)
	assert.Equal(t, "https://medlineplus.gov/druginfo/meds/a682159.html", doc.SourceURL)
	require.Len(t, doc.Sections[entities.BucketUses], 1)
	assert.Contains(t, doc.Sections[entities.BucketUses][0], "relieve mild to moderate pain")
	assert.Contains(t, doc.Sections[entities.BucketUses][0], "reduces fever")
	assert.Contains(t, doc.Sections[entities.BucketHowToTake][0], "Take exactly as directed.")
	assert.Contains(t, doc.Sections[entities.BucketSideEffects][0], "Nausea")
	assert.NotContains(t, doc.Sections, "brand_names")
}

func TestMedlinePlusBroadensQueryWhenPlainTermEmpty(t *testing.T) {
	transport := &stubTransport{respond: func(rawURL string, params url.Values) (*http.Response, error) {
		if strings.Contains(rawURL, "wsearch") {
			if params.Get("term") == "metformin oral" {
				return textResponse(http.StatusOK, strings.ReplaceAll(searchXMLWithMatch, "Acetaminophen", "Metformin"))
			}
			return textResponse(http.StatusOK, searchXMLEmpty)
		}
		return textResponse(http.StatusOK, topicHTML)
	}}

	client := NewMedlinePlusClient("https://wsearch.nlm.nih.gov/ws/query", transport, Options{})
	doc, err := client.FetchSections(context.Background(), "metformin")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Metformin", doc.Title)

	// Plain term first, then the broadened query, then the topic page
	require.Len(t, transport.calls, 3)
	assert.Equal(t, "metformin", transport.calls[0].Params.Get("term"))
	assert.Equal(t, "metformin oral", transport.calls[1].Params.Get("term"))
}

func TestMedlinePlusPrefersTitleMatchingTerm(t *testing.T) {
	xmlBody := `<?xml version="1.0" encoding="UTF-8"?>
<nlmSearchResult>
  <list>
    <document url="https://medlineplus.gov/painrelievers.html">
      <content name="title">Pain Relievers</content>
    </document>
    <document url="https://medlineplus.gov/druginfo/meds/a682159.html">
      <content name="title">Acetaminophen</content>
    </document>
  </list>
</nlmSearchResult>`

	transport := &stubTransport{respond: func(rawURL string, params url.Values) (*http.Response, error) {
		if strings.Contains(rawURL, "wsearch") {
			return textResponse(http.StatusOK, xmlBody)
		}
		return textResponse(http.StatusOK, topicHTML)
	}}

	client := NewMedlinePlusClient("https://wsearch.nlm.nih.gov/ws/query", transport, Options{})
	doc, err := client.FetchSections(context.Background(), "acetaminophen")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "https://medlineplus.gov/druginfo/meds/a682159.html", doc.SourceURL)
}

func TestMedlinePlusNoResultsAnywhere(t *testing.T) {
	transport := &stubTransport{respond: func(rawURL string, params url.Values) (*http.Response, error) {
		return textResponse(http.StatusOK, searchXMLEmpty)
	}}

	client := NewMedlinePlusClient("https://wsearch.nlm.nih.gov/ws/query", transport, Options{})
	doc, err := client.FetchSections(context.Background(), "obscureterm")
	require.NoError(t, err)
	assert.Nil(t, doc)

	// All four broadened queries were attempted
	assert.Len(t, transport.calls, 4)
}
