package knowledge

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dawadex/backend/internal/domain/entities"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// SourceMedlinePlus names the primary consumer-health source
const SourceMedlinePlus = "medlineplus"

var medlinePlusClassifier = Classifier{
	{Bucket: entities.BucketUses, Keywords: []string{"what is", "why is"}},
	{Bucket: entities.BucketHowToTake, Keywords: []string{"how should"}},
	{Bucket: entities.BucketPrecautions, Keywords: []string{"precautions", "before taking"}},
	{Bucket: entities.BucketSideEffects, Keywords: []string{"side effects"}},
}

var userAgentHeaders = map[string]string{
	"User-Agent": "dawadex/1.0 (educational only)",
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// NewMedlinePlusClient creates the primary knowledge client. It performs a
// health-topic search (broadening the query if the plain term finds nothing)
// and extracts bucketed sections from the topic page's headings.
func NewMedlinePlusClient(searchURL string, transport Transport, opts Options) *Client {
	fetch := func(ctx context.Context, term string) (*entities.KnowledgeDocument, error) {
		title, topicURL, err := medlineSearch(ctx, transport, searchURL, term)
		if err != nil {
			return nil, err
		}
		if topicURL == "" {
			return nil, nil
		}

		resp, err := transport.Get(ctx, topicURL, nil, userAgentHeaders)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, apperrors.NewExternalError(
				fmt.Sprintf("topic page returned status %d", resp.StatusCode), nil)
		}

		sections, err := extractTopicSections(resp.Body)
		if err != nil {
			return nil, err
		}

		if title == "" {
			title = "MedlinePlus Topic"
		}
		return &entities.KnowledgeDocument{
			Title:     title,
			SourceURL: topicURL,
			Sections:  sections,
		}, nil
	}

	return newClient(SourceMedlinePlus, opts, fetch)
}

type searchEnvelope struct {
	List struct {
		Documents []searchDocument `xml:"document"`
	} `xml:"list"`
}

type searchDocument struct {
	URL     string `xml:"url,attr"`
	Content []struct {
		Name  string `xml:"name,attr"`
		Inner string `xml:",innerxml"`
	} `xml:"content"`
}

func (d searchDocument) title() string {
	for _, c := range d.Content {
		if c.Name == "title" {
			// Titles carry query-highlight markup; strip it
			return strings.TrimSpace(tagRe.ReplaceAllString(c.Inner, ""))
		}
	}
	return ""
}

// medlineSearch finds the best topic for a term. The plain term is tried
// first, then progressively broader queries; within one result list a
// document whose title contains the term beats the first document with a URL.
func medlineSearch(ctx context.Context, transport Transport, searchURL, term string) (title, topicURL string, err error) {
	queries := []string{
		strings.TrimSpace(term),
		term + " oral",
		term + " tablet",
		term + " medication",
	}

	for _, q := range queries {
		params := url.Values{"db": {"healthTopics"}, "term": {q}}
		resp, err := transport.Get(ctx, searchURL, params, userAgentHeaders)
		if err != nil {
			return "", "", err
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", "", apperrors.NewExternalError(
				fmt.Sprintf("topic search returned status %d", resp.StatusCode), nil)
		}
		if readErr != nil {
			return "", "", apperrors.NewExternalError("failed to read search response", readErr)
		}

		var envelope searchEnvelope
		if err := xml.Unmarshal(body, &envelope); err != nil {
			return "", "", apperrors.NewExternalError("failed to parse search response", err)
		}

		termLower := strings.ToLower(term)
		var fallbackTitle, fallbackURL string
		for _, doc := range envelope.List.Documents {
			if doc.URL == "" {
				continue
			}
			docTitle := doc.title()
			if docTitle != "" && strings.Contains(strings.ToLower(docTitle), termLower) {
				return docTitle, doc.URL, nil
			}
			if fallbackURL == "" {
				fallbackTitle, fallbackURL = docTitle, doc.URL
			}
		}
		if fallbackURL != "" {
			if fallbackTitle == "" {
				fallbackTitle = "MedlinePlus Topic"
			}
			return fallbackTitle, fallbackURL, nil
		}
	}

	return "", "", nil
}

// extractTopicSections walks the topic page: each h2/h3 heading opens a
// section that accumulates following p/ul/ol/div text until the next
// heading, and the heading text picks the bucket.
func extractTopicSections(r io.Reader) (entities.Sections, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to parse topic page", err)
	}

	sections := entities.Sections{}
	var currentBucket string
	var currentParts []string

	flush := func() {
		if currentBucket != "" && len(currentParts) > 0 {
			sections[currentBucket] = []string{strings.Join(currentParts, "\n")}
		}
		currentBucket = ""
		currentParts = nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2", "h3":
				flush()
				if bucket, ok := medlinePlusClassifier.Classify(nodeText(n)); ok {
					currentBucket = bucket
				}
				return
			case "p", "ul", "ol":
				if currentBucket != "" {
					if text := nodeText(n); text != "" {
						currentParts = append(currentParts, text)
					}
					return
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	flush()

	return sections, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
}
