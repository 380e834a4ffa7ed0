package catalog

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks knowledge-ai/internal/catalog Store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"knowledge-ai/internal/contextutil"
)

// Store provides read access to the document/theme catalog.
type Store interface {
	// ListDocuments returns all catalog documents.
	ListDocuments(ctx context.Context) ([]Document, error)
	// ListThemes returns all catalog themes with their document membership.
	ListThemes(ctx context.Context) ([]Theme, error)
	// DocumentsForThemes resolves theme labels to the set of document IDs
	// tagged with at least one of them. Unknown labels are ignored.
	DocumentsForThemes(ctx context.Context, themeNames []string) ([]string, error)
}

// Client is an HTTP client for an Airtable-shaped catalog API.
// Listings are paginated via an opaque offset token.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewClient creates a new catalog client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// ListDocuments returns all catalog documents, following pagination.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	records, err := c.listAll(ctx, "documents")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, Document{
			ID:         rec.ID,
			Title:      stringField(rec.Fields, "title", DefaultDocumentTitle),
			ThemeIDs:   stringSliceField(rec.Fields, "themes"),
			ChunkCount: intField(rec.Fields, "chunk_count"),
		})
	}
	return docs, nil
}

// ListThemes returns all catalog themes, following pagination.
func (c *Client) ListThemes(ctx context.Context) ([]Theme, error) {
	records, err := c.listAll(ctx, "themes")
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}

	themes := make([]Theme, 0, len(records))
	for _, rec := range records {
		themes = append(themes, Theme{
			ID:          rec.ID,
			Name:        stringField(rec.Fields, "name", ""),
			DocumentIDs: stringSliceField(rec.Fields, "documents"),
		})
	}
	return themes, nil
}

// DocumentsForThemes resolves theme labels to document IDs via the theme
// listing. The result is sorted for deterministic downstream behavior.
func (c *Client) DocumentsForThemes(ctx context.Context, themeNames []string) ([]string, error) {
	if len(themeNames) == 0 {
		return nil, nil
	}

	themes, err := c.ListThemes(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(themeNames))
	for _, name := range themeNames {
		wanted[name] = true
	}

	logger := contextutil.LoggerFromContext(ctx)
	seen := make(map[string]bool)
	var docIDs []string
	matched := 0
	for _, theme := range themes {
		if !wanted[theme.Name] {
			continue
		}
		matched++
		for _, id := range theme.DocumentIDs {
			if !seen[id] {
				seen[id] = true
				docIDs = append(docIDs, id)
			}
		}
	}
	if matched < len(themeNames) {
		logger.WarnContext(ctx, "some theme labels did not match catalog themes",
			"requested", len(themeNames), "matched", matched)
	}

	sort.Strings(docIDs)
	return docIDs, nil
}

// listAll fetches every page of a catalog table.
func (c *Client) listAll(ctx context.Context, table string) ([]record, error) {
	var records []record
	offset := ""
	for {
		page, err := c.listPage(ctx, table, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

func (c *Client) listPage(ctx context.Context, table, offset string) (*listResponse, error) {
	endpoint := fmt.Sprintf("%s/api/%s", c.BaseURL, table)
	if offset != "" {
		endpoint += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}
